// Package command implements the request dispatch core: the sorted
// command table, the tokenize/lookup/permission/arity pipeline run
// before any handler executes, the command-list batch runner, and the
// handlers themselves.
//
// Handlers never write protocol terminators. They emit response body
// lines through the Client and describe how the exchange ends with an
// Outcome; the connection layer renders OK, list_OK or ACK from that.
package command

import (
	"context"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/permission"
)

// Client is the per-connection surface handlers see. It is implemented
// by the daemon's connection type and by test fakes.
type Client interface {
	// Writef appends a response body line to the connection's output
	// buffer. Write failures mark the connection expired instead of
	// surfacing here; handlers keep no error path for them.
	Writef(format string, args ...any)

	// Permission returns the capability set granted to the connection.
	Permission() permission.Bits

	// Grant replaces the granted capability set.
	Grant(p permission.Bits)

	// Subscribe records the change categories the connection will wait
	// on once the current command returns KindIdle.
	Subscribe(mask event.Mask)

	// Context is cancelled when the connection or the daemon shuts
	// down.
	Context() context.Context

	// Expired reports whether the connection is no longer usable.
	Expired() bool
}

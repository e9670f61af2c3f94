package command

import "github.com/quaverd/quaverd/internal/protocol"

// Kind classifies how a command exchange ends.
type Kind int

const (
	// KindOK terminates the response with OK (or list_OK inside a
	// verbose command list).
	KindOK Kind = iota

	// KindSilent produces no terminator at all; an empty request line
	// is ignored without output.
	KindSilent

	// KindError terminates with an ACK line.
	KindError

	// KindIdle parks the connection on its event waiter instead of
	// terminating the response.
	KindIdle

	// KindKill acknowledges with OK and then shuts the daemon down.
	KindKill

	// KindClose drops the connection without writing anything further.
	KindClose
)

// Outcome is a handler's verdict on one request. Tag and Step exist
// for ACK rendering: Tag is the command name (empty when the line never
// resolved to one) and Step is the zero-based position inside a command
// list, zero for standalone commands.
type Outcome struct {
	Kind Kind
	Err  *protocol.AckError
	Tag  string
	Step int
}

func ok() Outcome {
	return Outcome{Kind: KindOK}
}

func ackError(e *protocol.AckError) Outcome {
	return Outcome{Kind: KindError, Err: e}
}

func ackf(code protocol.AckCode, format string, args ...any) Outcome {
	return ackError(protocol.Ackf(code, format, args...))
}

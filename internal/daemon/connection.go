package daemon

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/quaverd/quaverd/internal/command"
	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/permission"
	"github.com/quaverd/quaverd/internal/protocol"
)

// maxLineLength bounds a single request line.
const maxLineLength = 8192

// Command list framing keywords. They are intercepted here rather than
// dispatched: list state is connection state, not a command.
const (
	listBegin   = "command_list_begin"
	listOKBegin = "command_list_ok_begin"
	listEnd     = "command_list_end"
)

// connection serves one client. It implements command.Client; the
// handlers write response bodies through it and the outcome drives the
// terminator.
type connection struct {
	id     int64
	conn   net.Conn
	daemon *Daemon
	writer *protocol.Writer
	log    zerolog.Logger

	ctx     context.Context
	lines   chan string
	expired atomic.Bool

	// readMu guards idling and the read deadline together, so the read
	// loop never arms a deadline against a client parked in idle.
	readMu sync.Mutex
	idling bool

	perm       permission.Bits
	idleWaiter *event.Waiter

	// Command list accumulation.
	listing bool
	verbose bool
	list    []string
}

func newConnection(id int64, conn net.Conn, d *Daemon) *connection {
	return &connection{
		id:     id,
		conn:   conn,
		daemon: d,
		writer: protocol.NewWriter(conn),
		log:    d.log.With().Int64("client", id).Logger(),
		perm:   d.defaultPerm,
	}
}

// handle runs the connection until the client leaves, a fatal outcome
// closes it, or the daemon shuts down.
func (c *connection) handle(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	c.ctx = ctx
	defer c.conn.Close()

	c.log.Debug().Str("remote", c.conn.RemoteAddr().String()).Msg("client connected")
	defer c.log.Debug().Msg("client disconnected")

	c.writer.Printf("%s", protocol.Greeting)
	c.flush()
	if c.expired.Load() {
		return
	}

	c.lines = make(chan string)
	go c.readLoop(ctx)

	for {
		if c.idleWaiter != nil {
			if c.idleWait() {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			return
		case line, open := <-c.lines:
			if !open {
				return
			}
			if c.handleLine(line) || c.expired.Load() {
				return
			}
		}
	}
}

// readLoop feeds request lines into the channel so that handle can
// select between client input, idle wakes and shutdown.
func (c *connection) readLoop(ctx context.Context) {
	defer close(c.lines)

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for {
		c.armRead()
		if !scanner.Scan() {
			break
		}
		select {
		case c.lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); errors.Is(err, os.ErrDeadlineExceeded) {
		c.log.Debug().Dur("timeout", c.daemon.cfg.ReadTimeout).
			Msg("client timed out")
	}
}

// armRead pushes the read deadline forward before the next blocking
// read. No-op while the connection is idling or the timeout is off.
func (c *connection) armRead() {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	if t := c.daemon.cfg.ReadTimeout; t > 0 && !c.idling {
		c.conn.SetReadDeadline(time.Now().Add(t))
	}
}

// setIdling marks the idle-wait state and swaps the read deadline
// accordingly. An idling client may legitimately stay silent forever.
func (c *connection) setIdling(v bool) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	c.idling = v
	if t := c.daemon.cfg.ReadTimeout; t > 0 {
		if v {
			c.conn.SetReadDeadline(time.Time{})
		} else {
			c.conn.SetReadDeadline(time.Now().Add(t))
		}
	}
}

// handleLine processes one request line, tracking command list state.
// It reports whether the connection should close.
func (c *connection) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)

	if c.listing {
		switch trimmed {
		case listEnd:
			lines, verbose := c.list, c.verbose
			c.listing, c.verbose, c.list = false, false, nil
			return c.finish(c.daemon.dispatcher.ProcessList(c, lines, verbose))
		default:
			if len(c.list) >= c.daemon.cfg.MaxCommandListLen {
				c.log.Warn().Int("limit", c.daemon.cfg.MaxCommandListLen).
					Msg("command list limit exceeded, closing client")
				return true
			}
			c.list = append(c.list, line)
			return false
		}
	}

	switch trimmed {
	case listBegin:
		c.listing, c.verbose = true, false
		return false
	case listOKBegin:
		c.listing, c.verbose = true, true
		return false
	case listEnd:
		return c.finish(command.Outcome{
			Kind: command.KindError,
			Err:  protocol.Ackf(protocol.AckNotList, "not in command list mode"),
		})
	}
	return c.finish(c.daemon.dispatcher.Process(c, line))
}

// finish renders the terminator an outcome calls for. It reports
// whether the connection should close.
func (c *connection) finish(out command.Outcome) bool {
	switch out.Kind {
	case command.KindOK:
		c.writer.OK()
		c.flush()
	case command.KindSilent:
	case command.KindError:
		c.log.Debug().Str("command", out.Tag).Int("code", int(out.Err.Code)).
			Msg(out.Err.Message)
		c.writer.Ack(out.Err, out.Step, out.Tag)
		c.flush()
	case command.KindIdle:
		// The waiter was installed by Subscribe; the main loop parks on
		// it next.
	case command.KindKill:
		c.writer.OK()
		c.flush()
		c.daemon.requestShutdown()
		return true
	case command.KindClose:
		return true
	}
	return c.expired.Load()
}

// idleWait parks until a subscribed change arrives or the client sends
// another line. Input cancels the wait silently and the line is then
// processed as usual, so "noidle" yields a plain OK.
func (c *connection) idleWait() bool {
	w := c.idleWaiter
	c.idleWaiter = nil
	defer w.Close()

	c.setIdling(true)
	defer c.setIdling(false)

	select {
	case <-c.ctx.Done():
		return true
	case <-w.C():
		for _, name := range w.Take().Names() {
			c.writer.Changed(name)
		}
		c.writer.OK()
		c.flush()
		return c.expired.Load()
	case line, open := <-c.lines:
		if !open {
			return true
		}
		return c.handleLine(line) || c.expired.Load()
	}
}

func (c *connection) close() {
	c.conn.Close()
}

func (c *connection) flush() {
	if t := c.daemon.cfg.WriteTimeout; t > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(t))
	}
	if err := c.writer.Flush(); err != nil {
		c.expired.Store(true)
	}
}

// command.Client implementation.

func (c *connection) Writef(format string, args ...any) {
	if c.expired.Load() {
		return
	}
	if err := c.writer.Printf(format, args...); err != nil {
		c.expired.Store(true)
	}
}

func (c *connection) Permission() permission.Bits { return c.perm }

func (c *connection) Grant(p permission.Bits) { c.perm = p }

// Subscribe installs the idle waiter immediately so no change posted
// between dispatch and the park is lost.
func (c *connection) Subscribe(mask event.Mask) {
	c.idleWaiter = c.daemon.bus.Subscribe(mask)
}

func (c *connection) Context() context.Context { return c.ctx }

func (c *connection) Expired() bool { return c.expired.Load() }

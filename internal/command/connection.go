package command

import (
	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/protocol"
)

// Connection-level commands: keepalive, authentication, lifecycle and
// table reflection.

func (h *handlers) ping(c Client, args []string) Outcome {
	return ok()
}

func (h *handlers) password(c Client, args []string) Outcome {
	bits, known := h.deps.Passwords[args[0]]
	if !known {
		return ackf(protocol.AckPassword, "incorrect password")
	}
	c.Grant(bits)
	return ok()
}

func (h *handlers) kill(c Client, args []string) Outcome {
	return Outcome{Kind: KindKill}
}

func (h *handlers) close(c Client, args []string) Outcome {
	return Outcome{Kind: KindClose}
}

// commands lists the table entries the connection may run; notcommands
// lists the rest. Together they always cover the whole table.
func (h *handlers) commands(c Client, args []string) Outcome {
	granted := c.Permission()
	for i := range h.reg.defs {
		if granted.Allows(h.reg.defs[i].Permission) {
			c.Writef("command: %s\n", h.reg.defs[i].Name)
		}
	}
	return ok()
}

func (h *handlers) notCommands(c Client, args []string) Outcome {
	granted := c.Permission()
	for i := range h.reg.defs {
		if !granted.Allows(h.reg.defs[i].Permission) {
			c.Writef("command: %s\n", h.reg.defs[i].Name)
		}
	}
	return ok()
}

// idle subscribes the connection to the requested change categories; an
// empty list means all of them. The connection layer parks on the
// waiter once this outcome is seen.
func (h *handlers) idle(c Client, args []string) Outcome {
	c.Subscribe(event.ParseMask(args))
	return Outcome{Kind: KindIdle}
}

// noIdle outside of an idle wait is acknowledged and nothing more; the
// interesting case, cancelling a pending wait, never reaches a handler
// because the connection resolves it while parked.
func (h *handlers) noIdle(c Client, args []string) Outcome {
	return ok()
}

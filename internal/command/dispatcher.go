package command

import "github.com/quaverd/quaverd/internal/protocol"

// Dispatcher turns request lines into outcomes. It owns the fixed
// pre-dispatch pipeline: tokenize, look up, check permission, check
// arity, and only then run the handler. No handler ever observes a
// request that failed an earlier stage, so handlers are free of
// argument-count defensive code.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher wraps a registry.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Process runs one request line. The returned outcome carries the
// command name for ACK tagging; errors detected before a command name
// resolved are tagged with the empty string. An empty line yields
// KindSilent and produces no output at all.
func (d *Dispatcher) Process(c Client, line string) Outcome {
	argv, err := protocol.SplitLine(line)
	if err != nil {
		return ackf(protocol.AckArg, "%s", err)
	}
	if len(argv) == 0 {
		return Outcome{Kind: KindSilent}
	}

	name, args := argv[0], argv[1:]
	def, found := d.reg.Lookup(name)
	if !found {
		return ackf(protocol.AckUnknown, "unknown command \"%s\"", name)
	}

	out := d.run(c, def, args)
	out.Tag = name
	return out
}

func (d *Dispatcher) run(c Client, def *Definition, args []string) Outcome {
	if !c.Permission().Allows(def.Permission) {
		return ackf(protocol.AckPermission,
			"you don't have permission for \"%s\"", def.Name)
	}
	if ackErr := def.checkArity(len(args)); ackErr != nil {
		return ackError(ackErr)
	}
	return def.Handler(c, args)
}

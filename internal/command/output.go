package command

import "github.com/quaverd/quaverd/internal/protocol"

func (h *handlers) outputs(c Client, args []string) Outcome {
	for _, dev := range h.deps.Outputs.List() {
		c.Writef("outputid: %d\n", dev.ID)
		c.Writef("outputname: %s\n", dev.Name)
		c.Writef("outputenabled: %d\n", boolInt(dev.Enabled))
	}
	return ok()
}

func (h *handlers) enableOutput(c Client, args []string) Outcome {
	id, ackErr := parseUint(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	if err := h.deps.Outputs.Enable(id); err != nil {
		return ackf(protocol.AckNoExist, "No such audio output")
	}
	return ok()
}

func (h *handlers) disableOutput(c Client, args []string) Outcome {
	id, ackErr := parseUint(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	if err := h.deps.Outputs.Disable(id); err != nil {
		return ackf(protocol.AckNoExist, "No such audio output")
	}
	return ok()
}

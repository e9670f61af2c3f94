package command

import (
	"github.com/quaverd/quaverd/internal/protocol"
)

// Playback commands. Position and id arguments default to -1, which the
// queue reads as "current song, or the first one".

func (h *handlers) play(c Client, args []string) Outcome {
	pos := -1
	if len(args) == 1 {
		v, ackErr := parseInt(args[0], msgNeedPositive)
		if ackErr != nil {
			return ackError(ackErr)
		}
		pos = v
	}
	return resultOutcome(h.deps.Queue.Play(pos), nil)
}

func (h *handlers) playID(c Client, args []string) Outcome {
	id := -1
	if len(args) == 1 {
		v, ackErr := parseInt(args[0], msgNeedPositive)
		if ackErr != nil {
			return ackError(ackErr)
		}
		id = v
	}
	return resultOutcome(h.deps.Queue.PlayID(id), nil)
}

func (h *handlers) stop(c Client, args []string) Outcome {
	h.deps.Queue.Stop()
	return ok()
}

func (h *handlers) next(c Client, args []string) Outcome {
	h.deps.Queue.Next()
	return ok()
}

func (h *handlers) previous(c Client, args []string) Outcome {
	h.deps.Queue.Previous()
	return ok()
}

// pause with an argument forces the state; without one it toggles.
func (h *handlers) pause(c Client, args []string) Outcome {
	if len(args) == 1 {
		v, ackErr := parseBool(args[0])
		if ackErr != nil {
			return ackError(ackErr)
		}
		h.deps.Player.SetPause(v)
		return ok()
	}
	h.deps.Player.Pause()
	return ok()
}

func (h *handlers) seek(c Client, args []string) Outcome {
	pos, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	seconds, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.Seek(pos, seconds), nil)
}

func (h *handlers) seekID(c Client, args []string) Outcome {
	id, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	seconds, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.SeekID(id, seconds), nil)
}

func (h *handlers) crossfade(c Client, args []string) Outcome {
	seconds, ackErr := parseUint(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	h.deps.Player.SetCrossFade(seconds)
	return ok()
}

func (h *handlers) clearError(c Client, args []string) Outcome {
	h.deps.Player.ClearError()
	return ok()
}

// Playback-order options.

func (h *handlers) repeat(c Client, args []string) Outcome {
	v, ackErr := parseFlag(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	h.deps.Queue.SetRepeat(v)
	return ok()
}

func (h *handlers) random(c Client, args []string) Outcome {
	v, ackErr := parseFlag(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	h.deps.Queue.SetRandom(v)
	return ok()
}

func (h *handlers) single(c Client, args []string) Outcome {
	v, ackErr := parseFlag(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	h.deps.Queue.SetSingle(v)
	return ok()
}

func (h *handlers) consume(c Client, args []string) Outcome {
	v, ackErr := parseFlag(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	h.deps.Queue.SetConsume(v)
	return ok()
}

// Volume.

func (h *handlers) setVol(c Client, args []string) Outcome {
	level, ackErr := parseInt(args[0], msgNeedInteger)
	if ackErr != nil {
		return ackError(ackErr)
	}
	if err := h.deps.Mixer.Set(level); err != nil {
		return ackf(protocol.AckSystem, "problems setting volume")
	}
	return ok()
}

func (h *handlers) volume(c Client, args []string) Outcome {
	delta, ackErr := parseInt(args[0], msgNeedInteger)
	if ackErr != nil {
		return ackError(ackErr)
	}
	if err := h.deps.Mixer.Change(delta); err != nil {
		return ackf(protocol.AckSystem, "problems setting volume")
	}
	return ok()
}

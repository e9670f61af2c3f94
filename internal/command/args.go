package command

import (
	"errors"
	"strconv"

	"github.com/quaverd/quaverd/internal/protocol"
)

// Coercion error messages. The wording is part of the wire contract;
// deployed clients match on these strings.
const (
	msgNeedPositive = "need a positive integer"
	msgNeedInteger  = "need an integer"
)

// parseInt converts a signed integer argument, reporting msg on
// malformed input and a dedicated message on range overflow.
func parseInt(s, msg string) (int, *protocol.AckError) {
	v, err := strconv.Atoi(s)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			return 0, protocol.Ackf(protocol.AckArg, "Number too large: %s", s)
		}
		return 0, protocol.Ackf(protocol.AckArg, "%s", msg)
	}
	return v, nil
}

// parseIntArg converts a signed integer argument with the generic
// malformed-integer message quoting the offending token.
func parseIntArg(s string) (int, *protocol.AckError) {
	return parseInt(s, "\""+s+"\" is not a integer")
}

// parseUint converts an unsigned 32-bit argument.
func parseUint(s string) (int, *protocol.AckError) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			return 0, protocol.Ackf(protocol.AckArg, "Number too large: %s", s)
		}
		return 0, protocol.Ackf(protocol.AckArg, "Integer expected: %s", s)
	}
	return int(v), nil
}

// parseVersion converts a playlist version argument.
func parseVersion(s string) (int64, *protocol.AckError) {
	v, ackErr := parseUint(s)
	if ackErr != nil {
		return 0, ackErr
	}
	return int64(v), nil
}

// parseBool accepts exactly the tokens "0" and "1".
func parseBool(s string) (bool, *protocol.AckError) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, protocol.Ackf(protocol.AckArg, "Boolean (0/1) expected: %s", s)
}

// parseFlag is the option-toggle variant: an integer is required first,
// then it must be 0 or 1.
func parseFlag(s string) (bool, *protocol.AckError) {
	v, ackErr := parseInt(s, msgNeedInteger)
	if ackErr != nil {
		return false, ackErr
	}
	if v != 0 && v != 1 {
		return false, protocol.Ackf(protocol.AckArg, "\"%d\" is not 0 or 1", v)
	}
	return v == 1, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

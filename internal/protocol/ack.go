// Package protocol implements the line-oriented wire protocol spoken by
// MPD-compatible clients.
//
// Requests are single newline-terminated lines of whitespace-separated
// tokens, with optional double-quoting for arguments that contain
// whitespace. Responses are either "OK", the per-step "list_OK" marker
// inside command lists, or a structured error line:
//
//	ACK [<code>@<step>] {<command>} <message>
//
// The numeric error codes are a compatibility contract shared with every
// deployed client; they must never be renumbered.
package protocol

import "fmt"

// AckCode is a numeric protocol error code.
type AckCode int

// Wire error codes. The values mirror the original daemon's taxonomy
// exactly; clients switch on them.
const (
	AckNotList       AckCode = 1
	AckArg           AckCode = 2
	AckPassword      AckCode = 3
	AckPermission    AckCode = 4
	AckUnknown       AckCode = 5
	AckNoExist       AckCode = 50
	AckPlaylistMax   AckCode = 51
	AckSystem        AckCode = 52
	AckPlaylistLoad  AckCode = 53
	AckUpdateAlready AckCode = 54
	AckPlayerSync    AckCode = 55
	AckExist         AckCode = 56
)

// AckError is a protocol-level error carrying a wire code and the
// message rendered after the {tag} field of an ACK line.
type AckError struct {
	Code    AckCode
	Message string
}

// Error implements the error interface.
func (e *AckError) Error() string {
	return e.Message
}

// Ackf builds an AckError with a formatted message.
func Ackf(code AckCode, format string, args ...any) *AckError {
	return &AckError{Code: code, Message: fmt.Sprintf(format, args...)}
}

package protocol

import (
	"bufio"
	"fmt"
	"io"
)

// Greeting is written once when a connection is accepted. The version
// advertises the protocol level, not the daemon release.
const Greeting = "OK MPD 0.16.0\n"

// ListOKMarker is echoed after each successful step of a command list
// started with command_list_ok_begin.
const ListOKMarker = "list_OK"

// Writer renders protocol responses onto a byte stream.
//
// Writer buffers internally; callers flush once per complete response so
// a client never observes a partial reply. Writer is not safe for
// concurrent use; each connection owns exactly one.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter creates a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// OK writes the success terminator line.
func (w *Writer) OK() error {
	_, err := w.bw.WriteString("OK\n")
	return err
}

// ListOK writes the per-step command list marker.
func (w *Writer) ListOK() error {
	_, err := w.bw.WriteString(ListOKMarker + "\n")
	return err
}

// Ack writes a structured error line. step is the zero-based position
// inside a command list (0 outside lists); tag is the command name the
// error is attributed to, empty when tokenization or lookup failed.
func (w *Writer) Ack(e *AckError, step int, tag string) error {
	_, err := fmt.Fprintf(w.bw, "ACK [%d@%d] {%s} %s\n", int(e.Code), step, tag, e.Message)
	return err
}

// Changed writes one idle notification line for an event category.
func (w *Writer) Changed(category string) error {
	_, err := fmt.Fprintf(w.bw, "changed: %s\n", category)
	return err
}

// Printf writes formatted handler output, typically "key: value" lines.
func (w *Writer) Printf(format string, args ...any) error {
	_, err := fmt.Fprintf(w.bw, format, args...)
	return err
}

// Flush pushes all buffered output to the underlying stream.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

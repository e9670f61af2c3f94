package command

import "github.com/quaverd/quaverd/internal/protocol"

// ProcessList runs a buffered command list in order. With verbose set
// each completed step emits the list_OK marker. The first step that
// does not complete stops the run and its outcome comes back stamped
// with the zero-based step index; later steps never execute and
// completed ones are not rolled back. A connection that expires
// mid-list stops it the same way.
func (d *Dispatcher) ProcessList(c Client, lines []string, verbose bool) Outcome {
	for i, line := range lines {
		out := d.Process(c, line)
		if out.Kind != KindOK && out.Kind != KindSilent {
			out.Step = i
			return out
		}
		if c.Expired() {
			return Outcome{Kind: KindClose, Step: i}
		}
		if verbose {
			c.Writef("%s\n", protocol.ListOKMarker)
		}
	}
	return Outcome{Kind: KindOK}
}

package protocol

import (
	"bytes"
	"testing"
)

func TestWriterResponses(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.OK(); err != nil {
		t.Fatalf("OK() error = %v", err)
	}
	if err := w.ListOK(); err != nil {
		t.Fatalf("ListOK() error = %v", err)
	}
	if err := w.Changed("player"); err != nil {
		t.Fatalf("Changed() error = %v", err)
	}
	if err := w.Printf("volume: %d\n", 80); err != nil {
		t.Fatalf("Printf() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "OK\nlist_OK\nchanged: player\nvolume: 80\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriterAck(t *testing.T) {
	tests := []struct {
		name string
		err  *AckError
		step int
		tag  string
		want string
	}{
		{
			name: "unknown command with empty tag",
			err:  Ackf(AckUnknown, "unknown command %q", "frobnicate"),
			want: "ACK [5@0] {} unknown command \"frobnicate\"\n",
		},
		{
			name: "argument error inside list",
			err:  Ackf(AckArg, "Boolean (0/1) expected: %s", "2"),
			step: 1,
			tag:  "pause",
			want: "ACK [2@1] {pause} Boolean (0/1) expected: 2\n",
		},
		{
			name: "permission error",
			err:  Ackf(AckPermission, "you don't have permission for %q", "kill"),
			tag:  "kill",
			want: "ACK [4@0] {kill} you don't have permission for \"kill\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if err := w.Ack(tt.err, tt.step, tt.tag); err != nil {
				t.Fatalf("Ack() error = %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

// Package permission defines the per-connection capability bitmask and
// parsing of permission lists from configuration.
package permission

import (
	"fmt"
	"strings"
)

// Bits is a set of independent capability flags. The classes are not a
// hierarchy: admin does not imply control, control does not imply read.
type Bits uint

const (
	None    Bits = 0
	Read    Bits = 1 << 0
	Add     Bits = 1 << 1
	Control Bits = 1 << 2
	Admin   Bits = 1 << 3

	// All grants every capability; used for local/trusted connections.
	All = Read | Add | Control | Admin
)

// Allows reports whether the granted set covers every bit of required.
// A zero requirement always passes.
func (b Bits) Allows(required Bits) bool {
	return b&required == required
}

// String renders the set as a comma-separated list, "none" when empty.
func (b Bits) String() string {
	if b == None {
		return "none"
	}
	var names []string
	for _, e := range bitNames {
		if b&e.bit != 0 {
			names = append(names, e.name)
		}
	}
	return strings.Join(names, ",")
}

var bitNames = []struct {
	name string
	bit  Bits
}{
	{"read", Read},
	{"add", Add},
	{"control", Control},
	{"admin", Admin},
}

// Parse converts a comma-separated permission list ("read,add,control")
// into a bitmask. "none" and the empty string yield the empty set.
func Parse(s string) (Bits, error) {
	b := None
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch strings.ToLower(name) {
		case "", "none":
		case "read":
			b |= Read
		case "add":
			b |= Add
		case "control":
			b |= Control
		case "admin":
			b |= Admin
		default:
			return None, fmt.Errorf("unknown permission %q", name)
		}
	}
	return b, nil
}

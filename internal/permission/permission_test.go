package permission

import "testing"

func TestAllows(t *testing.T) {
	tests := []struct {
		name     string
		granted  Bits
		required Bits
		want     bool
	}{
		{"zero requirement always passes", None, None, true},
		{"zero grant blocks read", None, Read, false},
		{"exact match", Control, Control, true},
		{"superset passes", Read | Control, Control, true},
		{"partial overlap fails", Read, Read | Control, false},
		{"admin does not imply control", Admin, Control, false},
		{"all covers everything", All, Read | Add | Control | Admin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.granted.Allows(tt.required); got != tt.want {
				t.Errorf("%v.Allows(%v) = %v, want %v", tt.granted, tt.required, got, tt.want)
			}
		})
	}
}

func TestAllowsMonotonic(t *testing.T) {
	// Granting additional bits never revokes an authorization.
	for granted := Bits(0); granted <= All; granted++ {
		for required := Bits(0); required <= All; required++ {
			if !granted.Allows(required) {
				continue
			}
			for extra := Bits(0); extra <= All; extra++ {
				if !(granted | extra).Allows(required) {
					t.Fatalf("granting %v on top of %v revoked %v", extra, granted, required)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Bits
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"read", Read, false},
		{"read,add,control", Read | Add | Control, false},
		{"Read, Admin", Read | Admin, false},
		{"read,write", None, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, b := range []Bits{None, Read, Add | Control, All} {
		parsed, err := Parse(b.String())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", b.String(), err)
		}
		if parsed != b {
			t.Errorf("round trip of %v gave %v", b, parsed)
		}
	}
}

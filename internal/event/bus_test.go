package event

import (
	"reflect"
	"testing"
	"time"
)

func TestParseMask(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Mask
	}{
		{"empty means all", nil, All},
		{"single category", []string{"player"}, Player},
		{"several categories", []string{"player", "mixer"}, Player | Mixer},
		{"case insensitive", []string{"PLAYER", "Stored_Playlist"}, Player | StoredPlaylist},
		{"unknown names ignored", []string{"bogus"}, All},
		{"unknown mixed with known", []string{"bogus", "options"}, Options},
		{"duplicates collapse", []string{"player", "player"}, Player},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMask(tt.args); got != tt.want {
				t.Errorf("ParseMask(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestMaskNames(t *testing.T) {
	got := (Player | Database | Options).Names()
	want := []string{"database", "player", "options"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestBusWake(t *testing.T) {
	bus := NewBus()
	w := bus.Subscribe(Player | Mixer)
	defer w.Close()

	bus.Post(Player)

	select {
	case <-w.C():
	case <-time.After(time.Second):
		t.Fatal("waiter was not signalled")
	}

	if got := w.Take(); got != Player {
		t.Errorf("Take() = %v, want %v", got, Player)
	}
}

func TestBusIgnoresUnmatched(t *testing.T) {
	bus := NewBus()
	w := bus.Subscribe(Mixer)
	defer w.Close()

	bus.Post(Playlist | Database)

	select {
	case <-w.C():
		t.Fatal("waiter signalled for categories outside its interest")
	case <-time.After(50 * time.Millisecond):
	}
	if got := w.Take(); got != 0 {
		t.Errorf("Take() = %v, want 0", got)
	}
}

func TestBusCoalescesPosts(t *testing.T) {
	bus := NewBus()
	w := bus.Subscribe(All)
	defer w.Close()

	bus.Post(Player)
	bus.Post(Mixer)
	bus.Post(Player | Options)

	<-w.C()
	if got := w.Take(); got != Player|Mixer|Options {
		t.Errorf("Take() = %v, want %v", got, Player|Mixer|Options)
	}

	// One wake only: the channel must be drained now.
	select {
	case <-w.C():
		t.Fatal("second wake for coalesced posts")
	default:
	}
}

func TestBusBroadcast(t *testing.T) {
	bus := NewBus()
	w1 := bus.Subscribe(Player)
	w2 := bus.Subscribe(All)
	defer w1.Close()
	defer w2.Close()

	bus.Post(Player)

	for i, w := range []*Waiter{w1, w2} {
		select {
		case <-w.C():
		case <-time.After(time.Second):
			t.Fatalf("waiter %d missed the broadcast", i)
		}
		if got := w.Take(); got != Player {
			t.Errorf("waiter %d Take() = %v, want %v", i, got, Player)
		}
	}
}

func TestClosedWaiterReceivesNothing(t *testing.T) {
	bus := NewBus()
	w := bus.Subscribe(All)
	w.Close()

	bus.Post(Player)
	if got := w.Take(); got != 0 {
		t.Errorf("closed waiter accumulated %v", got)
	}
}

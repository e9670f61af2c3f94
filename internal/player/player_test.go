package player

import (
	"testing"

	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/song"
)

func TestTransitions(t *testing.T) {
	p := New(event.NewBus())

	if p.State() != StateStop {
		t.Fatalf("initial state = %v", p.State())
	}

	p.Play(song.Song{URI: "a.flac", Duration: 180})
	if p.State() != StatePlay {
		t.Fatalf("state after Play = %v", p.State())
	}

	p.SetPause(true)
	if p.State() != StatePause {
		t.Fatalf("state after pause = %v", p.State())
	}

	p.Pause() // toggle back
	if p.State() != StatePlay {
		t.Fatalf("state after toggle = %v", p.State())
	}

	p.Stop()
	if p.State() != StateStop {
		t.Fatalf("state after Stop = %v", p.State())
	}
}

func TestPauseWhileStoppedIsNoop(t *testing.T) {
	bus := event.NewBus()
	w := bus.Subscribe(event.Player)
	defer w.Close()

	p := New(bus)
	p.SetPause(true)

	if p.State() != StateStop {
		t.Errorf("state = %v, want stop", p.State())
	}
	select {
	case <-w.C():
		t.Error("pause while stopped posted a player event")
	default:
	}
}

func TestSeekClampsToDuration(t *testing.T) {
	p := New(event.NewBus())
	p.Play(song.Song{URI: "a.flac", Duration: 60})

	p.Seek(600)
	if got := p.Elapsed(); got != 60 {
		t.Errorf("Elapsed after over-seek = %d, want 60", got)
	}

	p.Seek(30)
	if got := p.Elapsed(); got < 30 || got > 31 {
		t.Errorf("Elapsed after seek = %d, want ~30", got)
	}
}

func TestElapsedFrozenWhilePaused(t *testing.T) {
	p := New(event.NewBus())
	p.Play(song.Song{URI: "a.flac", Duration: 60})
	p.Seek(10)
	p.SetPause(true)

	if got := p.Elapsed(); got < 10 || got > 11 {
		t.Errorf("Elapsed while paused = %d, want ~10", got)
	}
}

func TestStickyError(t *testing.T) {
	p := New(event.NewBus())

	p.SetError("decoder exploded")
	if p.Error() != "decoder exploded" {
		t.Fatalf("Error() = %q", p.Error())
	}
	p.ClearError()
	if p.Error() != "" {
		t.Errorf("error survived ClearError: %q", p.Error())
	}
}

func TestCrossFadeEvents(t *testing.T) {
	bus := event.NewBus()
	w := bus.Subscribe(event.Options)
	defer w.Close()

	p := New(bus)
	p.SetCrossFade(5)
	if p.CrossFade() != 5 {
		t.Fatalf("CrossFade = %d", p.CrossFade())
	}
	select {
	case <-w.C():
	default:
		t.Error("crossfade change posted no options event")
	}

	// Unchanged value is silent.
	w.Take()
	p.SetCrossFade(5)
	select {
	case <-w.C():
		t.Error("unchanged crossfade posted an event")
	default:
	}
}

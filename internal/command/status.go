package command

import (
	"time"

	"github.com/quaverd/quaverd/internal/player"
	"github.com/quaverd/quaverd/internal/protocol"
)

// status prints the fixed key set clients poll for. The song, time,
// bitrate, audio, updating_db and error keys are conditional; the rest
// always appear, in this order.
func (h *handlers) status(c Client, args []string) Outcome {
	d := h.deps
	c.Writef("volume: %d\n", d.Mixer.Level())
	c.Writef("repeat: %d\n", boolInt(d.Queue.Repeat()))
	c.Writef("random: %d\n", boolInt(d.Queue.Random()))
	c.Writef("single: %d\n", boolInt(d.Queue.Single()))
	c.Writef("consume: %d\n", boolInt(d.Queue.Consume()))
	c.Writef("playlist: %d\n", d.Queue.Version())
	c.Writef("playlistlength: %d\n", d.Queue.Len())
	c.Writef("xfade: %d\n", d.Player.CrossFade())

	state := d.Player.State()
	c.Writef("state: %s\n", state)
	if cur, found := d.Queue.Current(); found {
		c.Writef("song: %d\n", cur.Pos)
		c.Writef("songid: %d\n", cur.ID)
	}
	if state != player.StateStop {
		c.Writef("time: %d:%d\n", d.Player.Elapsed(), d.Player.Total())
		c.Writef("bitrate: %d\n", d.Player.Bitrate())
		f := d.Player.AudioFormat()
		c.Writef("audio: %d:%d:%d\n", f.SampleRate, f.Bits, f.Channels)
	}
	if job := d.Library.UpdateJob(); job != 0 {
		c.Writef("updating_db: %d\n", job)
	}
	if msg := d.Player.Error(); msg != "" {
		c.Writef("error: %s\n", msg)
	}
	return ok()
}

func (h *handlers) stats(c Client, args []string) Outcome {
	st, err := h.deps.Library.Stats(c.Context())
	if err != nil {
		return ackf(protocol.AckSystem, "%s", err)
	}
	c.Writef("artists: %d\n", st.Artists)
	c.Writef("albums: %d\n", st.Albums)
	c.Writef("songs: %d\n", st.Songs)
	c.Writef("uptime: %d\n", int(time.Since(h.deps.StartTime).Seconds()))
	c.Writef("playtime: %d\n", h.deps.Player.PlayTime())
	c.Writef("db_playtime: %d\n", st.DBPlaytime)

	var dbUpdate int64
	if t := h.deps.Library.LastUpdate(); !t.IsZero() {
		dbUpdate = t.Unix()
	}
	c.Writef("db_update: %d\n", dbUpdate)
	return ok()
}

func (h *handlers) currentSong(c Client, args []string) Outcome {
	if cur, found := h.deps.Queue.Current(); found {
		writeEntry(c, cur)
	}
	return ok()
}

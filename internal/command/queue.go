package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/protocol"
	"github.com/quaverd/quaverd/internal/song"
)

// supportedScheme limits remote additions to plain HTTP streams.
func supportedScheme(uri string) bool {
	return strings.HasPrefix(uri, "http://") ||
		strings.HasPrefix(uri, "https://")
}

// add appends a remote URL, a database song, or every song under a
// database directory.
func (h *handlers) add(c Client, args []string) Outcome {
	uri := args[0]
	if song.HasScheme(uri) {
		if !supportedScheme(uri) {
			return ackf(protocol.AckNoExist, "unsupported URI scheme")
		}
		_, r := h.deps.Queue.Add(song.Song{URI: uri})
		return resultOutcome(r, nil)
	}

	songs, err := h.deps.Library.SongsIn(c.Context(), uri)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return ackf(protocol.AckNoExist, "directory or file not found")
		}
		return ackf(protocol.AckSystem, "%s", err)
	}
	for _, s := range songs {
		if _, r := h.deps.Queue.Add(s); r != playlist.ResultSuccess {
			return resultOutcome(r, nil)
		}
	}
	return ok()
}

// addID appends exactly one song and reports the id it was assigned.
// An optional second argument moves it to that position; when the move
// fails the addition is undone so the command has no partial effect.
func (h *handlers) addID(c Client, args []string) Outcome {
	uri := args[0]
	var s song.Song
	if song.HasScheme(uri) {
		if !supportedScheme(uri) {
			return ackf(protocol.AckNoExist, "unsupported URI scheme")
		}
		s = song.Song{URI: uri}
	} else {
		found, exists, err := h.deps.Library.Get(c.Context(), uri)
		if err != nil {
			return ackf(protocol.AckSystem, "%s", err)
		}
		if !exists {
			return ackf(protocol.AckNoExist, "directory or file not found")
		}
		s = found
	}

	id, r := h.deps.Queue.Add(s)
	if r != playlist.ResultSuccess {
		return resultOutcome(r, nil)
	}
	if len(args) == 2 {
		to, ackErr := parseIntArg(args[1])
		if ackErr != nil {
			h.deps.Queue.DeleteID(id)
			return ackError(ackErr)
		}
		if r := h.deps.Queue.MoveID(id, to); r != playlist.ResultSuccess {
			h.deps.Queue.DeleteID(id)
			return resultOutcome(r, nil)
		}
	}
	c.Writef("Id: %d\n", id)
	return ok()
}

func (h *handlers) delete(c Client, args []string) Outcome {
	pos, ackErr := parseInt(args[0], msgNeedPositive)
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.Delete(pos), nil)
}

func (h *handlers) deleteID(c Client, args []string) Outcome {
	id, ackErr := parseInt(args[0], msgNeedPositive)
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.DeleteID(id), nil)
}

func (h *handlers) clear(c Client, args []string) Outcome {
	h.deps.Queue.Clear()
	return ok()
}

func (h *handlers) shuffle(c Client, args []string) Outcome {
	h.deps.Queue.Shuffle()
	return ok()
}

func (h *handlers) move(c Client, args []string) Outcome {
	from, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	to, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.Move(from, to), nil)
}

func (h *handlers) moveID(c Client, args []string) Outcome {
	id, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	to, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.MoveID(id, to), nil)
}

func (h *handlers) swap(c Client, args []string) Outcome {
	a, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	b, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.Swap(a, b), nil)
}

func (h *handlers) swapID(c Client, args []string) Outcome {
	a, ackErr := parseIntArg(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	b, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	return resultOutcome(h.deps.Queue.SwapID(a, b), nil)
}

// playlistCmd is the legacy terse listing: one "position:uri" line per
// entry.
func (h *handlers) playlistCmd(c Client, args []string) Outcome {
	for _, e := range h.deps.Queue.Songs() {
		c.Writef("%d:%s\n", e.Pos, e.Song.URI)
	}
	return ok()
}

func (h *handlers) playlistInfo(c Client, args []string) Outcome {
	if len(args) == 1 {
		pos, ackErr := parseInt(args[0], msgNeedPositive)
		if ackErr != nil {
			return ackError(ackErr)
		}
		e, found := h.deps.Queue.Song(pos)
		if !found {
			return resultOutcome(playlist.ResultBadRange, nil)
		}
		writeEntry(c, e)
		return ok()
	}
	for _, e := range h.deps.Queue.Songs() {
		writeEntry(c, e)
	}
	return ok()
}

func (h *handlers) playlistID(c Client, args []string) Outcome {
	if len(args) == 1 {
		id, ackErr := parseInt(args[0], msgNeedPositive)
		if ackErr != nil {
			return ackError(ackErr)
		}
		e, found := h.deps.Queue.SongByID(id)
		if !found {
			return resultOutcome(playlist.ResultNoSuchSong, nil)
		}
		writeEntry(c, e)
		return ok()
	}
	for _, e := range h.deps.Queue.Songs() {
		writeEntry(c, e)
	}
	return ok()
}

func (h *handlers) plChanges(c Client, args []string) Outcome {
	version, ackErr := parseVersion(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	for _, e := range h.deps.Queue.ChangesSince(version) {
		writeEntry(c, e)
	}
	return ok()
}

// plChangesPosID is the cheap variant: positions and ids only, no tag
// blocks.
func (h *handlers) plChangesPosID(c Client, args []string) Outcome {
	version, ackErr := parseVersion(args[0])
	if ackErr != nil {
		return ackError(ackErr)
	}
	for _, e := range h.deps.Queue.ChangesSince(version) {
		c.Writef("cpos: %d\n", e.Pos)
		c.Writef("Id: %d\n", e.ID)
	}
	return ok()
}

func (h *handlers) playlistFind(c Client, args []string) Outcome {
	return h.queueMatch(c, args, true)
}

func (h *handlers) playlistSearch(c Client, args []string) Outcome {
	return h.queueMatch(c, args, false)
}

func (h *handlers) queueMatch(c Client, args []string, exact bool) Outcome {
	filters, err := library.ParseFilters(args)
	if err != nil {
		return ackf(protocol.AckArg, "%s", err)
	}
	for _, e := range h.deps.Queue.Songs() {
		if matchFilters(e.Song, filters, exact) {
			writeEntry(c, e)
		}
	}
	return ok()
}

func matchFilters(s song.Song, filters []library.TagFilter, exact bool) bool {
	for _, f := range filters {
		if !matchTag(s, f, exact) {
			return false
		}
	}
	return true
}

func matchTag(s song.Song, f library.TagFilter, exact bool) bool {
	var values []string
	switch f.Tag {
	case "artist":
		values = []string{s.Artist}
	case "album":
		values = []string{s.Album}
	case "title":
		values = []string{s.Title}
	case "genre":
		values = []string{s.Genre}
	case "track":
		values = []string{strconv.Itoa(s.Track)}
	case "file", "filename":
		values = []string{s.URI}
	case "any":
		values = []string{s.Artist, s.Album, s.Title, s.Genre, s.URI}
	}
	for _, v := range values {
		if exact {
			if v == f.Value {
				return true
			}
		} else if strings.Contains(strings.ToLower(v), strings.ToLower(f.Value)) {
			return true
		}
	}
	return false
}

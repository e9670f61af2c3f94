package command

import (
	"errors"

	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/protocol"
	"github.com/quaverd/quaverd/internal/song"
)

// save snapshots the queue into a new stored playlist. Overwriting an
// existing one is refused.
func (h *handlers) save(c Client, args []string) Outcome {
	entries := h.deps.Queue.Songs()
	uris := make([]string, 0, len(entries))
	for _, e := range entries {
		uris = append(uris, e.Song.URI)
	}
	r, err := h.deps.Stored.Save(args[0], uris)
	return resultOutcome(r, err)
}

// load appends a stored playlist to the queue. Entries still known to
// the database carry their tags; the rest are added as bare URIs, which
// keeps playlists of remote streams loadable.
func (h *handlers) load(c Client, args []string) Outcome {
	uris, r, err := h.deps.Stored.Songs(args[0])
	if r != playlist.ResultSuccess {
		return loadOutcome(r, err)
	}
	for _, uri := range uris {
		s := song.Song{URI: uri}
		if !song.HasScheme(uri) {
			if found, exists, err := h.deps.Library.Get(c.Context(), uri); err == nil && exists {
				s = found
			}
		}
		if _, r := h.deps.Queue.Add(s); r != playlist.ResultSuccess {
			return resultOutcome(r, nil)
		}
	}
	return ok()
}

func (h *handlers) rm(c Client, args []string) Outcome {
	r, err := h.deps.Stored.Delete(args[0])
	return resultOutcome(r, err)
}

func (h *handlers) rename(c Client, args []string) Outcome {
	r, err := h.deps.Stored.Rename(args[0], args[1])
	return resultOutcome(r, err)
}

func (h *handlers) listPlaylist(c Client, args []string) Outcome {
	uris, r, err := h.deps.Stored.Songs(args[0])
	if r != playlist.ResultSuccess {
		return loadOutcome(r, err)
	}
	for _, uri := range uris {
		c.Writef("file: %s\n", uri)
	}
	return ok()
}

func (h *handlers) listPlaylistInfo(c Client, args []string) Outcome {
	uris, r, err := h.deps.Stored.Songs(args[0])
	if r != playlist.ResultSuccess {
		return loadOutcome(r, err)
	}
	for _, uri := range uris {
		if found, exists, err := h.deps.Library.Get(c.Context(), uri); err == nil && exists {
			writeSong(c, found)
			continue
		}
		c.Writef("file: %s\n", uri)
	}
	return ok()
}

func (h *handlers) listPlaylists(c Client, args []string) Outcome {
	infos, err := h.deps.Stored.List()
	if err != nil {
		return ackf(protocol.AckSystem, "%s", err)
	}
	for _, in := range infos {
		writePlaylistInfo(c, in.Name, in.LastModified)
	}
	return ok()
}

// playlistAdd appends a URL, a database song, or a database subtree to
// a stored playlist, creating it when absent.
func (h *handlers) playlistAdd(c Client, args []string) Outcome {
	name, uri := args[0], args[1]
	if song.HasScheme(uri) {
		if !supportedScheme(uri) {
			return ackf(protocol.AckNoExist, "unsupported URI scheme")
		}
		r, err := h.deps.Stored.Append(name, uri)
		return resultOutcome(r, err)
	}

	songs, err := h.deps.Library.SongsIn(c.Context(), uri)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return ackf(protocol.AckNoExist, "directory or file not found")
		}
		return ackf(protocol.AckSystem, "%s", err)
	}
	for _, s := range songs {
		if r, err := h.deps.Stored.Append(name, s.URI); r != playlist.ResultSuccess {
			return resultOutcome(r, err)
		}
	}
	return ok()
}

func (h *handlers) playlistClear(c Client, args []string) Outcome {
	r, err := h.deps.Stored.Clear(args[0])
	return resultOutcome(r, err)
}

func (h *handlers) playlistDelete(c Client, args []string) Outcome {
	pos, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	r, err := h.deps.Stored.RemoveIndex(args[0], pos)
	return resultOutcome(r, err)
}

func (h *handlers) playlistMove(c Client, args []string) Outcome {
	from, ackErr := parseIntArg(args[1])
	if ackErr != nil {
		return ackError(ackErr)
	}
	to, ackErr := parseIntArg(args[2])
	if ackErr != nil {
		return ackError(ackErr)
	}
	r, err := h.deps.Stored.MoveIndex(args[0], from, to)
	return resultOutcome(r, err)
}

package command

import (
	"errors"
	"strings"

	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/protocol"
)

func (h *handlers) update(c Client, args []string) Outcome {
	var relPath string
	if len(args) == 1 {
		relPath = args[0]
	}
	job, err := h.deps.Library.Update(relPath)
	if err != nil {
		if errors.Is(err, library.ErrUpdateAlready) {
			return ackf(protocol.AckUpdateAlready, "already updating")
		}
		return ackf(protocol.AckSystem, "%s", err)
	}
	c.Writef("updating_db: %d\n", job)
	return ok()
}

func (h *handlers) find(c Client, args []string) Outcome {
	return h.findSongs(c, args, true)
}

func (h *handlers) search(c Client, args []string) Outcome {
	return h.findSongs(c, args, false)
}

func (h *handlers) findSongs(c Client, args []string, exact bool) Outcome {
	filters, err := library.ParseFilters(args)
	if err != nil {
		return ackf(protocol.AckArg, "%s", err)
	}
	songs, err := h.deps.Library.Find(c.Context(), filters, exact)
	if err != nil {
		return ackf(protocol.AckSystem, "%s", err)
	}
	for _, s := range songs {
		writeSong(c, s)
	}
	return ok()
}

func (h *handlers) count(c Client, args []string) Outcome {
	filters, err := library.ParseFilters(args)
	if err != nil {
		return ackf(protocol.AckArg, "%s", err)
	}
	songs, playtime, err := h.deps.Library.Count(c.Context(), filters)
	if err != nil {
		return ackf(protocol.AckSystem, "%s", err)
	}
	c.Writef("songs: %d\n", songs)
	c.Writef("playtime: %d\n", playtime)
	return ok()
}

// list prints the distinct values of one tag. The historic two-argument
// form "list album X" filters by artist.
func (h *handlers) list(c Client, args []string) Outcome {
	tag := args[0]
	if strings.ToLower(tag) == "any" {
		return ackf(protocol.AckArg, "\"any\" is not a valid return tag type")
	}

	var filters []library.TagFilter
	switch {
	case len(args) == 1:
	case len(args) == 2:
		if strings.ToLower(tag) != "album" {
			return ackf(protocol.AckArg, "should be \"Album\" for 3 arguments")
		}
		filters = []library.TagFilter{{Tag: "artist", Value: args[1]}}
	default:
		var err error
		filters, err = library.ParseFilters(args[1:])
		if err != nil {
			return ackf(protocol.AckArg, "not able to parse args")
		}
	}

	values, err := h.deps.Library.ListUnique(c.Context(), tag, filters)
	if err != nil {
		return ackf(protocol.AckArg, "%s", err)
	}
	name := displayTag(tag)
	for _, v := range values {
		c.Writef("%s: %s\n", name, v)
	}
	return ok()
}

func (h *handlers) listAll(c Client, args []string) Outcome {
	entries, out := h.treeEntries(c, args)
	if out.Kind != KindOK {
		return out
	}
	for _, e := range entries {
		if e.IsDir {
			c.Writef("directory: %s\n", e.Path)
		} else {
			c.Writef("file: %s\n", e.Song.URI)
		}
	}
	return ok()
}

func (h *handlers) listAllInfo(c Client, args []string) Outcome {
	entries, out := h.treeEntries(c, args)
	if out.Kind != KindOK {
		return out
	}
	for _, e := range entries {
		if e.IsDir {
			c.Writef("directory: %s\n", e.Path)
		} else {
			writeSong(c, e.Song)
		}
	}
	return ok()
}

func (h *handlers) treeEntries(c Client, args []string) ([]library.Entry, Outcome) {
	var relPath string
	if len(args) == 1 {
		relPath = args[0]
	}
	entries, err := h.deps.Library.ListAll(c.Context(), relPath)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil, ackf(protocol.AckNoExist, "directory or file not found")
		}
		return nil, ackf(protocol.AckSystem, "%s", err)
	}
	return entries, ok()
}

// lsInfo lists the immediate children of a directory; at the root the
// stored playlists are appended after the database entries.
func (h *handlers) lsInfo(c Client, args []string) Outcome {
	var relPath string
	if len(args) == 1 {
		relPath = args[0]
	}
	entries, err := h.deps.Library.LsInfo(c.Context(), relPath)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return ackf(protocol.AckNoExist, "directory or file not found")
		}
		return ackf(protocol.AckSystem, "%s", err)
	}
	for _, e := range entries {
		if e.IsDir {
			c.Writef("directory: %s\n", e.Path)
		} else {
			writeSong(c, e.Song)
		}
	}

	if relPath == "" {
		infos, err := h.deps.Stored.List()
		if err != nil {
			return ackf(protocol.AckSystem, "%s", err)
		}
		for _, in := range infos {
			writePlaylistInfo(c, in.Name, in.LastModified)
		}
	}
	return ok()
}

func (h *handlers) tagTypes(c Client, args []string) Outcome {
	for _, name := range library.TagNames() {
		c.Writef("tagtype: %s\n", name)
	}
	return ok()
}

func (h *handlers) urlHandlers(c Client, args []string) Outcome {
	c.Writef("handler: http://\n")
	c.Writef("handler: https://\n")
	return ok()
}

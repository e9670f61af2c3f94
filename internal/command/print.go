package command

import (
	"strings"
	"time"

	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/song"
)

// writeSong emits the tag block of one song. Absent tags are omitted
// rather than printed empty.
func writeSong(c Client, s song.Song) {
	c.Writef("file: %s\n", s.URI)
	if s.Duration > 0 {
		c.Writef("Time: %d\n", s.Duration)
	}
	if s.Artist != "" {
		c.Writef("Artist: %s\n", s.Artist)
	}
	if s.Title != "" {
		c.Writef("Title: %s\n", s.Title)
	}
	if s.Album != "" {
		c.Writef("Album: %s\n", s.Album)
	}
	if s.Track > 0 {
		c.Writef("Track: %d\n", s.Track)
	}
	if s.Genre != "" {
		c.Writef("Genre: %s\n", s.Genre)
	}
}

// writeEntry emits a queue entry: the song block plus its position and
// id.
func writeEntry(c Client, e playlist.Entry) {
	writeSong(c, e.Song)
	c.Writef("Pos: %d\n", e.Pos)
	c.Writef("Id: %d\n", e.ID)
}

// writePlaylistInfo emits one stored-playlist directory row.
func writePlaylistInfo(c Client, name string, lastModified time.Time) {
	c.Writef("playlist: %s\n", name)
	c.Writef("Last-Modified: %s\n",
		lastModified.UTC().Format("2006-01-02T15:04:05Z"))
}

// displayTag maps a queryable tag name to its response spelling.
func displayTag(tag string) string {
	switch strings.ToLower(tag) {
	case "artist":
		return "Artist"
	case "album":
		return "Album"
	case "title":
		return "Title"
	case "track":
		return "Track"
	case "genre":
		return "Genre"
	case "filename", "file":
		return "file"
	}
	return tag
}

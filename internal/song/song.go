// Package song defines the song metadata record shared by the queue,
// the library database and the player.
package song

import "time"

// Song is one playable item. URI is relative to the music directory for
// local files, or an absolute URL for remote streams.
type Song struct {
	URI          string
	Artist       string
	Album        string
	Title        string
	Genre        string
	Track        int
	Duration     int // seconds, 0 when unknown
	LastModified time.Time
}

// IsRemote reports whether the song is referenced by URL rather than a
// library path.
func (s Song) IsRemote() bool {
	return HasScheme(s.URI)
}

// HasScheme reports whether uri carries a URL scheme prefix.
func HasScheme(uri string) bool {
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c == ':':
			return i > 0 && i+2 < len(uri) && uri[i+1] == '/' && uri[i+2] == '/'
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9', c == '+', c == '-', c == '.':
		default:
			return false
		}
	}
	return false
}

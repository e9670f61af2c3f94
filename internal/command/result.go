package command

import (
	"fmt"

	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/protocol"
)

// resultOutcome translates a domain result into a wire outcome. The
// mapping is exhaustive: a new Result value without a row here is a
// programming error that must not be papered over at run time.
func resultOutcome(r playlist.Result, err error) Outcome {
	switch r {
	case playlist.ResultSuccess:
		return ok()
	case playlist.ResultErrno:
		return ackf(protocol.AckSystem, "%s", errText(err))
	case playlist.ResultDenied:
		return ackf(protocol.AckNoExist, "Access denied")
	case playlist.ResultNoSuchSong:
		return ackf(protocol.AckNoExist, "No such song")
	case playlist.ResultNoSuchList:
		return ackf(protocol.AckNoExist, "No such playlist")
	case playlist.ResultListExists:
		return ackf(protocol.AckExist, "Playlist already exists")
	case playlist.ResultBadName:
		return ackf(protocol.AckArg,
			"playlist name is invalid: playlist names may not contain slashes, newlines or carriage returns")
	case playlist.ResultBadRange:
		return ackf(protocol.AckArg, "Bad song index")
	case playlist.ResultNotPlaying:
		return ackf(protocol.AckPlayerSync, "Not playing")
	case playlist.ResultTooLarge:
		return ackf(protocol.AckPlaylistMax, "playlist is at the max size")
	}
	panic(fmt.Sprintf("unmapped playlist result %d", int(r)))
}

// loadOutcome is the variant for reading stored playlist files, where
// an I/O failure reports the playlist-load code instead of the generic
// system one.
func loadOutcome(r playlist.Result, err error) Outcome {
	if r == playlist.ResultErrno {
		return ackf(protocol.AckPlaylistLoad, "%s", errText(err))
	}
	return resultOutcome(r, err)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

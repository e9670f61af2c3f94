package playlist

// Result is the domain outcome of a queue or stored-playlist operation.
// The protocol layer maps each value to exactly one ACK code; adding a
// value here without extending that table is a startup-visible bug.
type Result int

const (
	ResultSuccess Result = iota
	ResultErrno
	ResultDenied
	ResultNoSuchSong
	ResultNoSuchList
	ResultListExists
	ResultBadName
	ResultBadRange
	ResultNotPlaying
	ResultTooLarge
)

// String names the result for logs and assertions.
func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultErrno:
		return "errno"
	case ResultDenied:
		return "denied"
	case ResultNoSuchSong:
		return "no such song"
	case ResultNoSuchList:
		return "no such playlist"
	case ResultListExists:
		return "playlist exists"
	case ResultBadName:
		return "bad name"
	case ResultBadRange:
		return "bad range"
	case ResultNotPlaying:
		return "not playing"
	case ResultTooLarge:
		return "too large"
	}
	return "unknown"
}

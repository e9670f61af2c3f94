package command

import (
	"fmt"
	"sort"

	"github.com/quaverd/quaverd/internal/permission"
	"github.com/quaverd/quaverd/internal/protocol"
)

// HandlerFunc runs one command after the pre-dispatch checks passed.
type HandlerFunc func(c Client, args []string) Outcome

// Arity sentinels. A negative Min disables arity checking entirely; a
// negative Max allows any argument count at or above Min.
const (
	ArgsUnchecked = -1
	ArgsUnbounded = -1
)

// Definition describes one protocol command: its name, the permission
// bits a connection must hold, the argument-count bounds checked before
// the handler runs, and the handler itself.
type Definition struct {
	Name       string
	Permission permission.Bits
	Min, Max   int
	Handler    HandlerFunc
}

func (d *Definition) checkArity(n int) *protocol.AckError {
	if d.Min < 0 {
		return nil
	}
	switch {
	case d.Min == d.Max && n != d.Min:
		return protocol.Ackf(protocol.AckArg,
			"wrong number of arguments for \"%s\"", d.Name)
	case n < d.Min:
		return protocol.Ackf(protocol.AckArg,
			"too few arguments for \"%s\"", d.Name)
	case d.Max >= 0 && n > d.Max:
		return protocol.Ackf(protocol.AckArg,
			"too many arguments for \"%s\"", d.Name)
	}
	return nil
}

// Registry is the sorted command table. Lookup is a binary search, so
// the table order is load-bearing; NewRegistry refuses to start with a
// misordered table.
type Registry struct {
	defs []Definition
}

// NewRegistry builds the command table bound to deps.
func NewRegistry(deps *Deps) *Registry {
	h := &handlers{deps: deps}
	r := &Registry{defs: h.table()}
	for i := 1; i < len(r.defs); i++ {
		if r.defs[i-1].Name >= r.defs[i].Name {
			panic(fmt.Sprintf("command table out of order: %q before %q",
				r.defs[i-1].Name, r.defs[i].Name))
		}
	}
	h.reg = r
	return r
}

// Lookup finds a command by exact name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	i := sort.Search(len(r.defs), func(i int) bool {
		return r.defs[i].Name >= name
	})
	if i < len(r.defs) && r.defs[i].Name == name {
		return &r.defs[i], true
	}
	return nil, false
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.defs)
}

// handlers binds the command implementations to their collaborators.
// The registry back-pointer serves commands and notcommands, which
// reflect over the table itself.
type handlers struct {
	deps *Deps
	reg  *Registry
}

// table returns the command definitions in sorted order. Keep entries
// alphabetized; NewRegistry panics otherwise.
func (h *handlers) table() []Definition {
	return []Definition{
		{"add", permission.Add, 1, 1, h.add},
		{"addid", permission.Add, 1, 2, h.addID},
		{"clear", permission.Control, 0, 0, h.clear},
		{"clearerror", permission.Control, 0, 0, h.clearError},
		{"close", permission.None, ArgsUnchecked, ArgsUnchecked, h.close},
		{"commands", permission.None, 0, 0, h.commands},
		{"consume", permission.Control, 1, 1, h.consume},
		{"count", permission.Read, 2, ArgsUnbounded, h.count},
		{"crossfade", permission.Control, 1, 1, h.crossfade},
		{"currentsong", permission.Read, 0, 0, h.currentSong},
		{"delete", permission.Control, 1, 1, h.delete},
		{"deleteid", permission.Control, 1, 1, h.deleteID},
		{"disableoutput", permission.Admin, 1, 1, h.disableOutput},
		{"enableoutput", permission.Admin, 1, 1, h.enableOutput},
		{"find", permission.Read, 2, ArgsUnbounded, h.find},
		{"idle", permission.Read, 0, ArgsUnbounded, h.idle},
		{"kill", permission.Admin, ArgsUnchecked, ArgsUnchecked, h.kill},
		{"list", permission.Read, 1, ArgsUnbounded, h.list},
		{"listall", permission.Read, 0, 1, h.listAll},
		{"listallinfo", permission.Read, 0, 1, h.listAllInfo},
		{"listplaylist", permission.Read, 1, 1, h.listPlaylist},
		{"listplaylistinfo", permission.Read, 1, 1, h.listPlaylistInfo},
		{"listplaylists", permission.Read, 0, 0, h.listPlaylists},
		{"load", permission.Add, 1, 1, h.load},
		{"lsinfo", permission.Read, 0, 1, h.lsInfo},
		{"move", permission.Control, 2, 2, h.move},
		{"moveid", permission.Control, 2, 2, h.moveID},
		{"next", permission.Control, 0, 0, h.next},
		{"noidle", permission.None, ArgsUnchecked, ArgsUnchecked, h.noIdle},
		{"notcommands", permission.None, 0, 0, h.notCommands},
		{"outputs", permission.Read, 0, 0, h.outputs},
		{"password", permission.None, 1, 1, h.password},
		{"pause", permission.Control, 0, 1, h.pause},
		{"ping", permission.None, 0, 0, h.ping},
		{"play", permission.Control, 0, 1, h.play},
		{"playid", permission.Control, 0, 1, h.playID},
		{"playlist", permission.Read, 0, 0, h.playlistCmd},
		{"playlistadd", permission.Control, 2, 2, h.playlistAdd},
		{"playlistclear", permission.Control, 1, 1, h.playlistClear},
		{"playlistdelete", permission.Control, 2, 2, h.playlistDelete},
		{"playlistfind", permission.Read, 2, ArgsUnbounded, h.playlistFind},
		{"playlistid", permission.Read, 0, 1, h.playlistID},
		{"playlistinfo", permission.Read, 0, 1, h.playlistInfo},
		{"playlistmove", permission.Control, 3, 3, h.playlistMove},
		{"playlistsearch", permission.Read, 2, ArgsUnbounded, h.playlistSearch},
		{"plchanges", permission.Read, 1, 1, h.plChanges},
		{"plchangesposid", permission.Read, 1, 1, h.plChangesPosID},
		{"previous", permission.Control, 0, 0, h.previous},
		{"random", permission.Control, 1, 1, h.random},
		{"rename", permission.Control, 2, 2, h.rename},
		{"repeat", permission.Control, 1, 1, h.repeat},
		{"rm", permission.Control, 1, 1, h.rm},
		{"save", permission.Control, 1, 1, h.save},
		{"search", permission.Read, 2, ArgsUnbounded, h.search},
		{"seek", permission.Control, 2, 2, h.seek},
		{"seekid", permission.Control, 2, 2, h.seekID},
		{"setvol", permission.Control, 1, 1, h.setVol},
		{"shuffle", permission.Control, 0, 0, h.shuffle},
		{"single", permission.Control, 1, 1, h.single},
		{"stats", permission.Read, 0, 0, h.stats},
		{"status", permission.Read, 0, 0, h.status},
		{"stop", permission.Control, 0, 0, h.stop},
		{"swap", permission.Control, 2, 2, h.swap},
		{"swapid", permission.Control, 2, 2, h.swapID},
		{"tagtypes", permission.Read, 0, 0, h.tagTypes},
		{"update", permission.Admin, 0, 1, h.update},
		{"urlhandlers", permission.Read, 0, 0, h.urlHandlers},
		{"volume", permission.Control, 1, 1, h.volume},
	}
}

// Package daemon runs the TCP front end: the listener, one goroutine
// per connection, and the wiring between connections and the command
// core.
package daemon

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/quaverd/quaverd/internal/command"
	"github.com/quaverd/quaverd/internal/config"
	"github.com/quaverd/quaverd/internal/event"
	"github.com/quaverd/quaverd/internal/library"
	"github.com/quaverd/quaverd/internal/mixer"
	"github.com/quaverd/quaverd/internal/output"
	"github.com/quaverd/quaverd/internal/permission"
	"github.com/quaverd/quaverd/internal/player"
	"github.com/quaverd/quaverd/internal/playlist"
	"github.com/quaverd/quaverd/internal/storedpl"
)

// Version is the daemon version.
const Version = "0.1.0"

// Daemon owns the shared music state and serves it to protocol clients.
type Daemon struct {
	cfg *config.Config
	log zerolog.Logger

	bus        *event.Bus
	lib        *library.Library
	dispatcher *command.Dispatcher
	deps       *command.Deps

	defaultPerm permission.Bits

	listener    net.Listener
	clients     sync.Map // client id -> *connection
	clientCount atomic.Int64
	nextID      atomic.Int64

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	shutdownMu sync.Mutex
	shutdown   bool
}

// New assembles a daemon from configuration. The library database is
// opened here; the listener is not bound until Start.
func New(cfg *config.Config, log zerolog.Logger) (*Daemon, error) {
	defaultPerm, err := cfg.DefaultBits()
	if err != nil {
		return nil, fmt.Errorf("default permissions: %w", err)
	}
	passwords, err := cfg.PasswordBits()
	if err != nil {
		return nil, fmt.Errorf("passwords: %w", err)
	}

	bus := event.NewBus()
	lib, err := library.Open(cfg.DBPath, cfg.MusicDir, bus, log)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}

	p := player.New(bus)
	deps := &command.Deps{
		Queue:     playlist.New(p, bus, time.Now().UnixNano()),
		Player:    p,
		Mixer:     mixer.New(100, bus),
		Outputs:   output.NewManager(cfg.AudioOutputs, bus),
		Library:   lib,
		Stored:    storedpl.New(cfg.PlaylistDir, bus),
		Passwords: passwords,
		StartTime: time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		cfg:         cfg,
		log:         log,
		bus:         bus,
		lib:         lib,
		dispatcher:  command.NewDispatcher(command.NewRegistry(deps)),
		deps:        deps,
		defaultPerm: defaultPerm,
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start binds the listener and begins accepting connections.
func (d *Daemon) Start() error {
	d.shutdownMu.Lock()
	if d.shutdown {
		d.shutdownMu.Unlock()
		return fmt.Errorf("daemon already shut down")
	}
	d.shutdownMu.Unlock()

	listener, err := net.Listen("tcp", d.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.cfg.BindAddress, err)
	}
	d.listener = listener
	d.log.Info().Str("addr", listener.Addr().String()).Msg("daemon listening")

	if d.cfg.WatchLibrary {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.lib.Watch(d.ctx); err != nil {
				d.log.Error().Err(err).Msg("library watcher stopped")
			}
		}()
	}

	d.wg.Add(1)
	go d.acceptLoop()
	return nil
}

// Addr returns the bound listen address, useful when the configuration
// asked for port 0.
func (d *Daemon) Addr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

func (d *Daemon) acceptLoop() {
	defer d.wg.Done()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.ctx.Done():
				return
			default:
				d.log.Error().Err(err).Msg("accept failed")
				continue
			}
		}

		if d.cfg.MaxClients > 0 && d.clientCount.Load() >= int64(d.cfg.MaxClients) {
			d.log.Warn().Msg("max clients reached, rejecting connection")
			conn.Close()
			continue
		}

		id := d.nextID.Add(1)
		client := newConnection(id, conn, d)
		d.clients.Store(id, client)
		d.clientCount.Add(1)

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer func() {
				d.clients.Delete(id)
				d.clientCount.Add(-1)
			}()
			client.handle(d.ctx)
		}()
	}
}

// Stop shuts the daemon down: no new connections, existing ones closed,
// the library released. It waits for goroutines until ctx expires.
func (d *Daemon) Stop(ctx context.Context) error {
	d.shutdownMu.Lock()
	if d.shutdown {
		d.shutdownMu.Unlock()
		return nil
	}
	d.shutdown = true
	d.shutdownMu.Unlock()

	d.log.Info().Msg("daemon stopping")
	d.cancel()

	if d.listener != nil {
		d.listener.Close()
	}
	d.clients.Range(func(_, value any) bool {
		value.(*connection).close()
		return true
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if cerr := d.lib.Close(); cerr != nil && err == nil {
		err = cerr
	}
	d.log.Info().Msg("daemon stopped")
	return err
}

// Wait blocks until the daemon begins shutting down and its goroutines
// have drained.
func (d *Daemon) Wait() {
	<-d.ctx.Done()
	d.wg.Wait()
}

// requestShutdown is the kill command's path: tear the daemon down in
// the background so the issuing connection can still flush its OK.
func (d *Daemon) requestShutdown() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.Stop(ctx); err != nil {
			d.log.Error().Err(err).Msg("shutdown")
		}
	}()
}

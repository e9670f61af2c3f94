// Package config loads daemon settings from the environment. A .env
// file in the working directory is honored when present, which keeps
// development setups out of the shell profile.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/quaverd/quaverd/internal/permission"
)

// Config holds every tunable of the daemon.
type Config struct {
	// BindAddress is the TCP address the daemon listens on.
	BindAddress string `env:"QUAVERD_BIND_ADDRESS" envDefault:":6600"`

	// MusicDir is the root of the scanned music tree.
	MusicDir string `env:"QUAVERD_MUSIC_DIR" envDefault:"music"`

	// PlaylistDir holds the stored .m3u playlists.
	PlaylistDir string `env:"QUAVERD_PLAYLIST_DIR" envDefault:"playlists"`

	// DBPath is the SQLite database file backing the music library.
	DBPath string `env:"QUAVERD_DB_PATH" envDefault:"quaverd.db"`

	// MaxClients caps concurrent connections; further accepts are
	// closed immediately.
	MaxClients int `env:"QUAVERD_MAX_CLIENTS" envDefault:"64"`

	// MaxCommandListLen bounds the number of buffered lines in one
	// command list.
	MaxCommandListLen int `env:"QUAVERD_MAX_COMMAND_LIST" envDefault:"2048"`

	// WriteTimeout bounds each response flush; 0 disables the deadline.
	WriteTimeout time.Duration `env:"QUAVERD_WRITE_TIMEOUT" envDefault:"30s"`

	// ReadTimeout drops a connection that sends nothing for this long.
	// Connections parked in an idle wait are exempt. 0 disables the
	// deadline.
	ReadTimeout time.Duration `env:"QUAVERD_READ_TIMEOUT" envDefault:"60s"`

	// DefaultPermissions is the comma-separated permission list granted
	// to connections that have not sent a password.
	DefaultPermissions string `env:"QUAVERD_DEFAULT_PERMISSIONS" envDefault:"read,add,control,admin"`

	// Passwords is a space-separated list of secret@perm,perm entries.
	Passwords []string `env:"QUAVERD_PASSWORDS" envSeparator:" "`

	// AudioOutputs names the audio output devices.
	AudioOutputs []string `env:"QUAVERD_AUDIO_OUTPUTS" envSeparator:"," envDefault:"default"`

	// WatchLibrary enables the filesystem watcher that triggers
	// database updates when the music tree changes.
	WatchLibrary bool `env:"QUAVERD_WATCH" envDefault:"false"`

	LogLevel      string `env:"QUAVERD_LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"QUAVERD_LOG_FILE"`
	LogMaxSizeMB  int    `env:"QUAVERD_LOG_MAX_SIZE" envDefault:"10"`
	LogMaxBackups int    `env:"QUAVERD_LOG_MAX_BACKUPS" envDefault:"3"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// DefaultBits resolves the permission set granted before
// authentication.
func (c *Config) DefaultBits() (permission.Bits, error) {
	if c.DefaultPermissions == "" {
		return permission.None, nil
	}
	return permission.Parse(c.DefaultPermissions)
}

// PasswordBits parses the password entries into a lookup table.
func (c *Config) PasswordBits() (map[string]permission.Bits, error) {
	out := make(map[string]permission.Bits, len(c.Passwords))
	for _, entry := range c.Passwords {
		if entry == "" {
			continue
		}
		secret, perms, found := strings.Cut(entry, "@")
		if !found || secret == "" {
			return nil, fmt.Errorf("malformed password entry %q: want secret@permissions", entry)
		}
		bits, err := permission.Parse(perms)
		if err != nil {
			return nil, fmt.Errorf("password entry %q: %w", entry, err)
		}
		out[secret] = bits
	}
	return out, nil
}

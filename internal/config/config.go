// Package config implements Config & Bootstrap (SPEC_FULL §4.7): loading
// server configuration from defaults, an optional file, the environment,
// and CLI positional arguments, in that increasing order of precedence.
package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything Bootstrap needs to wire C1-C6 together.
type Config struct {
	ContentDir string
	DataDir    string
	Port       int

	// PostgresDSN is optional. Empty means the Lifecycle Ledger degrades
	// to a logger-only stub rather than failing startup (SPEC_FULL §4.7).
	PostgresDSN string

	DefaultSeatCap    int
	HeartbeatInterval time.Duration
	WarningThreshold  time.Duration
	ErrorThreshold    time.Duration

	// SnapshotDir is derived from DataDir; kept distinct in case a future
	// revision wants to split snapshots from other on-disk draft state.
	SnapshotDir string
}

// ErrUsage reports a missing or malformed CLI argument (spec §6: this
// maps to exit code 1, configuration error).
type ErrUsage struct{ Message string }

func (e *ErrUsage) Error() string { return e.Message }

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_seat_cap", 8)
	v.SetDefault("heartbeat_interval", 5*time.Second)
	v.SetDefault("warning_threshold", 15*time.Second)
	v.SetDefault("error_threshold", 60*time.Second)
	v.SetDefault("postgres_dsn", "")
}

// Load builds a Config from, in increasing precedence: built-in
// defaults, an optional config file named by $DRAFT_CONFIG_FILE, the
// DRAFT_* environment, and finally the CLI's three positional arguments
// (<content_dir> <data_dir> <port>), which always win when present.
//
// A local .env file is loaded first (if present) so its values are
// visible to the environment layer below; its absence is not an error.
func Load(args []string) (Config, error) {
	// Absence of a .env file is the common case outside local dev; ignored.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DRAFT")
	v.AutomaticEnv()

	if configFile := v.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		PostgresDSN:       v.GetString("postgres_dsn"),
		DefaultSeatCap:    v.GetInt("default_seat_cap"),
		HeartbeatInterval: v.GetDuration("heartbeat_interval"),
		WarningThreshold:  v.GetDuration("warning_threshold"),
		ErrorThreshold:    v.GetDuration("error_threshold"),
	}

	if err := applyPositionalArgs(&cfg, args); err != nil {
		return Config{}, err
	}

	cfg.SnapshotDir = cfg.DataDir
	return cfg, nil
}

// applyPositionalArgs overlays the CLI's <content_dir> <data_dir> <port>
// onto cfg, per spec §6. All three are mandatory; the CLI has no other
// way to supply them.
func applyPositionalArgs(cfg *Config, args []string) error {
	if len(args) != 3 {
		return &ErrUsage{Message: fmt.Sprintf("usage: draftd <content_dir> <data_dir> <port> (got %d argument(s))", len(args))}
	}

	cfg.ContentDir = args[0]
	cfg.DataDir = args[1]

	port, err := strconv.Atoi(args[2])
	if err != nil || port <= 0 || port > 65535 {
		return &ErrUsage{Message: fmt.Sprintf("invalid port %q", args[2])}
	}
	cfg.Port = port

	return nil
}

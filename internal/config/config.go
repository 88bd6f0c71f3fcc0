// Package config defines the top-level configuration for the team-name
// reconciliation engine and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"teammatch/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TEAMMATCH_* environment
// variables.
type Config struct {
	Matching MatchingConfig `toml:"matching"`
	Pairs    []PairConfig   `toml:"pairs"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Daemon   DaemonConfig   `toml:"daemon"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// MatchingConfig holds engine-wide matching parameters. Per-pair thresholds
// take precedence over DefaultThreshold.
type MatchingConfig struct {
	DefaultThreshold float64 `toml:"default_threshold"`
	SuggestionFloor  float64 `toml:"suggestion_floor"`
}

// PairConfig describes one (canonical, secondary) provider pairing: the two
// name-list files it reads, the correspondence table it owns, and its
// matching knobs.
type PairConfig struct {
	Sport             string  `toml:"sport"`
	CanonicalProvider string  `toml:"canonical_provider"`
	SecondaryProvider string  `toml:"secondary_provider"`
	CanonicalList     string  `toml:"canonical_list"`
	SecondaryList     string  `toml:"secondary_list"`
	TablePath         string  `toml:"table_path"`
	Threshold         float64 `toml:"threshold"`
	StripPrefixes     bool    `toml:"strip_prefixes"`
	Enabled           bool    `toml:"enabled"`
}

// Pair returns the domain identity of the pairing.
func (p PairConfig) Pair() domain.Pair {
	return domain.Pair{
		Sport:     p.Sport,
		Canonical: p.CanonicalProvider,
		Secondary: p.SecondaryProvider,
	}
}

// PostgresConfig holds connection parameters for the optional mapping
// mirror and run-history store.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds connection parameters for the optional run lock and
// mapping cache.
type RedisConfig struct {
	Enabled         bool   `toml:"enabled"`
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"pool_size"`
	MaxRetries      int    `toml:"max_retries"`
	TLSEnabled      bool   `toml:"tls_enabled"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
	LockTTLSeconds  int    `toml:"lock_ttl_seconds"`
}

// S3Config holds parameters for the optional table snapshot archive.
// MaxSnapshots caps how many snapshots are retained per pair; zero or a
// negative value disables pruning.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	ArchivePrefix  string `toml:"archive_prefix"`
	MaxSnapshots   int    `toml:"max_snapshots"`
}

// DaemonConfig controls daemon mode: each cycle reconciles every enabled
// pair, then sleeps a uniformly random interval between Min and Max so the
// upstream scrapers are not hit on a fixed cadence.
type DaemonConfig struct {
	MinInterval duration `toml:"min_interval"`
	MaxInterval duration `toml:"max_interval"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Matching: MatchingConfig{
			DefaultThreshold: 75,
			SuggestionFloor:  65,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "teammatch",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:         false,
			Addr:            "localhost:6379",
			DB:              0,
			PoolSize:        20,
			MaxRetries:      3,
			TLSEnabled:      false,
			CacheTTLMinutes: 30,
			LockTTLSeconds:  120,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "teammatch-data",
			UseSSL:         false,
			ForcePathStyle: true,
			ArchivePrefix:  "archive",
			MaxSnapshots:   30,
		},
		Daemon: DaemonConfig{
			MinInterval: duration{3 * time.Minute},
			MaxInterval: duration{5 * time.Minute},
		},
		Mode:     "run",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"run":    true,
	"daemon": true,
	"check":  true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: run, daemon, check)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Matching
	if c.Matching.DefaultThreshold <= 0 || c.Matching.DefaultThreshold > 100 {
		errs = append(errs, fmt.Sprintf("matching: default_threshold must be in (0, 100], got %g", c.Matching.DefaultThreshold))
	}
	if c.Matching.SuggestionFloor < 0 || c.Matching.SuggestionFloor > 100 {
		errs = append(errs, fmt.Sprintf("matching: suggestion_floor must be in [0, 100], got %g", c.Matching.SuggestionFloor))
	}

	// Pairs
	if len(c.Pairs) == 0 {
		errs = append(errs, "pairs: at least one [[pairs]] entry is required")
	}
	enabled := 0
	seenKeys := make(map[string]bool, len(c.Pairs))
	seenTables := make(map[string]string, len(c.Pairs))
	for i, p := range c.Pairs {
		label := fmt.Sprintf("pairs[%d]", i)
		if p.Sport == "" {
			errs = append(errs, label+": sport must not be empty")
		}
		if p.CanonicalProvider == "" {
			errs = append(errs, label+": canonical_provider must not be empty")
		}
		if p.SecondaryProvider == "" {
			errs = append(errs, label+": secondary_provider must not be empty")
		}
		if p.CanonicalProvider != "" && p.CanonicalProvider == p.SecondaryProvider {
			errs = append(errs, label+": canonical_provider and secondary_provider must differ")
		}
		if p.CanonicalList == "" {
			errs = append(errs, label+": canonical_list must not be empty")
		}
		if p.SecondaryList == "" {
			errs = append(errs, label+": secondary_list must not be empty")
		}
		if p.TablePath == "" {
			errs = append(errs, label+": table_path must not be empty")
		}
		if p.Threshold < 0 || p.Threshold > 100 {
			errs = append(errs, fmt.Sprintf("%s: threshold must be in [0, 100], got %g", label, p.Threshold))
		}
		key := p.Pair().Key()
		if seenKeys[key] {
			errs = append(errs, fmt.Sprintf("%s: duplicate pair %s", label, key))
		}
		seenKeys[key] = true
		if p.TablePath != "" {
			if other, ok := seenTables[p.TablePath]; ok {
				errs = append(errs, fmt.Sprintf("%s: table_path %q already used by %s", label, p.TablePath, other))
			}
			seenTables[p.TablePath] = key
		}
		if p.Enabled {
			enabled++
		}
	}
	if len(c.Pairs) > 0 && enabled == 0 {
		errs = append(errs, "pairs: no pair has enabled = true, nothing to reconcile")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.CacheTTLMinutes < 1 {
			errs = append(errs, "redis: cache_ttl_minutes must be >= 1")
		}
		if c.Redis.LockTTLSeconds < 1 {
			errs = append(errs, "redis: lock_ttl_seconds must be >= 1")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Daemon
	if c.Daemon.MinInterval.Duration <= 0 {
		errs = append(errs, "daemon: min_interval must be > 0")
	}
	if c.Daemon.MaxInterval.Duration < c.Daemon.MinInterval.Duration {
		errs = append(errs, "daemon: max_interval must be >= min_interval")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

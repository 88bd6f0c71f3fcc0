package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Pairs = []PairConfig{
		{
			Sport:             "soccer",
			CanonicalProvider: "oddswar",
			SecondaryProvider: "tumbet",
			CanonicalList:     "data/oddswar_names.txt",
			SecondaryList:     "data/tumbet_names.txt",
			TablePath:         "data/tumbet_matches.csv",
			Threshold:         70,
			Enabled:           true,
		},
	}
	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Mode = "serve"
	cfg.Matching.DefaultThreshold = 150
	cfg.Pairs[0].TablePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
	require.Contains(t, err.Error(), "default_threshold")
	require.Contains(t, err.Error(), "table_path")
}

func TestValidateRejectsDuplicatePairs(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	dup := cfg.Pairs[0]
	dup.TablePath = "data/other.csv"
	cfg.Pairs = append(cfg.Pairs, dup)

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate pair")
}

func TestValidateRejectsSharedTablePath(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	second := cfg.Pairs[0]
	second.SecondaryProvider = "stoiximan"
	cfg.Pairs = append(cfg.Pairs, second)

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "already used")
}

func TestValidateRejectsAllPairsDisabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Pairs[0].Enabled = false

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "nothing to reconcile")
}

func TestValidateChecksBackendsOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Postgres.Host = ""
	cfg.Redis.Addr = ""
	cfg.S3.Bucket = ""
	require.NoError(t, cfg.Validate())

	cfg.Postgres.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "postgres: host")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
mode = "daemon"

[matching]
default_threshold = 80.0

[daemon]
min_interval = "90s"
max_interval = "2m"

[[pairs]]
sport = "soccer"
canonical_provider = "oddswar"
secondary_provider = "stoiximan"
canonical_list = "data/oddswar_names.txt"
secondary_list = "data/stoiximan_names.txt"
table_path = "data/stoiximan_matches.csv"
threshold = 75.0
strip_prefixes = true
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "daemon", cfg.Mode)
	require.Equal(t, 80.0, cfg.Matching.DefaultThreshold)
	require.Equal(t, 90*time.Second, cfg.Daemon.MinInterval.Duration)
	require.Equal(t, 2*time.Minute, cfg.Daemon.MaxInterval.Duration)
	require.Len(t, cfg.Pairs, 1)
	require.True(t, cfg.Pairs[0].StripPrefixes)

	// Untouched sections keep their defaults.
	require.Equal(t, 65.0, cfg.Matching.SuggestionFloor)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.Postgres.Enabled)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := `
[[pairs]]
sport = "soccer"
canonical_provider = "oddswar"
secondary_provider = "tumbet"
canonical_list = "data/oddswar_names.txt"
secondary_list = "data/tumbet_names.txt"
table_path = "data/tumbet_matches.csv"
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	t.Setenv("TEAMMATCH_MODE", "check")
	t.Setenv("TEAMMATCH_REDIS_ENABLED", "true")
	t.Setenv("TEAMMATCH_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("TEAMMATCH_POSTGRES_PASSWORD", "hunter2")
	t.Setenv("TEAMMATCH_DAEMON_MIN_INTERVAL", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "check", cfg.Mode)
	require.True(t, cfg.Redis.Enabled)
	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	require.Equal(t, "hunter2", cfg.Postgres.Password)
	require.Equal(t, 45*time.Second, cfg.Daemon.MinInterval.Duration)
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Postgres.Password = "pg-secret"
	cfg.Postgres.DSN = "postgres://u:p@h/db"
	cfg.Redis.Password = "redis-secret"
	cfg.S3.AccessKey = "AKIA"
	cfg.S3.SecretKey = "s3-secret"

	red := RedactedConfig(&cfg)
	require.Equal(t, "***", red.Postgres.Password)
	require.Equal(t, "***", red.Postgres.DSN)
	require.Equal(t, "***", red.Redis.Password)
	require.Equal(t, "***", red.S3.AccessKey)
	require.Equal(t, "***", red.S3.SecretKey)

	// Originals are untouched.
	require.Equal(t, "pg-secret", cfg.Postgres.Password)

	// Empty secrets stay empty rather than pretending to exist.
	plain := validConfig()
	require.Empty(t, RedactedConfig(&plain).Redis.Password)
}

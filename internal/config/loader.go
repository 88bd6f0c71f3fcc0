package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TEAMMATCH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TEAMMATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file. Per-pair settings have no env form; they live in
// the TOML file only.
func applyEnvOverrides(cfg *Config) {
	// --- Matching ---
	setFloat64(&cfg.Matching.DefaultThreshold, "TEAMMATCH_MATCHING_DEFAULT_THRESHOLD")
	setFloat64(&cfg.Matching.SuggestionFloor, "TEAMMATCH_MATCHING_SUGGESTION_FLOOR")

	// --- Postgres ---
	setBool(&cfg.Postgres.Enabled, "TEAMMATCH_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "TEAMMATCH_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "TEAMMATCH_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "TEAMMATCH_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "TEAMMATCH_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "TEAMMATCH_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "TEAMMATCH_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "TEAMMATCH_POSTGRES_SSLMODE")
	setStr(&cfg.Postgres.SSLMode, "TEAMMATCH_POSTGRES_SSL_MODE") // compatibility alias
	setInt(&cfg.Postgres.PoolMaxConns, "TEAMMATCH_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "TEAMMATCH_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "TEAMMATCH_POSTGRES_RUN_MIGRATIONS")

	// --- Redis ---
	setBool(&cfg.Redis.Enabled, "TEAMMATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "TEAMMATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "TEAMMATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "TEAMMATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "TEAMMATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "TEAMMATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "TEAMMATCH_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLMinutes, "TEAMMATCH_REDIS_CACHE_TTL_MINUTES")
	setInt(&cfg.Redis.LockTTLSeconds, "TEAMMATCH_REDIS_LOCK_TTL_SECONDS")

	// --- S3 ---
	setBool(&cfg.S3.Enabled, "TEAMMATCH_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "TEAMMATCH_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TEAMMATCH_S3_REGION")
	setStr(&cfg.S3.Bucket, "TEAMMATCH_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TEAMMATCH_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TEAMMATCH_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TEAMMATCH_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TEAMMATCH_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.ArchivePrefix, "TEAMMATCH_S3_ARCHIVE_PREFIX")
	setInt(&cfg.S3.MaxSnapshots, "TEAMMATCH_S3_MAX_SNAPSHOTS")

	// --- Daemon ---
	setDuration(&cfg.Daemon.MinInterval, "TEAMMATCH_DAEMON_MIN_INTERVAL")
	setDuration(&cfg.Daemon.MaxInterval, "TEAMMATCH_DAEMON_MAX_INTERVAL")

	// --- Top-level ---
	setStr(&cfg.Mode, "TEAMMATCH_MODE")
	setStr(&cfg.LogLevel, "TEAMMATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

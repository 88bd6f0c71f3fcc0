package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	s3blob "teammatch/internal/blob/s3"
	"teammatch/internal/cache/redis"
	"teammatch/internal/config"
	"teammatch/internal/domain"
	"teammatch/internal/namelist"
	"teammatch/internal/reconcile"
	"teammatch/internal/service"
	"teammatch/internal/store/csvtable"
	"teammatch/internal/store/postgres"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Pairs holds one spec per enabled provider pair, in config order.
	Pairs []service.PairSpec

	// Names loads canonical and secondary name lists from disk.
	Names domain.NameSource

	// Optional infrastructure; nil when the backend is disabled in config
	// or the mode does not write tables.
	Mirror   domain.MappingMirror
	Runs     domain.RunRecorder
	Cache    domain.MappingCache
	Locks    domain.LockManager
	Archiver domain.Archiver
}

// needsWriteInfra returns true for modes that rewrite tables and fan results
// out to the mirror, cache, and archive. Check mode is read-only and never
// touches the backends.
func needsWriteInfra(mode string) bool {
	switch mode {
	case "run", "daemon":
		return true
	default:
		return false
	}
}

// headerCaser title-cases provider names for the CSV header row, matching
// the upstream consumers that read columns by name.
var headerCaser = cases.Title(language.English)

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Names: namelist.NewLoader(),
	}

	// --- PostgreSQL mapping mirror and run history ---
	if cfg.Postgres.Enabled && needsWriteInfra(cfg.Mode) {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.Mirror = postgres.NewMappingStore(pool)
		deps.Runs = postgres.NewRunStore(pool)
	}

	// --- Redis mapping cache and run locks ---
	if cfg.Redis.Enabled && needsWriteInfra(cfg.Mode) {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		cacheTTL := time.Duration(cfg.Redis.CacheTTLMinutes) * time.Minute
		deps.Cache = redis.NewMappingCache(redisClient, cacheTTL)
		deps.Locks = redis.NewLockManager(redisClient)
	}

	// --- S3 snapshot archive ---
	if cfg.S3.Enabled && needsWriteInfra(cfg.Mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(
			s3blob.NewWriter(s3Client),
			s3blob.NewReader(s3Client),
			cfg.S3.ArchivePrefix,
			cfg.S3.MaxSnapshots,
		)
	}

	// --- Per-pair specs ---
	for _, p := range cfg.Pairs {
		if !p.Enabled {
			continue
		}

		threshold := p.Threshold
		if threshold == 0 {
			threshold = cfg.Matching.DefaultThreshold
		}

		norm := reconcile.NewNormalizer(p.StripPrefixes, reconcile.DefaultPrefixes, reconcile.DefaultAbbreviations)

		deps.Pairs = append(deps.Pairs, service.PairSpec{
			Pair:          p.Pair(),
			CanonicalList: p.CanonicalList,
			SecondaryList: p.SecondaryList,
			TablePath:     p.TablePath,
			Tables: csvtable.NewStore(
				headerCaser.String(p.CanonicalProvider),
				headerCaser.String(p.SecondaryProvider),
			),
			Reconciler: reconcile.NewReconciler(reconcile.NewMatcher(norm, threshold)),
			Suggester:  reconcile.NewSuggester(cfg.Matching.SuggestionFloor),
		})
	}

	slog.Default().Debug("wire: dependencies constructed",
		slog.Int("pairs", len(deps.Pairs)),
		slog.Bool("mirror", deps.Mirror != nil),
		slog.Bool("cache", deps.Cache != nil),
		slog.Bool("archiver", deps.Archiver != nil),
	)

	return deps, cleanup, nil
}

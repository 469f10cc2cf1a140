package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"fleet/internal/config"
	"fleet/internal/kv"
	internalRedis "fleet/internal/redis"
	"fleet/internal/repository"
	"fleet/internal/repository/kvstore"
	"fleet/internal/repository/postgres"
	"fleet/internal/seed"
)

// Stores holds the repositories selected by the configured backend.
type Stores struct {
	Trips     repository.TripRepository
	Reference repository.ReferenceRepository
}

// NewStores builds the trip and reference repositories for cfg.Store.Backend
// and seeds the reference catalog. db is only used by the postgres backend
// and redisClient by the redis backend; either may be nil otherwise.
func NewStores(ctx context.Context, cfg *config.Config, db *sql.DB, redisClient *redis.Client) (*Stores, error) {
	catalog, err := seed.Load(cfg.Reference.SeedPath)
	if err != nil {
		return nil, err
	}

	var stores *Stores
	switch cfg.Store.Backend {
	case config.BackendMemory:
		stores, err = newKVStores(ctx, kv.NewMemory(), nil, catalog)

	case config.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("store backend %q requires redis", cfg.Store.Backend)
		}
		stores, err = newKVStores(ctx,
			internalRedis.NewKVStore(redisClient, cfg.Redis.KeyPrefix),
			internalRedis.NewLockStore(redisClient, cfg.Redis.KeyPrefix),
			catalog,
		)

	case config.BackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("store backend %q requires a database", cfg.Store.Backend)
		}
		stores, err = newPostgresStores(ctx, db, catalog)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	// Catalog reads from PostgreSQL go through Redis when it is available.
	// Entries cached by a previous run may predate the seed just applied.
	if cfg.Store.Backend == config.BackendPostgres && redisClient != nil {
		cache := internalRedis.NewReferenceCache(redisClient, stores.Reference)
		if err := cache.Invalidate(ctx); err != nil {
			log.Printf("[CACHE] invalidate reference cache: %v", err)
		}
		stores.Reference = cache
	}

	return stores, nil
}

func newKVStores(ctx context.Context, store kv.Store, locker kv.Locker, catalog *seed.Catalog) (*Stores, error) {
	reference := kvstore.NewReferenceRepository(store)
	seeded, err := reference.SeedIfEmpty(ctx, catalog)
	if err != nil {
		return nil, fmt.Errorf("seed reference data: %w", err)
	}
	if seeded {
		log.Printf("Seeded reference catalog: %d drivers, %d vehicles, %d routes",
			len(catalog.Drivers), len(catalog.Vehicles), len(catalog.Routes))
	}

	return &Stores{
		Trips:     kvstore.NewTripRepository(store, locker),
		Reference: reference,
	}, nil
}

func newPostgresStores(ctx context.Context, db *sql.DB, catalog *seed.Catalog) (*Stores, error) {
	if err := postgres.InitSchema(ctx, db); err != nil {
		return nil, err
	}
	if err := postgres.SeedCatalog(ctx, db, catalog); err != nil {
		return nil, err
	}

	return &Stores{
		Trips:     postgres.NewTripRepository(db),
		Reference: postgres.NewReferenceRepository(db),
	}, nil
}

package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// ReferenceCacheTTL bounds how stale a cached catalog may be. Catalogs
// change rarely but driver/vehicle availability does change.
const ReferenceCacheTTL = 30 * time.Second

const (
	driversCacheKey  = "cache:drivers"
	vehiclesCacheKey = "cache:vehicles"
	routesCacheKey   = "cache:routes"
)

// ReferenceCache wraps a ReferenceRepository with a Redis read-through cache.
type ReferenceCache struct {
	client *redis.Client
	inner  repository.ReferenceRepository
	ttl    time.Duration
}

// NewReferenceCache creates a new ReferenceCache.
func NewReferenceCache(client *redis.Client, inner repository.ReferenceRepository) *ReferenceCache {
	return &ReferenceCache{client: client, inner: inner, ttl: ReferenceCacheTTL}
}

// ListDrivers retrieves drivers from cache, falling back to the inner repository.
func (c *ReferenceCache) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	var drivers []*domain.Driver
	if c.get(ctx, driversCacheKey, &drivers) {
		return drivers, nil
	}

	drivers, err := c.inner.ListDrivers(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, driversCacheKey, drivers)
	return drivers, nil
}

// ListVehicles retrieves vehicles from cache, falling back to the inner repository.
func (c *ReferenceCache) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	if c.get(ctx, vehiclesCacheKey, &vehicles) {
		return vehicles, nil
	}

	vehicles, err := c.inner.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, vehiclesCacheKey, vehicles)
	return vehicles, nil
}

// ListRoutes retrieves routes from cache, falling back to the inner repository.
func (c *ReferenceCache) ListRoutes(ctx context.Context) ([]*domain.Route, error) {
	var routes []*domain.Route
	if c.get(ctx, routesCacheKey, &routes) {
		return routes, nil
	}

	routes, err := c.inner.ListRoutes(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, routesCacheKey, routes)
	return routes, nil
}

// Invalidate drops every cached catalog.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, driversCacheKey, vehiclesCacheKey, routesCacheKey).Err()
}

// get reports a cache hit. Redis errors and undecodable entries count as misses.
func (c *ReferenceCache) get(ctx context.Context, key string, out any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE] get %s: %v", key, err)
		}
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *ReferenceCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[CACHE] set %s: %v", key, err)
	}
}

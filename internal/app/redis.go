package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"fleet/internal/config"
	"fleet/internal/metrics"
)

// NewRedisClient connects to Redis when it is enabled and returns nil otherwise.
// Every command is timed into the store metrics and, with New Relic enabled,
// recorded as a datastore segment.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	collection := cfg.KeyPrefix
	if collection == "" {
		collection = "fleet"
	}
	client.AddHook(&commandHook{traced: nrApp != nil, collection: collection})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// commandHook implements redis.Hook.
type commandHook struct {
	traced     bool
	collection string
}

func (h *commandHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *commandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		end := h.observe(ctx, cmd.Name())
		err := next(ctx, cmd)
		end(err)
		return err
	}
}

func (h *commandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		end := h.observe(ctx, "pipeline")
		err := next(ctx, cmds)
		end(err)
		return err
	}
}

func (h *commandHook) observe(ctx context.Context, op string) func(error) {
	start := time.Now()

	var segment *newrelic.DatastoreSegment
	if h.traced {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment = &newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    newrelic.DatastoreRedis,
				Operation:  op,
				Collection: h.collection,
			}
		}
	}

	return func(err error) {
		if segment != nil {
			segment.End()
		}
		result := "ok"
		if err != nil && !errors.Is(err, redis.Nil) {
			result = "error"
		}
		metrics.StoreDuration.WithLabelValues("redis", op, result).Observe(time.Since(start).Seconds())
	}
}

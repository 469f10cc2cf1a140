package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// TripEventsChannel is the pub/sub channel trip events are published on.
const TripEventsChannel = "trips:events"

// Publisher publishes JSON events over Redis Pub/Sub.
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher creates a Publisher for the trip events channel.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: TripEventsChannel}
}

// Publish encodes v as JSON and publishes it.
func (p *Publisher) Publish(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out to a Redis pub/sub channel and keeps a
// capped list of recent events for dashboards that connect late.
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
	limit   int64
}

// NewRedisPublisher builds a publisher; limit <= 0 disables the recent list.
func NewRedisPublisher(client redis.UniversalClient, channel string, limit int) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, limit: int64(limit)}
}

// RecentKey is the list holding the newest events, newest first.
func (p *RedisPublisher) RecentKey() string {
	return p.channel + ":recent"
}

// Handle is an EventHandler that publishes event as JSON.
func (p *RedisPublisher) Handle(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Publish(ctx, p.channel, body)
	if p.limit > 0 {
		pipe.LPush(ctx, p.RecentKey(), body)
		pipe.LTrim(ctx, p.RecentKey(), 0, p.limit-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event to redis: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest events.
func (p *RedisPublisher) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 {
		return []Event{}, nil
	}
	raw, err := p.client.LRange(ctx, p.RecentKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}
	out := make([]Event, 0, len(raw))
	for _, item := range raw {
		var event Event
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stream entry fields.
const (
	StreamFieldID   = "id"
	StreamFieldBody = "body"
)

// EventPublisher delivers a serialized simulation envelope to the event sink.
type EventPublisher interface {
	Publish(ctx context.Context, id string, payload []byte) error
}

// RedisStreamPublisher appends envelopes to a Redis stream, trimming it
// approximately to maxLen entries.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64, logger *zap.Logger) *RedisStreamPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, id string, payload []byte) error {
	entryID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]any{
			StreamFieldID:   id,
			StreamFieldBody: string(payload),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	p.logger.Debug("envelope published",
		zap.String("op", "RedisStreamPublisher.Publish"),
		zap.String("stream", p.stream),
		zap.String("entry", entryID),
		zap.String("simulation", id),
	)
	return nil
}

// NoopPublisher drops envelopes. It is used when no event hub is configured.
type NoopPublisher struct {
	logger *zap.Logger
}

func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopPublisher{logger: logger}
}

func (n *NoopPublisher) Publish(_ context.Context, id string, payload []byte) error {
	n.logger.Debug("event hub not configured, envelope dropped",
		zap.String("simulation", id),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

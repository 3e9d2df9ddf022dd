package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventHandler processes one envelope read from the stream. Returning an error
// leaves the entry pending in the consumer group.
type EventHandler func(ctx context.Context, id string, payload []byte) error

// ConsumerOptions tune a RedisStreamConsumer.
type ConsumerOptions struct {
	Consumer string
	Count    int64
	Block    time.Duration
}

// RedisStreamConsumer reads envelopes from a Redis stream through a consumer
// group, acknowledging each entry once its handler succeeds.
type RedisStreamConsumer struct {
	client *redis.Client
	stream string
	group  string
	opts   ConsumerOptions
	logger *zap.Logger
}

func NewRedisStreamConsumer(client *redis.Client, stream, group string, opts ConsumerOptions, logger *zap.Logger) *RedisStreamConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Consumer == "" {
		opts.Consumer = "consumer-1"
	}
	if opts.Count <= 0 {
		opts.Count = 10
	}
	if opts.Block <= 0 {
		opts.Block = 2 * time.Second
	}
	return &RedisStreamConsumer{client: client, stream: stream, group: group, opts: opts, logger: logger}
}

// EnsureGroup creates the consumer group, and the stream if needed, reading
// from the beginning of the stream.
func (c *RedisStreamConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", c.group, c.stream, err)
	}
	return nil
}

// Consume polls the stream until ctx is cancelled.
func (c *RedisStreamConsumer) Consume(ctx context.Context, handler EventHandler) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := c.Poll(ctx, handler); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Poll reads one batch of new entries, blocking up to the configured duration,
// and returns how many were acknowledged.
func (c *RedisStreamConsumer) Poll(ctx context.Context, handler EventHandler) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.opts.Consumer,
		Streams:  []string{c.stream, ">"},
		Count:    c.opts.Count,
		Block:    c.opts.Block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("xreadgroup %s: %w", c.stream, err)
	}

	acked := 0
	for _, s := range streams {
		for _, msg := range s.Messages {
			id, _ := msg.Values[StreamFieldID].(string)
			body, _ := msg.Values[StreamFieldBody].(string)

			if err := handler(ctx, id, []byte(body)); err != nil {
				c.logger.Warn("event handler failed, entry left pending",
					zap.String("op", "RedisStreamConsumer.Poll"),
					zap.String("entry", msg.ID),
					zap.Error(err),
				)
				continue
			}
			if err := c.client.XAck(ctx, c.stream, c.group, msg.ID).Err(); err != nil {
				return acked, fmt.Errorf("xack %s: %w", msg.ID, err)
			}
			acked++
		}
	}
	return acked, nil
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRedisStreamPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "simulacoes", 100, nil)

	if err := publisher.Publish(ctx, "sim-1", []byte(`{"codigoProduto":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := client.XRange(ctx, "simulacoes", "-", "+").Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Values[StreamFieldID] != "sim-1" || entries[0].Values[StreamFieldBody] != `{"codigoProduto":1}` {
		t.Errorf("unexpected entry values: %v", entries[0].Values)
	}
}

func TestRedisStreamConsumer_PollAcknowledges(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "simulacoes", 0, nil)
	consumer := NewRedisStreamConsumer(client, "simulacoes", "$Default", ConsumerOptions{Block: 100 * time.Millisecond}, nil)

	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("expected existing group to be accepted, got %v", err)
	}

	for _, id := range []string{"sim-1", "sim-2"} {
		if err := publisher.Publish(ctx, id, []byte(`{"idSimulacao":"`+id+`"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var seen []string
	acked, err := consumer.Poll(ctx, func(_ context.Context, id string, payload []byte) error {
		seen = append(seen, id)
		if len(payload) == 0 {
			t.Errorf("expected payload for %s", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked != 2 || len(seen) != 2 || seen[0] != "sim-1" || seen[1] != "sim-2" {
		t.Errorf("expected both entries in order, got acked=%d seen=%v", acked, seen)
	}

	pending, err := client.XPending(ctx, "simulacoes", "$Default").Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending.Count != 0 {
		t.Errorf("expected no pending entries, got %d", pending.Count)
	}
}

func TestRedisStreamConsumer_FailedHandlerLeavesPending(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "simulacoes", 0, nil)
	consumer := NewRedisStreamConsumer(client, "simulacoes", "grupo", ConsumerOptions{Block: 100 * time.Millisecond}, nil)

	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := publisher.Publish(ctx, "sim-1", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acked, err := consumer.Poll(ctx, func(context.Context, string, []byte) error {
		return errors.New("handler failed")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked != 0 {
		t.Errorf("expected nothing acknowledged, got %d", acked)
	}

	pending, err := client.XPending(ctx, "simulacoes", "grupo").Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending.Count != 1 {
		t.Errorf("expected 1 pending entry, got %d", pending.Count)
	}
}

func TestRedisStreamConsumer_ConsumeUntilCancelled(t *testing.T) {
	_, client := newTestRedis(t)
	publisher := NewRedisStreamPublisher(client, "simulacoes", 0, nil)
	consumer := NewRedisStreamConsumer(client, "simulacoes", "grupo", ConsumerOptions{Block: 50 * time.Millisecond}, nil)

	if err := publisher.Publish(context.Background(), "sim-1", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var seen []string
	err := consumer.Consume(ctx, func(_ context.Context, id string, _ []byte) error {
		seen = append(seen, id)
		return nil
	})
	if err != nil {
		t.Fatalf("expected clean stop on cancellation, got %v", err)
	}
	if len(seen) != 1 || seen[0] != "sim-1" {
		t.Errorf("expected sim-1 to be consumed once, got %v", seen)
	}
}

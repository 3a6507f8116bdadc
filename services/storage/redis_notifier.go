package storage

import (
	"context"
	"fmt"

	"github.com/lac-hong-legacy/learning_hub/shared"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisNotifier relays storage events over redis pub/sub so that processes
// sharing a storage area observe each other's writes.
type RedisNotifier struct {
	client *redis.Client
	prefix string
}

func NewRedisNotifier(client *redis.Client, prefix string) *RedisNotifier {
	if prefix == "" {
		prefix = "storage"
	}
	return &RedisNotifier{client: client, prefix: prefix}
}

func (n *RedisNotifier) channel(key string) string {
	return fmt.Sprintf("%s:%s", n.prefix, key)
}

func (n *RedisNotifier) Notify(ctx context.Context, ev StorageEvent) error {
	payload, err := shared.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal storage event: %w", err)
	}
	return n.client.Publish(ctx, n.channel(ev.Key), payload).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, key string, fn func(StorageEvent)) (func(), error) {
	sub := n.client.Subscribe(ctx, n.channel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", n.channel(key), err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	ch := sub.Channel()

	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev StorageEvent
				if err := shared.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.WithFields(log.Fields{
						"channel": msg.Channel,
						"error":   err,
					}).Warn("Dropping malformed storage event")
					continue
				}
				fn(ev)
			}
		}
	}()

	return func() {
		cancel()
		_ = sub.Close()
	}, nil
}

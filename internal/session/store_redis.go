// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/pkg/uuid"
)

// RedisStore implements [Store] and [Watcher] using Redis.
//
// Several clients configured with the same profile share one session, the way
// browser tabs of one origin share local storage. Every write is announced on a
// per-profile channel so the other clients can re-derive their auth state.
type RedisStore struct {
	client   *redis.Client
	prefix   string
	channel  string
	instance string
	logger   *slog.Logger
}

// NewRedisStore creates a Redis-backed store for profile.
func NewRedisStore(client *redis.Client, profile string, logger *slog.Logger) *RedisStore {
	prefix := constants.RedisPrefixSession + profile + ":"
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		channel:  prefix + constants.RedisSuffixEvents,
		instance: uuid.New(),
		logger:   logger,
	}
}

/*
Get retrieves a persisted session value.

Returns:
  - string: The stored value
  - bool: Whether the key exists
  - error: Connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := store.client.Get(ctx, store.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, true, nil
}

/*
Set stores a session value and announces the change.

Session keys carry no TTL: the backend decides when a token stops working.
*/
func (store *RedisStore) Set(ctx context.Context, key, value string) error {
	pipe := store.client.TxPipeline()
	pipe.Set(ctx, store.prefix+key, value, 0)
	pipe.Publish(ctx, store.channel, store.instance)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// SetMany stores all values with one MSET and announces the change once.
func (store *RedisStore) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	pairs := make([]any, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, store.prefix+key, value)
	}

	pipe := store.client.TxPipeline()
	pipe.MSet(ctx, pairs...)
	pipe.Publish(ctx, store.channel, store.instance)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_session_set_many_failed: %w", err)
	}
	return nil
}

// Delete removes session values in one command and announces the change.
func (store *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = store.prefix + key
	}

	pipe := store.client.TxPipeline()
	pipe.Del(ctx, prefixed...)
	pipe.Publish(ctx, store.channel, store.instance)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// Watch subscribes to the profile channel and calls onChange for every write made
// by another instance. It blocks until ctx is done.
func (store *RedisStore) Watch(ctx context.Context, onChange func()) error {
	subscription := store.client.Subscribe(ctx, store.channel)
	defer subscription.Close()

	// Wait for the subscription to be confirmed before reporting readiness.
	if _, err := subscription.Receive(ctx); err != nil {
		return fmt.Errorf("redis_session_subscribe_failed: %w", err)
	}

	store.logger.Debug("session_watch_started", slog.String("channel", store.channel))

	messages := subscription.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case message, ok := <-messages:
			if !ok {
				return nil
			}
			if message.Payload == store.instance {
				continue
			}
			onChange()
		}
	}
}

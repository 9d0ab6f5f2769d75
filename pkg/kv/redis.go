package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/arkfood/ordering-backend/pkg/logger"
	redisclient "github.com/arkfood/ordering-backend/pkg/redis"
)

// RedisStore persists values in Redis and broadcasts change notices over
// pub/sub so other processes watching the same key can react.
type RedisStore struct {
	client *redisclient.Client
	logg   *logger.Logger
	origin string
}

func NewRedis(client *redisclient.Client, logg *logger.Logger, origin string) *RedisStore {
	return &RedisStore{client: client, logg: logg, origin: origin}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.GetBytes(ctx, key)
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0); err != nil {
		return err
	}
	s.publish(ctx, Change{Key: key, Origin: s.origin, At: time.Now().UTC()})
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key); err != nil {
		return err
	}
	s.publish(ctx, Change{Key: key, Origin: s.origin, At: time.Now().UTC(), Removed: true})
	return nil
}

// publish is best effort. A lost notice only delays the other side until
// its next resync, it never loses data.
func (s *RedisStore) publish(ctx context.Context, ch Change) {
	payload, err := json.Marshal(ch)
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.client.EventsChannel(ch.Key), payload); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"key": ch.Key, "error": err.Error()}), "publishing kv change notice failed")
	}
}

func (s *RedisStore) Watch(ctx context.Context, key string) (<-chan Change, error) {
	sub := s.client.Subscribe(ctx, s.client.EventsChannel(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ch Change
				if err := json.Unmarshal([]byte(msg.Payload), &ch); err != nil {
					if s.logg != nil {
						s.logg.Warn(s.logg.WithField(ctx, "key", key), "dropping malformed kv change notice")
					}
					continue
				}
				select {
				case out <- ch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

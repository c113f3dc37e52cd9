package session

import (
	"codeclash/internal/model"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client  *redis.Client
	profile string
	ttl     time.Duration
}

// NewRedisStore keeps the session under session:{profile}. A zero ttl never expires.
func NewRedisStore(client *redis.Client, profile string, ttl time.Duration) Store {
	return &redisStore{
		client:  client,
		profile: profile,
		ttl:     ttl,
	}
}

func (r *redisStore) key() string {
	return "session:" + r.profile
}

func (r *redisStore) Set(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(), data, r.ttl).Err()
}

func (r *redisStore) Get(ctx context.Context) (*model.Session, error) {
	data, err := r.client.Get(ctx, r.key()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s model.Session
	err = json.Unmarshal([]byte(data), &s)
	return &s, err
}

func (r *redisStore) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key()).Err()
}

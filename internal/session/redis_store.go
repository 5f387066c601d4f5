package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "cashclear:session:"

// RedisStore keeps sessions in redis with a TTL matching their expiry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore constructs a redis-backed store.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return ErrSessionNotFound
	}
	raw, errMarshal := json.Marshal(s)
	if errMarshal != nil {
		return errMarshal
	}
	return r.client.Set(ctx, r.key(s.ID), raw, ttl).Err()
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, errGet := r.client.Get(ctx, r.key(id)).Bytes()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, errGet
	}
	var s Session
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal != nil {
		return nil, errUnmarshal
	}
	if s.Expired(r.now().UTC()) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

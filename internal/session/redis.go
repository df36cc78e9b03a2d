package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "storyhub:session"

const redisTimeout = 3 * time.Second

// RedisStore keeps sessions in Redis with TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(addr, password, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) key(hash string) string {
	return s.prefix + ":" + hash
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Create writes a token hash -> userID mapping with TTL.
func (s *RedisStore) Create(ctx context.Context, userID int64) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	hash, _ := tokenKey(token)

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key(hash), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &Session{Token: token, UserID: userID, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

// Lookup resolves token to a user id.
func (s *RedisStore) Lookup(ctx context.Context, token string) (int64, bool, error) {
	hash, ok := tokenKey(token)
	if !ok {
		return 0, false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Not written by this store.
		return 0, false, nil
	}
	return userID, true, nil
}

// Delete removes a token mapping.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	hash, ok := tokenKey(token)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key(hash)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

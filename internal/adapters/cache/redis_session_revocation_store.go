package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "account:session:revoked:"

// RedisSessionRevocationStore stores revoked token ids with a TTL matching
// the token's remaining lifetime.
type RedisSessionRevocationStore struct {
	client redis.Cmdable
	nowFn  func() time.Time
}

func NewRedisSessionRevocationStore(client redis.Cmdable) *RedisSessionRevocationStore {
	return &RedisSessionRevocationStore{client: client, nowFn: time.Now}
}

func (s *RedisSessionRevocationStore) MarkRevoked(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.nowFn())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisSessionRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

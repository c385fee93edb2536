package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenRepository keeps revoked JWT ids in Redis until they would have
// expired anyway.
type TokenRepository struct {
	RDB *redis.Client
}

func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{RDB: rdb}
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.RDB.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

func (r *TokenRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.RDB.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

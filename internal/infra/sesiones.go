package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const prefijoRevocada = "sesion:revocada:"

// RevocacionesRedis keeps the ids (jti) of logged-out session tokens until
// they would have expired anyway.
type RevocacionesRedis struct {
	rdb *redis.Client
}

func NewRevocacionesRedis(rdb *redis.Client) *RevocacionesRedis {
	return &RevocacionesRedis{rdb: rdb}
}

func (r *RevocacionesRedis) Revocar(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, prefijoRevocada+jti, 1, ttl).Err()
}

func (r *RevocacionesRedis) Revocada(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, prefijoRevocada+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

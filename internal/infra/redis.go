package infra

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the server that holds revoked sessions and the e-mail
// job queue. Workers block on BRPOP for up to 5s, so reads get more headroom
// than the client default.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Annotate(err, "parse REDIS_URL")
	}
	opts.ReadTimeout = 10 * time.Second

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Annotatef(err, "ping redis %s", opts.Addr)
	}
	return rdb, nil
}

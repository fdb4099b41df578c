package realtime

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type Options struct {
	Backend       string // redis, nats or none
	RedisAddr     string
	RedisPassword string
	NATSURL       string
}

// New connects the configured backend.
func New(ctx context.Context, opts Options) (Publisher, error) {
	switch opts.Backend {
	case "", "none":
		return NopPublisher{}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, errors.Wrap(err, "ping redis")
		}
		return NewRedisPublisher(rdb), nil
	case "nats":
		return NewNATSPublisher(opts.NATSURL)
	default:
		return nil, fmt.Errorf("unknown realtime backend %q", opts.Backend)
	}
}

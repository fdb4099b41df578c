package realtime

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisPublisher publishes on Redis pub/sub channels named
// notifications:<key>.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func RedisChannel(key string) string {
	return "notifications:" + key
}

func (p *RedisPublisher) Publish(ctx context.Context, channelKey, event string, payload any) error {
	data, err := encode(event, payload)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, RedisChannel(channelKey), string(data)).Err(); err != nil {
		return errors.Wrapf(err, "redis publish %s", channelKey)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

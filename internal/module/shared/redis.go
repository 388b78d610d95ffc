package shared

import (
	"context"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type RedisClient struct {
	logger zerolog.Logger
	config *config.Conf
	Client *redis.Client
}

func NewRedisClient(config *config.Conf, logger zerolog.Logger) *RedisClient {
	return &RedisClient{
		logger: logger.With().Str("name", "redis").Logger(),
		Client: nil,
		config: config,
	}
}

// Connect dials redis.url. An empty url leaves Client nil, and the
// artifact store then reports itself as disabled.
func (r *RedisClient) Connect(ctx context.Context) error {
	url := r.config.String("redis.url")
	if url == "" {
		r.logger.Info().Msg("redis.url is empty, artifacts are disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}

	r.Client = redis.NewClient(opts)
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return err
	}

	return nil
}

func (r *RedisClient) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}

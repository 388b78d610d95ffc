package service

import (
	"context"
	"errors"
	"time"

	"github.com/DODOEX/huffcodec/internal/module/shared"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/DODOEX/huffcodec/utils/general/names"
	"github.com/DODOEX/huffcodec/utils/helpers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=artifact_store.go -destination=mock_artifact_store.go -package=service

var (
	ErrArtifactNotFound  = errors.New("artifact not found")
	ErrArtifactsDisabled = errors.New("artifact store is disabled")
)

// ArtifactStore keeps compressed containers addressable by their content key.
type ArtifactStore interface {
	Enabled() bool
	Put(ctx context.Context, key names.ArtifactKey, data []byte) error
	Get(ctx context.Context, key names.ArtifactKey) ([]byte, error)
}

type redisArtifactStore struct {
	logger zerolog.Logger
	redis  *shared.RedisClient
	prefix string
	ttl    time.Duration
}

func NewArtifactStore(config *config.Conf, logger zerolog.Logger, redis *shared.RedisClient) ArtifactStore {
	return &redisArtifactStore{
		logger: logger.With().Str("name", "artifact_store").Logger(),
		redis:  redis,
		prefix: config.String("artifact.prefix", "huffcodec:artifact:"),
		ttl:    config.Duration("artifact.ttl", 24*time.Hour),
	}
}

func (s *redisArtifactStore) Enabled() bool {
	return s.redis != nil && s.redis.Client != nil
}

func (s *redisArtifactStore) Put(ctx context.Context, key names.ArtifactKey, data []byte) error {
	if !s.Enabled() {
		return ErrArtifactsDisabled
	}
	return s.redis.Client.Set(ctx, helpers.Concat(s.prefix, key), data, s.ttl).Err()
}

func (s *redisArtifactStore) Get(ctx context.Context, key names.ArtifactKey) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrArtifactsDisabled
	}
	data, err := s.redis.Client.Get(ctx, helpers.Concat(s.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrArtifactNotFound
	}
	return data, err
}

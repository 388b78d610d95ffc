package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/DODOEX/huffcodec/internal/core/codec"
	"github.com/DODOEX/huffcodec/internal/core/huffman"
	"github.com/DODOEX/huffcodec/utils"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/DODOEX/huffcodec/utils/general/names"
	"github.com/DODOEX/huffcodec/utils/helpers"
	"github.com/allegro/bigcache"
	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// CompressResult is a finished container plus what it took to build it.
type CompressResult struct {
	Key    names.ArtifactKey `json:"key"`
	Data   []byte            `json:"data"`
	Stats  codec.Stats       `json:"stats"`
	Cached bool              `json:"-"`
	Stored bool              `json:"-"`
}

type CodecService interface {
	Compress(ctx context.Context, data []byte, alphabet huffman.Alphabet) (*CompressResult, error)
	Decompress(ctx context.Context, data []byte) ([]byte, codec.Stats, error)
	Artifact(ctx context.Context, key names.ArtifactKey) ([]byte, error)
}

type codecService struct {
	logger zerolog.Logger
	config *config.Conf
	store  ArtifactStore
	cache  *bigcache.BigCache
	// 超过该大小的结果不进内存缓存
	maxCacheEntry int
}

// ArtifactKey derives the content key of data compressed under alphabet,
// like huf#bytes:9e2a51f0c3d4b7a1.
func ArtifactKey(alphabet huffman.Alphabet, data []byte) names.ArtifactKey {
	sum := strconv.FormatUint(xxhash.Sum64(data), 16)
	for len(sum) < 16 {
		sum = "0" + sum
	}
	return helpers.Concat("huf#", alphabet.String(), ":", sum)
}

func NewCodecService(config *config.Conf, logger zerolog.Logger, store ArtifactStore) CodecService {
	_cacheConfig := bigcache.Config{
		// number of shards (must be a power of 2)
		Shards: 16,

		// time after which entry can be evicted
		LifeWindow: 10 * time.Minute,

		// Interval between removing expired entries (clean up).
		CleanWindow: 1 * time.Minute,

		// max entry size in bytes, used only in initial memory allocation
		MaxEntrySize: 4096,

		// cache will not allocate more memory than this limit, value in MB
		HardMaxCacheSize: 128,
	}
	config.Unmarshal("codec.bigcache", &_cacheConfig)
	cache, initErr := bigcache.NewBigCache(_cacheConfig)
	if initErr != nil {
		log.Fatal(initErr)
	}

	return &codecService{
		logger:        logger.With().Str("name", "codec_service").Logger(),
		config:        config,
		store:         store,
		cache:         cache,
		maxCacheEntry: config.Int("codec.cache-max-entry", 1<<20),
	}
}

func (s *codecService) Compress(ctx context.Context, data []byte, alphabet huffman.Alphabet) (*CompressResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		key    = ArtifactKey(alphabet, data)
		start  = time.Now()
		status = "success"
	)
	defer func() {
		utils.TotalOperations.WithLabelValues("compress", alphabet.String(), status).Inc()
		utils.OperationDurations.WithLabelValues("compress", alphabet.String()).Observe(time.Since(start).Seconds())
	}()

	if result, ok := s.fromCache(key); ok {
		utils.TotalCaches.WithLabelValues("compress", "hit").Inc()
		return result, nil
	}
	utils.TotalCaches.WithLabelValues("compress", "miss").Inc()

	out, stats, err := codec.CompressBytes(data, alphabet)
	if err != nil {
		status = "fail"
		return nil, err
	}

	utils.TotalBytes.WithLabelValues("compress", "in").Add(float64(stats.OriginalBytes))
	utils.TotalBytes.WithLabelValues("compress", "out").Add(float64(stats.CompressedBytes))
	utils.CompressionRatios.WithLabelValues(alphabet.String()).Observe(stats.Ratio())

	result := &CompressResult{Key: key, Data: out, Stats: stats}
	if s.store.Enabled() {
		if err := s.store.Put(ctx, key, out); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to store artifact")
		} else {
			result.Stored = true
		}
	}
	s.toCache(result)

	s.logger.Debug().
		Str("key", key).
		Uint64("symbols", stats.Symbols).
		Int("distinct", stats.Distinct).
		Uint64("bits", stats.EncodedBits).
		Msgf("compressed %d => %d bytes", stats.OriginalBytes, stats.CompressedBytes)

	return result, nil
}

func (s *codecService) Decompress(ctx context.Context, data []byte) ([]byte, codec.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, codec.Stats{}, err
	}

	var (
		start  = time.Now()
		status = "success"
		label  = "unknown"
	)
	defer func() {
		utils.TotalOperations.WithLabelValues("decompress", label, status).Inc()
		utils.OperationDurations.WithLabelValues("decompress", label).Observe(time.Since(start).Seconds())
	}()

	out, stats, err := codec.DecompressBytes(data)
	if err != nil {
		status = "fail"
		return nil, stats, err
	}
	label = stats.Alphabet.String()

	utils.TotalBytes.WithLabelValues("decompress", "in").Add(float64(stats.CompressedBytes))
	utils.TotalBytes.WithLabelValues("decompress", "out").Add(float64(stats.OriginalBytes))

	return out, stats, nil
}

func (s *codecService) Artifact(ctx context.Context, key names.ArtifactKey) ([]byte, error) {
	if result, ok := s.fromCache(key); ok {
		utils.TotalCaches.WithLabelValues("artifact", "hit").Inc()
		return result.Data, nil
	}
	utils.TotalCaches.WithLabelValues("artifact", "miss").Inc()

	data, err := s.store.Get(ctx, key)
	if err == ErrArtifactsDisabled {
		return nil, ErrArtifactNotFound
	}
	return data, err
}

func (s *codecService) fromCache(key names.ArtifactKey) (*CompressResult, bool) {
	data, err := s.cache.Get(key)
	if err != nil {
		return nil, false
	}
	result := &CompressResult{}
	if err := json.Unmarshal(data, result); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Drop broken cache entry")
		return nil, false
	}
	result.Cached = true
	return result, true
}

func (s *codecService) toCache(result *CompressResult) {
	if len(result.Data) > s.maxCacheEntry {
		return
	}
	data, err := json.Marshal(result)
	if err == nil {
		err = s.cache.Set(result.Key, data)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", result.Key).Msg("Failed to cache result")
	}
}

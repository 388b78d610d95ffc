package shared

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

type WatcherClient struct {
	logger      zerolog.Logger
	etcd        *clientv3.Client
	mu          sync.RWMutex
	pathHandles map[string][]WatchHandler
}

func NewWatcherClientInstance(
	logger zerolog.Logger,
	etcd *clientv3.Client,
) *WatcherClient {
	return &WatcherClient{
		etcd:        etcd,
		logger:      logger.With().Str("name", "watcher").Logger(),
		pathHandles: make(map[string][]WatchHandler),
	}
}

type WatchHandler func(path string, value []byte)

// OnChanaged registers fn for puts on path. Without an etcd client it is a no-op.
func (w *WatcherClient) OnChanaged(path string, fn WatchHandler) {
	if w.etcd == nil {
		w.logger.Debug().Str("path", path).Msg("etcd is not configured, skip watching")
		return
	}

	w.mu.Lock()
	first := len(w.pathHandles[path]) == 0
	w.pathHandles[path] = append(w.pathHandles[path], fn)
	w.mu.Unlock()

	if first {
		go w.watch(path)
	}
}

func (w *WatcherClient) handlers(path string) []WatchHandler {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]WatchHandler(nil), w.pathHandles[path]...)
}

func (w *WatcherClient) watch(path string) {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error().Interface("error", err).Msgf("Failed to watch etcd")
		}
	}()

	ch := w.etcd.Watch(context.Background(), path)

	for resp := range ch {
		handles := w.handlers(path)
		if len(handles) == 0 {
			continue
		}
		for _, ev := range resp.Events {
			if ev.Type == clientv3.EventTypePut && ev.Kv.Value != nil {
				for _, fn := range handles {
					fn(path, ev.Kv.Value)
				}
			}
		}
	}
}

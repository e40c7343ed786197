package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/calcio/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Keys are spread over a fixed set of shards by FNV-1a hash so concurrent
// streams touching different matches contend on different locks. Shard
// count is fixed at construction.

// Default sharded store configuration constants.
const (
	defaultShardCount            = 8
	defaultMetricsUpdateInterval = 5 * time.Second
)

type shard[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// ShardedStore implements Store over hash-partitioned maps.
type ShardedStore[T any] struct {
	shards                []*shard[T]
	shardCount            int
	metricsUpdateInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewShardedStore constructs a sharded store with configuration options and
// starts its background metrics updater.
func NewShardedStore[T any](ctx context.Context, opts ...Option[T]) *ShardedStore[T] {
	s := &ShardedStore[T]{
		shardCount:            defaultShardCount,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard[T], s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard[T]{items: make(map[string]T)}
	}

	s.stopChan = make(chan struct{})
	metrics.UpdateRegistryShardCount(s.shardCount)
	s.startMetricsUpdater(ctx)

	return s
}

// shardFor maps an id to its shard.
func (s *ShardedStore[T]) shardFor(id string) *shard[T] {
	h := fnv.New32a()
	h.Write([]byte(id)) //nolint:errcheck // fnv hash writes cannot fail
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Put implements Store.Put.
func (s *ShardedStore[T]) Put(ctx context.Context, id string, v T) error {
	start := time.Now()
	defer func() {
		metrics.RecordRegistryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, exists := sh.items[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	sh.items[id] = v
	return nil
}

// Get implements Store.Get.
func (s *ShardedStore[T]) Get(ctx context.Context, id string) (T, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRegistryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	v, ok := sh.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// Delete implements Store.Delete.
func (s *ShardedStore[T]) Delete(ctx context.Context, id string) (T, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRegistryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	v, ok := sh.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(sh.items, id)
	return v, nil
}

// Range implements Store.Range. Each shard is copied under its read lock
// before fn runs, so fn may call back into the store without deadlocking.
func (s *ShardedStore[T]) Range(ctx context.Context, fn func(id string, v T) bool) {
	type pair struct {
		id string
		v  T
	}
	for _, sh := range s.shards {
		sh.mu.RLock()
		pairs := make([]pair, 0, len(sh.items))
		for id, v := range sh.items {
			pairs = append(pairs, pair{id: id, v: v})
		}
		sh.mu.RUnlock()

		for _, p := range pairs {
			if !fn(p.id, p.v) {
				return
			}
		}
	}
}

// Count implements Store.Count.
func (s *ShardedStore[T]) Count(ctx context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.items)
		sh.mu.RUnlock()
	}
	return total
}

// startMetricsUpdater starts a background goroutine that publishes registry
// gauges at the configured interval.
func (s *ShardedStore[T]) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics publishes the total and per-shard session gauges.
func (s *ShardedStore[T]) updateMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.items)
		sh.mu.RUnlock()

		metrics.UpdateRegistrySessionsPerShard(fmt.Sprintf("shard_%d", i), n)
		total += n
	}
	metrics.UpdateRegistrySessionsTotal(total)
}

// Close gracefully shuts down the background metrics updater.
func (s *ShardedStore[T]) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

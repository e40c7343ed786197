package repository

import "time"

// Option applies a configuration option to the ShardedStore.
type Option[T any] func(*ShardedStore[T])

// WithShardCount sets the number of shards keys are spread over.
func WithShardCount[T any](n int) Option[T] {
	return func(s *ShardedStore[T]) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval[T any](interval time.Duration) Option[T] {
	return func(s *ShardedStore[T]) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

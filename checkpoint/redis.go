package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hupe1980/magma/graph"
)

// KeyPrefix namespaces checkpoint keys in Redis.
const KeyPrefix = "magma:checkpoint:"

// RedisClient is the minimal command surface the saver needs. *redis.Client
// and *redis.ClusterClient both satisfy it.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSaverOptions configures a RedisSaver.
type RedisSaverOptions struct {
	// TTL expires checkpoints after the given duration. Zero keeps them
	// forever.
	TTL time.Duration
}

// WithTTL sets the checkpoint expiry.
func WithTTL(d time.Duration) func(*RedisSaverOptions) {
	return func(o *RedisSaverOptions) { o.TTL = d }
}

// RedisSaver stores one JSON-encoded checkpoint per run under
// KeyPrefix<runID>.
type RedisSaver struct {
	client RedisClient
	ttl    time.Duration
}

// NewRedisSaver creates a saver on top of an existing Redis client.
func NewRedisSaver(client RedisClient, optFns ...func(*RedisSaverOptions)) *RedisSaver {
	opts := RedisSaverOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &RedisSaver{client: client, ttl: opts.TTL}
}

// Key returns the Redis key for a run's checkpoint.
func Key(runID string) string {
	return KeyPrefix + runID
}

// Save implements graph.Checkpointer.
func (s *RedisSaver) Save(ctx context.Context, cp graph.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := s.client.Set(ctx, Key(cp.RunID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store checkpoint: %w", err)
	}

	return nil
}

// Load implements graph.Checkpointer.
func (s *RedisSaver) Load(ctx context.Context, runID string) (graph.Checkpoint, bool, error) {
	data, err := s.client.Get(ctx, Key(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return graph.Checkpoint{}, false, nil
	}
	if err != nil {
		return graph.Checkpoint{}, false, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp graph.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return graph.Checkpoint{}, false, fmt.Errorf("decode checkpoint: %w", err)
	}

	return cp, true, nil
}

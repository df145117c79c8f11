package checkpoint

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements RedisClient over a plain map.
type fakeRedis struct {
	mu    sync.Mutex
	store map[string]string
	ttls  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{store: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := value.(type) {
	case string:
		f.store[key] = v
	case []byte:
		f.store[key] = string(v)
	}
	f.ttls[key] = expiration

	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(v, nil)
}

func TestRedisSaverRoundTrip(t *testing.T) {
	client := newFakeRedis()
	saver := NewRedisSaver(client)
	ctx := context.Background()

	want := sampleCheckpoint("run-9", 3)
	require.NoError(t, saver.Save(ctx, want))

	// Stored under the namespaced key as JSON.
	raw, ok := client.store["magma:checkpoint:run-9"]
	require.True(t, ok)
	assert.Contains(t, raw, `"run_id":"run-9"`)

	got, ok, err := saver.Load(ctx, "run-9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Step, got.Step)
	assert.Equal(t, want.Node, got.Node)
	assert.Equal(t, want.Next, got.Next)
	assert.Equal(t, "go concurrency", got.State["query"])
}

func TestRedisSaverMissingRun(t *testing.T) {
	saver := NewRedisSaver(newFakeRedis())

	_, ok, err := saver.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSaverTTL(t *testing.T) {
	client := newFakeRedis()
	saver := NewRedisSaver(client, WithTTL(10*time.Minute))

	require.NoError(t, saver.Save(context.Background(), sampleCheckpoint("run-ttl", 1)))
	assert.Equal(t, 10*time.Minute, client.ttls[Key("run-ttl")])
}

func TestRedisSaverCorruptValue(t *testing.T) {
	client := newFakeRedis()
	client.store[Key("run-bad")] = "{not json"

	saver := NewRedisSaver(client)

	_, _, err := saver.Load(context.Background(), "run-bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode checkpoint")
}

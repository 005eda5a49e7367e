package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for *redis.Client.
type fakeRedis struct {
	data map[string]string
	err  error
	gets int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Close() error { return nil }

type snapshot struct {
	Count int `json:"count"`
}

func TestRedis_SetGet(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	c := newRedis(fake, "")
	ctx := context.Background()

	var got snapshot
	found, err := c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "summary", snapshot{Count: 7}, time.Minute))
	assert.Contains(t, fake.data, "inventory:summary")

	found, err = c.Get(ctx, "summary", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, got.Count)
}

func TestRedis_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	c := newRedis(fake, "")
	ctx := context.Background()

	var dst snapshot
	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, "summary", &dst)
		require.Error(t, err)
	}
	assert.Equal(t, 3, fake.gets)

	_, err := c.Get(ctx, "summary", &dst)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, fake.gets, "open breaker must not reach redis")
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), "k", 1, time.Second))
	var v int
	found, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

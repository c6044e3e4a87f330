package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Ref  string
	Body string
}

func TestInMemory_SetGet(t *testing.T) {
	c := NewInMemory[payload]("stat", DefaultExpiration, DefaultCleanupInterval)
	want := payload{Ref: "abc", Body: "1\t2\tfile.go"}
	c.Set(context.Background(), "stat:abc", want, DefaultExpiration)

	got, ok := c.Get(context.Background(), "stat:abc")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestInMemory_Miss(t *testing.T) {
	c := NewInMemory[payload]("stat", DefaultExpiration, DefaultCleanupInterval)
	_, ok := c.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestInMemory_Flush(t *testing.T) {
	c := NewInMemory[string]("diff", DefaultExpiration, DefaultCleanupInterval)
	c.Set(context.Background(), "k", "v", DefaultExpiration)
	c.Flush(context.Background())

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestReadThrough_FetchesOnceForHistoricalKeys(t *testing.T) {
	calls := 0
	rt := NewReadThrough(
		NewInMemory[string]("diff", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, ref string) (string, error) {
			calls++
			return "diff of " + ref, nil
		},
	)

	for i := 0; i < 3; i++ {
		got, err := rt.Get(context.Background(), "diff:abc", "abc", time.Minute, false)
		require.NoError(t, err)
		assert.Equal(t, "diff of abc", got)
	}
	assert.Equal(t, 1, calls)
}

func TestReadThrough_SkipBypassesCache(t *testing.T) {
	calls := 0
	rt := NewReadThrough(
		NewInMemory[string]("stat", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, ref string) (string, error) {
			calls++
			return "fresh", nil
		},
	)

	for i := 0; i < 3; i++ {
		_, err := rt.Get(context.Background(), "stat:worktree", "worktree", time.Minute, true)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestReadThrough_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	rt := NewReadThrough(
		NewInMemory[string]("stat", DefaultExpiration, DefaultCleanupInterval),
		func(ctx context.Context, ref string) (string, error) {
			calls++
			if calls == 1 {
				return "", boom
			}
			return "ok", nil
		},
	)

	_, err := rt.Get(context.Background(), "k", "r", time.Minute, false)
	require.ErrorIs(t, err, boom)

	got, err := rt.Get(context.Background(), "k", "r", time.Minute, false)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	assert.Equal(t, Key("workout-plans"), NewKey("workout-plans"))
	assert.Equal(t, Key("workout-plans/user/u1"), NewKey("workout-plans", "user", "u1"))
}

func TestStoreFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("caches the loaded result", func(t *testing.T) {
		store := NewStore[string]()
		var calls int32
		loader := func(ctx context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			return []string{"a", "b"}, nil
		}

		data, err := store.Fetch(ctx, "k", loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, data)

		data, err = store.Fetch(ctx, "k", loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, data)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "fresh hit must not reload")
	})

	t.Run("deduplicates concurrent loads", func(t *testing.T) {
		store := NewStore[int]()
		var calls int32
		release := make(chan struct{})
		loader := func(ctx context.Context) ([]int, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return []int{42}, nil
		}

		const n = 8
		var wg sync.WaitGroup
		results := make([][]int, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				data, err := store.Fetch(ctx, "k", loader)
				assert.NoError(t, err)
				results[i] = data
			}(i)
		}

		// Let all goroutines reach the store before releasing the loader.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent fetches must share one load")
		for i := 0; i < n; i++ {
			assert.Equal(t, []int{42}, results[i])
		}
	})

	t.Run("does not cache failed loads", func(t *testing.T) {
		store := NewStore[string]()
		var calls int32
		boom := errors.New("boom")

		_, err := store.Fetch(ctx, "k", func(ctx context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			return nil, boom
		})
		require.ErrorIs(t, err, boom)

		data, err := store.Fetch(ctx, "k", func(ctx context.Context) ([]string, error) {
			atomic.AddInt32(&calls, 1)
			return []string{"ok"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, data)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "failed load must be retried")
	})

	t.Run("waiter honors context cancellation", func(t *testing.T) {
		store := NewStore[int]()
		started := make(chan struct{})
		release := make(chan struct{})
		go func() {
			store.Fetch(ctx, "k", func(ctx context.Context) ([]int, error) {
				close(started)
				<-release
				return []int{1}, nil
			})
		}()
		<-started

		waitCtx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Fetch(waitCtx, "k", func(ctx context.Context) ([]int, error) {
			return []int{2}, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		close(release)
	})

	t.Run("returned slice is shielded from caller mutation", func(t *testing.T) {
		store := NewStore[string]()
		store.SetData("k", func([]string) []string { return []string{"a", "b"} })

		data, err := store.Fetch(ctx, "k", nil)
		require.NoError(t, err)
		data[0] = "mutated"

		cached, ok := store.Peek("k")
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, cached)
	})
}

func TestStoreSetDataAndMutate(t *testing.T) {
	t.Run("SetData seeds an uncached key", func(t *testing.T) {
		store := NewStore[string]()
		store.SetData("k", func(current []string) []string {
			assert.Nil(t, current)
			return []string{"x"}
		})

		data, ok := store.Peek("k")
		require.True(t, ok)
		assert.Equal(t, []string{"x"}, data)
	})

	t.Run("Mutate skips an uncached key", func(t *testing.T) {
		store := NewStore[string]()
		store.Mutate("k", func(current []string) []string {
			return append(current, "x")
		})

		_, ok := store.Peek("k")
		assert.False(t, ok, "a never-loaded key must stay unloaded")
	})

	t.Run("Mutate rewrites a cached key", func(t *testing.T) {
		store := NewStore[string]()
		store.SetData("k", func([]string) []string { return []string{"a"} })
		store.Mutate("k", func(current []string) []string {
			return append(current, "b")
		})

		data, _ := store.Peek("k")
		assert.Equal(t, []string{"a", "b"}, data)
	})
}

func TestStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewStore[string]()
	var calls int32
	loader := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"v"}, nil
	}

	_, err := store.Fetch(ctx, "plans/user/u1", loader)
	require.NoError(t, err)
	_, err = store.Fetch(ctx, "plans/user/u2", loader)
	require.NoError(t, err)
	_, err = store.Fetch(ctx, "goals/user/u1", loader)
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))

	store.Invalidate("plans/")

	// Both plan keys reload, the goal key does not.
	_, _ = store.Fetch(ctx, "plans/user/u1", loader)
	_, _ = store.Fetch(ctx, "plans/user/u2", loader)
	_, _ = store.Fetch(ctx, "goals/user/u1", loader)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestStoreDrop(t *testing.T) {
	store := NewStore[string]()
	store.SetData("plans/user/u1", func([]string) []string { return []string{"a"} })
	store.SetData("goals/user/u1", func([]string) []string { return []string{"b"} })

	store.Drop("plans/")

	_, ok := store.Peek("plans/user/u1")
	assert.False(t, ok)
	_, ok = store.Peek("goals/user/u1")
	assert.True(t, ok)
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore[string]()

	ch, cancel := store.Subscribe("plans/")
	defer cancel()
	other, cancelOther := store.Subscribe("goals/")
	defer cancelOther()

	store.SetData("plans/user/u1", func([]string) []string { return []string{"a"} })

	select {
	case key := <-ch:
		assert.Equal(t, Key("plans/user/u1"), key)
	case <-time.After(time.Second):
		t.Fatal("expected a change notification")
	}

	select {
	case key := <-other:
		t.Fatalf("subscriber for goals/ received %q", key)
	default:
	}

	t.Run("cancel closes the channel", func(t *testing.T) {
		ch2, cancel2 := store.Subscribe("plans/")
		cancel2()
		_, open := <-ch2
		assert.False(t, open)
		// Cancelling twice is safe.
		cancel2()
	})
}

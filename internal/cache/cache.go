package cache

import (
	"context"
	"strings"
	"sync"
)

// Key identifies one cached query result, e.g. "workout-plans/user/<uid>".
// Invalidation matches keys by prefix so "workout-plans/" covers every
// per-user entry.
type Key string

// NewKey joins a collection name and qualifier segments into a Key.
func NewKey(collection string, qualifiers ...string) Key {
	parts := append([]string{collection}, qualifiers...)
	return Key(strings.Join(parts, "/"))
}

// Loader performs the remote read backing a cache entry.
type Loader[T any] func(ctx context.Context) ([]T, error)

// entry is one settled query result.
type entry[T any] struct {
	data  []T
	stale bool
}

// call is one in-flight load shared by concurrent Fetch calls for the
// same key.
type call[T any] struct {
	done chan struct{}
	data []T
	err  error
}

// subscriber receives change notifications for keys under its prefix.
type subscriber struct {
	prefix Key
	ch     chan Key
}

// Store is a keyed query cache for one entity type. Fetch de-duplicates
// concurrent loads per key, SetData replaces an entry synchronously, and
// Invalidate marks entries stale by key prefix. Subscribers are notified
// on every change so they can re-render or refetch.
//
// Failed loads are never cached; the next Fetch retries.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[Key]*entry[T]
	inflight map[Key]*call[T]
	subs     map[int]subscriber
	nextSub  int
}

// NewStore creates an empty query cache.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries:  make(map[Key]*entry[T]),
		inflight: make(map[Key]*call[T]),
		subs:     make(map[int]subscriber),
	}
}

// Fetch returns the cached value for key if present and fresh, otherwise
// runs loader and caches the settled result. Concurrent calls for the same
// key share a single in-flight load; later callers wait for it rather than
// issuing their own.
func (s *Store[T]) Fetch(ctx context.Context, key Key, loader Loader[T]) ([]T, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && !e.stale {
		data := cloneSlice(e.data)
		s.mu.Unlock()
		return data, nil
	}
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return cloneSlice(c.data), c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call[T]{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	data, err := loader(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	c.data, c.err = data, err
	if err == nil {
		s.entries[key] = &entry[T]{data: cloneSlice(data)}
		s.notifyLocked(key)
	}
	s.mu.Unlock()
	close(c.done)

	return data, err
}

// SetData synchronously replaces the cached value for key with the result
// of updater applied to the current value (nil if the key was not cached).
// The entry is marked fresh. Used for optimistic writes.
func (s *Store[T]) SetData(key Key, updater func(current []T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current []T
	if e, ok := s.entries[key]; ok {
		current = cloneSlice(e.data)
	}
	s.entries[key] = &entry[T]{data: updater(current)}
	s.notifyLocked(key)
}

// Mutate applies updater to the cached value only if the key is already
// cached. A key that was never loaded stays unloaded: seeding it with a
// single mutated document would make a later Fetch mistake a partial list
// for a complete one.
func (s *Store[T]) Mutate(key Key, updater func(current []T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return
	}
	s.entries[key] = &entry[T]{data: updater(cloneSlice(e.data))}
	s.notifyLocked(key)
}

// Peek returns the cached value and whether the key is cached, without
// triggering a load.
func (s *Store[T]) Peek(key Key) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return cloneSlice(e.data), true
}

// Invalidate marks every entry whose key starts with prefix as stale and
// notifies subscribers. The next Fetch for a stale key reloads.
func (s *Store[T]) Invalidate(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if strings.HasPrefix(string(key), string(prefix)) {
			e.stale = true
			s.notifyLocked(key)
		}
	}
}

// Drop removes an entry outright. Used on sign-out to clear a user's view.
func (s *Store[T]) Drop(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(string(key), string(prefix)) {
			delete(s.entries, key)
			s.notifyLocked(key)
		}
	}
}

// Subscribe returns a channel that receives the key of every change under
// prefix, and a cancel function. Notifications to a consumer that stopped
// draining are dropped rather than blocking the writer; a late result for
// an unsubscribed consumer goes nowhere.
func (s *Store[T]) Subscribe(prefix Key) (<-chan Key, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Key, 16)
	s.subs[id] = subscriber{prefix: prefix, ch: ch}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

// notifyLocked pushes key to every matching subscriber. Callers hold s.mu.
func (s *Store[T]) notifyLocked(key Key) {
	for _, sub := range s.subs {
		if strings.HasPrefix(string(key), string(sub.prefix)) {
			select {
			case sub.ch <- key:
			default:
			}
		}
	}
}

// cloneSlice shields cached data from caller mutation. Element values are
// copied shallowly; entities are treated as immutable once cached.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

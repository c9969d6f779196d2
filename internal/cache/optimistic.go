package cache

import (
	"strings"

	"github.com/google/uuid"
)

// tempIDPrefix marks locally-synthesized identifiers that have not been
// confirmed by the store yet.
const tempIDPrefix = "temp-"

// TempID returns a fresh temporary identifier for an optimistic entry.
func TempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id is a locally-synthesized identifier.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// Txn is a three-phase optimistic transaction over one cache key:
// Begin snapshots, Apply tentatively mutates, then exactly one of
// Commit or Rollback settles it. Settling twice is a no-op, so the
// optimistic entry can never be replaced and restored both.
type Txn[T any] struct {
	store    *Store[T]
	key      Key
	snapshot []T
	had      bool
	settled  bool
}

// Begin captures the current cached value for key and returns an open
// transaction. The snapshot is taken before any tentative mutation, so
// Rollback restores the exact pre-call state.
func (s *Store[T]) Begin(key Key) *Txn[T] {
	snapshot, had := s.Peek(key)
	return &Txn[T]{
		store:    s,
		key:      key,
		snapshot: snapshot,
		had:      had,
	}
}

// Apply tentatively mutates the cached value. Consumers of the key
// observe the change immediately, before the remote write settles.
//
// A key that was not cached at Begin is left alone: there is no list
// view to update, and seeding one with a single tentative entry would
// make a later Fetch mistake a partial list for a complete one. The
// write simply proceeds without optimistic visibility.
func (t *Txn[T]) Apply(mutate func(current []T) []T) {
	if t.settled || !t.had {
		return
	}
	t.store.SetData(t.key, mutate)
}

// Commit replaces the tentative value with the server-confirmed one and
// settles the transaction.
func (t *Txn[T]) Commit(confirm func(current []T) []T) {
	if t.settled {
		return
	}
	t.settled = true
	if !t.had {
		return
	}
	t.store.SetData(t.key, confirm)
}

// Rollback restores the snapshot captured at Begin and settles the
// transaction.
func (t *Txn[T]) Rollback() {
	if t.settled {
		return
	}
	t.settled = true
	if !t.had {
		return
	}
	snapshot := t.snapshot
	t.store.SetData(t.key, func([]T) []T { return snapshot })
}

// Package entity keeps the client-side copy of one remote collection and the
// bookkeeping of the requests that change it.
//
// Every operation runs pending -> fulfilled or rejected. The local list only
// changes once the server has answered, so a failed request never has
// anything to roll back.
package entity

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrNotToggleable = errors.New("entity: record has no active flag")

// Record is anything with a server-assigned id.
type Record interface {
	RecordID() string
}

type activeSetter interface {
	SetActive(bool)
}

type activeGetter interface {
	IsActive() bool
}

// Snapshot is a point-in-time copy of a store.
type Snapshot[T Record] struct {
	Items   []T
	Loading bool
	Err     error
}

type Store[T Record] struct {
	name string

	mu       sync.Mutex
	items    []T
	inflight int
	err      error
	fetchSeq uint64
	closed   bool
}

func New[T Record](name string) *Store[T] {
	return &Store[T]{name: name}
}

func (s *Store[T]) Name() string { return s.name }

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{Items: slices.Clone(s.items), Loading: s.inflight > 0, Err: s.err}
}

func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Get returns the local copy of the record with the given id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Recent returns the last n records, newest first.
func (s *Store[T]) Recent(n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := max(len(s.items)-n, 0)
	out := slices.Clone(s.items[start:])
	slices.Reverse(out)
	return out
}

// Close makes the store ignore every response that arrives afterwards.
func (s *Store[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Store[T]) index(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool { return item.RecordID() == id })
}

// begin marks a request pending and returns the fetch sequence it was issued at.
func (s *Store[T]) begin(fetch bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.err = nil
	if fetch {
		s.fetchSeq++
	}
	return s.fetchSeq
}

// settle records the outcome of a request. A stale or late response changes
// nothing; apply runs under the lock only for a current success.
func (s *Store[T]) settle(err error, stale func() bool, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight > 0 {
		s.inflight--
	}
	if s.closed || (stale != nil && stale()) {
		return
	}
	if err != nil {
		s.err = err
		return
	}
	if apply != nil {
		apply()
	}
}

// FetchAll replaces the list with the server collection. When several fetches
// overlap only the most recently issued one is applied.
func (s *Store[T]) FetchAll(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	seq := s.begin(true)
	items, err := fetch(ctx)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", s.name, err)
	}
	s.settle(err, func() bool { return seq != s.fetchSeq }, func() {
		s.items = slices.Clone(items)
	})
	return err
}

// Create appends the record the server created.
func (s *Store[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	s.begin(false)
	item, err := create(ctx)
	if err != nil {
		err = fmt.Errorf("create %s: %w", s.name, err)
	}
	s.settle(err, nil, func() {
		s.items = append(s.items, item)
	})
	return item, err
}

// Update replaces the local record with the server's version. A record that
// is not held locally is not inserted.
func (s *Store[T]) Update(ctx context.Context, update func(context.Context) (T, error)) (T, error) {
	s.begin(false)
	item, err := update(ctx)
	if err != nil {
		err = fmt.Errorf("update %s: %w", s.name, err)
	}
	s.settle(err, nil, func() {
		if i := s.index(item.RecordID()); i >= 0 {
			s.items[i] = item
		}
	})
	return item, err
}

// ToggleActive copies only the active flag of the server response onto the
// local record; the other local fields stay as they are.
func (s *Store[T]) ToggleActive(ctx context.Context, toggle func(context.Context) (T, error)) (T, error) {
	var zero T
	if _, ok := any(&zero).(activeSetter); !ok {
		return zero, ErrNotToggleable
	}
	if _, ok := any(zero).(activeGetter); !ok {
		return zero, ErrNotToggleable
	}
	s.begin(false)
	item, err := toggle(ctx)
	if err != nil {
		err = fmt.Errorf("toggle %s: %w", s.name, err)
	}
	s.settle(err, nil, func() {
		if i := s.index(item.RecordID()); i >= 0 {
			any(&s.items[i]).(activeSetter).SetActive(any(item).(activeGetter).IsActive())
		}
	})
	return item, err
}

// Delete removes the record with the given id once the server confirms.
// Deleting an id that is not held locally is a no-op.
func (s *Store[T]) Delete(ctx context.Context, id string, del func(context.Context) error) error {
	s.begin(false)
	err := del(ctx)
	if err != nil {
		err = fmt.Errorf("delete %s: %w", s.name, err)
	}
	s.settle(err, nil, func() {
		if i := s.index(id); i >= 0 {
			s.items = slices.Delete(s.items, i, i+1)
		}
	})
	return err
}

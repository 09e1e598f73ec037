package memory

import (
	"context"
	"sync"
	"time"

	"3tcapital/biohoneypot/internal/core/interaction"
)

// Store is an in-memory interaction.Store. With a positive capacity it keeps
// only the newest records, dropping the oldest on overflow.
type Store struct {
	mu       sync.RWMutex
	records  []interaction.Record
	head     int // index of the oldest record once the buffer has wrapped
	capacity int
	last     time.Time
	now      func() time.Time
}

// New creates a store. capacity <= 0 means unbounded.
func New(capacity int) *Store {
	if capacity < 0 {
		capacity = 0
	}
	return &Store{
		capacity: capacity,
		now:      time.Now,
	}
}

// Append stamps rec with the capture time in UTC and stores it. Timestamps
// never go backwards in insertion order, even if the wall clock does.
func (s *Store) Append(_ context.Context, rec interaction.Record) (interaction.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	if ts.Before(s.last) {
		ts = s.last
	}
	s.last = ts
	rec.Timestamp = ts

	if s.capacity == 0 || len(s.records) < s.capacity {
		s.records = append(s.records, rec)
		return rec, nil
	}

	s.records[s.head] = rec
	s.head = (s.head + 1) % s.capacity
	return rec, nil
}

// Recent returns at most limit of the newest records, oldest first.
func (s *Store) Recent(_ context.Context, limit int) ([]interaction.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.records)
	if limit < 0 || limit > n {
		limit = n
	}
	return s.copyRange(n-limit, n), nil
}

// Snapshot returns a copy of every record currently held, oldest first.
func (s *Store) Snapshot(_ context.Context) ([]interaction.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.copyRange(0, len(s.records)), nil
}

// Len reports the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Capacity reports the configured capacity, 0 when unbounded.
func (s *Store) Capacity() int {
	return s.capacity
}

// copyRange copies logical positions [from, to) in insertion order.
// Callers must hold the lock.
func (s *Store) copyRange(from, to int) []interaction.Record {
	out := make([]interaction.Record, 0, to-from)
	n := len(s.records)
	for i := from; i < to; i++ {
		out = append(out, s.records[(s.head+i)%n])
	}
	return out
}

var _ interaction.Store = (*Store)(nil)

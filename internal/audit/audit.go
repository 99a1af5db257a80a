// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package audit records which transactions had a diff computed for them.
package audit

import (
	"sync"

	"github.com/tfctl/snapdiff/internal/log"
)

// DefaultCapacity bounds a Set created with a non-positive capacity.
const DefaultCapacity = 1024

// Set is a bounded set of transaction ids. When full, the oldest id is
// evicted first. Re-adding a present id does not refresh its position.
type Set struct {
	mu       sync.Mutex
	capacity int
	members  map[string]struct{}
	ring     []string
	head     int // index of the oldest id once the ring is full
	evicted  uint64
}

// New returns an empty Set holding at most capacity ids.
func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		capacity: capacity,
		members:  make(map[string]struct{}, capacity),
		ring:     make([]string, 0, capacity),
	}
}

// Add inserts id and reports whether it was newly added.
func (s *Set) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; ok {
		return false
	}

	if len(s.ring) < s.capacity {
		s.ring = append(s.ring, id)
	} else {
		oldest := s.ring[s.head]
		delete(s.members, oldest)
		s.ring[s.head] = id
		s.head = (s.head + 1) % s.capacity
		s.evicted++
		log.Tracef("audit evicted: id=%s", oldest)
	}
	s.members[id] = struct{}{}
	return true
}

// Contains reports whether id is currently held.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[id]
	return ok
}

// Len returns the number of ids held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ring)
}

// Capacity returns the bound.
func (s *Set) Capacity() int { return s.capacity }

// Evicted returns how many ids were dropped to honour the bound.
func (s *Set) Evicted() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evicted
}

// IDs returns the held ids, oldest first.
func (s *Set) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.ring))
	ids = append(ids, s.ring[s.head:]...)
	ids = append(ids, s.ring[:s.head]...)
	return ids
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package stream provides a small observable value: it remembers the most
// recent publication and fans it out to subscribers.
package stream

import "sync"

// Stream is safe for concurrent use. Subscribers run synchronously on the
// publishing goroutine, in subscription order, so a single publisher is
// observed in publication order by everyone.
type Stream[T any] struct {
	mu     sync.RWMutex
	latest T
	has    bool
	seq    uint64
	next   int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Publish stores v as the latest value and notifies subscribers.
func (s *Stream[T]) Publish(v T) {
	s.mu.Lock()
	s.latest = v
	s.has = true
	s.seq++
	subs := make([]subscriber[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Latest returns the most recent value and whether anything was published.
func (s *Stream[T]) Latest() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.has
}

// Published returns how many values have been published.
func (s *Stream[T]) Published() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Subscribe registers fn for later publications and returns a function that
// removes it. Cancelling twice is harmless.
func (s *Stream[T]) Subscribe(fn func(T)) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.subs {
			if s.subs[i].id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

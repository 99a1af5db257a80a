// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"sync"

	"github.com/tfctl/snapdiff/internal/audit"
	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/snapshot"
	"github.com/tfctl/snapdiff/internal/stream"
)

// Transaction identifies the unit of mutation that triggered a diff.
type Transaction struct {
	ID       string
	ActionID string
}

// DiffSet is a published diff. The transaction identity is copied so a
// DiffSet never keeps a transaction alive.
type DiffSet struct {
	Changes       differ.Map
	TransactionID string
	ActionID      string
}

// LogLine renders the set the way the store logs it.
func (d DiffSet) LogLine() string {
	return differ.LogLine(d.TransactionID, d.ActionID, d.Changes)
}

// Store is safe for concurrent use.
type Store[M any] struct {
	mu sync.Mutex // serializes mutations

	modelMu sync.RWMutex
	model   M

	snapMu sync.Mutex // guards snapshot read-modify-write
	snap   snapshot.Snapshot

	flatten    snapshot.Flattener
	dispatcher *dispatch.Dispatcher
	audit      *audit.Set

	diffSets stream.Stream[DiffSet]
	diffJSON stream.Stream[[]byte]
}

// New returns a Store holding initial. Unless the mode is none, the initial
// model is flattened right away.
func New[M any](initial M, opts ...Option) *Store[M] {
	o := options{
		mode:    dispatch.Sync,
		flatten: snapshot.Flatten,
	}
	for _, opt := range opts {
		opt(&o)
	}
	log.Debugf("store opts: mode=%s, auditCapacity=%d", o.mode, o.auditCapacity)

	s := &Store[M]{
		model:      initial,
		flatten:    o.flatten,
		dispatcher: dispatch.New(o.mode),
		audit:      audit.New(o.auditCapacity),
	}

	if o.mode != dispatch.None {
		if snap, err := s.flatten(initial); err != nil {
			log.WithError(err).Warn("initial flatten failed")
		} else {
			s.snap = snap
		}
	}
	return s
}

// Model returns the current model.
func (s *Store[M]) Model() M {
	s.modelMu.RLock()
	defer s.modelMu.RUnlock()
	return s.model
}

// Mode returns the dispatch mode.
func (s *Store[M]) Mode() dispatch.Mode { return s.dispatcher.Mode() }

// SetMode changes the dispatch mode for later mutations. Work already queued
// under async still runs.
func (s *Store[M]) SetMode(m dispatch.Mode) { s.dispatcher.SetMode(m) }

// DiffSets is the stream of published diff sets.
func (s *Store[M]) DiffSets() *stream.Stream[DiffSet] { return &s.diffSets }

// DiffJSON is the stream of published JSON payloads.
func (s *Store[M]) DiffJSON() *stream.Stream[[]byte] { return &s.diffJSON }

// Audit returns the set of transaction ids that had a diff computed.
func (s *Store[M]) Audit() *audit.Set { return s.audit }

// Snapshot returns a copy of the held snapshot, nil if none was taken yet.
func (s *Store[M]) Snapshot() snapshot.Snapshot {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.snap.Clone()
}

// Dispatch applies reduce to the current model, stores the result and hands
// the old/new pair to Observe. A nil tx mutates without diffing.
//
// Under sync, subscribers run inside Dispatch; they may read Model but must
// not call Dispatch on the same store.
func (s *Store[M]) Dispatch(tx *Transaction, reduce func(M) M) M {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.Model()
	next := reduce(old)

	s.modelMu.Lock()
	s.model = next
	s.modelMu.Unlock()

	// Still under mu, so async jobs are queued in mutation order.
	s.Observe(tx, old, next)
	return next
}

// Observe is the entry point for external stores that apply mutations
// themselves. It is skipped when tx is nil or the mode is none.
func (s *Store[M]) Observe(tx *Transaction, oldModel, newModel M) {
	if tx == nil || s.Mode() == dispatch.None {
		return
	}
	t := *tx
	s.dispatcher.Run(func() {
		s.diff(t, oldModel, newModel)
	})
}

// Wait blocks until queued async diffs have been published.
func (s *Store[M]) Wait() { s.dispatcher.Wait() }

// Close drains queued diffs and stops the worker.
func (s *Store[M]) Close() { s.dispatcher.Close() }

func (s *Store[M]) diff(tx Transaction, oldModel, newModel M) {
	current, err := s.flatten(newModel)
	if err != nil {
		log.WithError(err).Warnf("flatten failed, diff skipped: tx=%s", tx.ID)
		return
	}

	s.snapMu.Lock()
	defer s.snapMu.Unlock()

	previous := s.snap
	if previous == nil {
		// Mode was none at construction; seed from the pre-mutation model.
		if previous, err = s.flatten(oldModel); err != nil {
			log.WithError(err).Warnf("seed flatten failed: tx=%s", tx.ID)
			previous = snapshot.Snapshot{}
		}
	}

	changes := differ.Compute(previous, current)
	s.publish(tx, changes)
	s.snap = current
	log.Info(differ.LogLine(tx.ID, tx.ActionID, changes))
	s.audit.Add(tx.ID)
}

func (s *Store[M]) publish(tx Transaction, changes differ.Map) {
	s.diffSets.Publish(DiffSet{
		Changes:       changes,
		TransactionID: tx.ID,
		ActionID:      tx.ActionID,
	})
	s.diffJSON.Publish(differ.EncodeJSON(changes))
}

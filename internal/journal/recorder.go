// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/store"
	"github.com/tfctl/snapdiff/internal/stream"
)

// Stats counts what a Recorder has written.
type Stats struct {
	Entries  uint64
	Bytes    uint64
	Failures uint64
}

// String renders stats for humans, e.g. "3 entries, 1.2 kB, 0 failures".
func (s Stats) String() string {
	return fmt.Sprintf("%s %s, %s, %s %s",
		humanize.Comma(int64(s.Entries)), plural(s.Entries, "entry", "entries"),
		humanize.Bytes(s.Bytes),
		humanize.Comma(int64(s.Failures)), plural(s.Failures, "failure", "failures"))
}

// Recorder numbers diff sets and writes them to its sinks. It is safe for
// concurrent use.
type Recorder struct {
	ctx   context.Context
	sinks []Sink

	mu    sync.Mutex
	seq   uint64
	stats Stats
}

// NewRecorder returns a Recorder writing to sinks. Nil sinks are ignored.
// Numbering continues after the highest sequence already in any Local sink,
// so repeated runs into one directory never reuse a number.
func NewRecorder(ctx context.Context, sinks ...Sink) *Recorder {
	r := &Recorder{ctx: ctx}
	for _, s := range sinks {
		if s == nil || isNilSink(s) {
			continue
		}
		r.sinks = append(r.sinks, s)
		if l, ok := s.(*Local); ok {
			r.seq = max(r.seq, l.LastSeq())
		}
	}
	if r.seq > 0 {
		log.Debugf("journal resumes: seq=%d", r.seq)
	}
	return r
}

// Sinks returns the number of sinks entries are written to.
func (r *Recorder) Sinks() int { return len(r.sinks) }

// Record journals ds and returns the entry written. Sink errors are logged
// and counted.
func (r *Recorder) Record(ds store.DiffSet) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	e := Entry{
		Seq:           r.seq,
		TransactionID: ds.TransactionID,
		ActionID:      ds.ActionID,
		Payload:       differ.EncodeJSON(ds.Changes),
	}

	r.stats.Entries++
	r.stats.Bytes += uint64(len(e.Payload))
	for _, s := range r.sinks {
		if err := s.Write(r.ctx, e); err != nil {
			r.stats.Failures++
			log.WithError(err).Warnf("journal write failed: seq=%d, tx=%s", e.Seq, e.TransactionID)
		}
	}
	return e
}

// Follow records every set published on diffs until the returned cancel is
// called.
func (r *Recorder) Follow(diffs *stream.Stream[store.DiffSet]) (cancel func()) {
	return diffs.Subscribe(func(ds store.DiffSet) {
		r.Record(ds)
	})
}

// Stats returns a copy of the counters.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func isNilSink(s Sink) bool {
	switch v := s.(type) {
	case *Local:
		return v == nil
	case *S3:
		return v == nil
	}
	return false
}

func plural(n uint64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/tfctl/snapdiff/internal/log"
)

// Dispatcher routes jobs according to its current mode.
type Dispatcher struct {
	mode atomic.Int32

	queueMu sync.Mutex
	queue   *Queue
}

// New returns a Dispatcher in the given mode. The async worker is started on
// first use.
func New(mode Mode) *Dispatcher {
	d := &Dispatcher{}
	d.mode.Store(int32(mode))
	return d
}

// Mode returns the current mode.
func (d *Dispatcher) Mode() Mode {
	return Mode(d.mode.Load())
}

// SetMode changes the mode for every later Run.
func (d *Dispatcher) SetMode(m Mode) {
	prev := Mode(d.mode.Swap(int32(m)))
	if prev != m {
		log.Debugf("dispatch mode: from=%s, to=%s", prev, m)
	}
}

// Run dispatches job and reports whether it was run or queued.
func (d *Dispatcher) Run(job func()) bool {
	switch d.Mode() {
	case Sync:
		// Work queued before a switch from async runs first.
		d.Wait()
		run(job)
		return true
	case Async:
		if err := d.asyncQueue().Submit(job); err != nil {
			log.WithError(err).Warn("async dispatch dropped")
			return false
		}
		return true
	default:
		return false
	}
}

// Wait blocks until async work submitted so far has completed. It returns
// immediately if nothing was ever queued.
func (d *Dispatcher) Wait() {
	if q := d.existingQueue(); q != nil {
		q.Wait()
	}
}

// Close drains and stops the async worker.
func (d *Dispatcher) Close() {
	if q := d.existingQueue(); q != nil {
		q.Close()
	}
}

func (d *Dispatcher) asyncQueue() *Queue {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if d.queue == nil {
		d.queue = NewQueue()
	}
	return d.queue
}

func (d *Dispatcher) existingQueue() *Queue {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return d.queue
}

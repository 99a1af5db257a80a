// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tfctl/snapdiff/internal/log"
)

// ErrClosed is returned when submitting to a closed queue.
var ErrClosed = errors.New("queue is closed")

// Queue is an unbounded FIFO serviced by exactly one worker goroutine.
type Queue struct {
	lock    sync.Mutex
	cond    sync.Cond
	jobs    []func()
	pending int // queued plus running
	closed  bool
	done    chan struct{}
}

// NewQueue starts the worker.
func NewQueue() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond.L = &q.lock
	go q.work()
	return q
}

// Submit appends job. It never blocks on the worker.
func (q *Queue) Submit(job func()) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.jobs = append(q.jobs, job)
	q.pending++
	q.cond.Broadcast()
	return nil
}

// Wait blocks until every job submitted so far has run.
func (q *Queue) Wait() {
	q.lock.Lock()
	for q.pending > 0 {
		q.cond.Wait()
	}
	q.lock.Unlock()
}

// Len returns the number of jobs queued or running.
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.pending
}

// Close stops accepting jobs, lets the worker drain what is queued and waits
// for it to exit. Close is idempotent.
func (q *Queue) Close() {
	q.lock.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.lock.Unlock()
	<-q.done
}

func (q *Queue) work() {
	defer close(q.done)
	for {
		q.lock.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 {
			q.lock.Unlock()
			return
		}
		batch := q.jobs
		q.jobs = nil
		q.lock.Unlock()

		for _, job := range batch {
			run(job)
			q.lock.Lock()
			q.pending--
			if q.pending == 0 {
				q.cond.Broadcast()
			}
			q.lock.Unlock()
		}
	}
}

// run executes job, converting a panic into a log line so one bad job cannot
// stop the worker.
func run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithError(fmt.Errorf("%v", r)).Error("dispatch job panicked")
		}
	}()
	job()
}

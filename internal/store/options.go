// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/tfctl/snapdiff/internal/dispatch"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

// options holds construction settings.
type options struct {
	mode          dispatch.Mode
	flatten       snapshot.Flattener
	auditCapacity int
}

// Option customizes a Store. The default is sync dispatch with the JSON
// flattener and the default audit capacity.
type Option func(*options)

// WithMode sets the initial dispatch mode.
func WithMode(m dispatch.Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithFlattener replaces the model flattener.
func WithFlattener(f snapshot.Flattener) Option {
	return func(o *options) {
		if f != nil {
			o.flatten = f
		}
	}
}

// WithAuditCapacity bounds the audit set.
func WithAuditCapacity(n int) Option {
	return func(o *options) { o.auditCapacity = n }
}

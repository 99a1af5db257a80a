// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package store holds a model and publishes what changed after every
// mutation.
//
// A Store keeps the flattened snapshot of the last diffed model. For each
// mutation carrying a transaction it flattens the new model, compares it
// with the snapshot, and publishes a DiffSet and its JSON encoding on two
// streams before replacing the snapshot and recording the transaction id.
// The dispatch mode decides whether that work is skipped, run inline or run
// on the store's worker goroutine.
//
// Diffing never fails a mutation. Flatten and encode errors are logged and
// the store moves on.
package store

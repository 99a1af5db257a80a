// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package dispatch decides whether and where diff work runs.
//
//   - none: jobs are dropped.
//   - sync: jobs run on the caller before Run returns.
//   - async: jobs are handed to a single worker goroutine that runs them in
//     submission order. Submission never blocks.
//
// The mode may change at any time. Changing it does not cancel jobs already
// queued under async.
package dispatch

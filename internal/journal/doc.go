// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package journal persists published diff sets.
//
// A Recorder subscribes to a store's DiffSets stream, numbers each set and
// hands it to one or more sinks. Two sinks are provided:
//
//   - Local writes one JSON file per entry beneath a base directory. The base
//     is SNAPDIFF_JOURNAL_DIR when set, otherwise os.UserCacheDir()/snapdiff/
//     journal. SNAPDIFF_JOURNAL=0 (or false) disables local journaling.
//   - S3 puts one object per entry beneath a bucket prefix. The AWS config is
//     loaded from the usual shell chain unless overridden with WithProfile or
//     WithRegion.
//
// Sink failures are logged and counted by the Recorder. They never reach the
// code that mutated the store.
package journal

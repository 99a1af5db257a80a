// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ computes the minimal leaf-level change set between two
// snapshots and renders it: as canonical JSON for machines, as a sorted log
// line for humans, and as a full document delta for the CLI.
package differ

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package command defines the snapdiff CLI. Each subcommand feeds documents
// or replay scripts through a store and renders the published diffs with the
// shared attrs, filter, sort and output flags.
package command

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output turns diff maps and snapshots into rows of path, kind (or
// type) and value, then filters, sorts and renders them as a table, JSON or
// YAML.
package output

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package attrs describes the columns of tabular output: which row field each
// column reads, its title, whether it is shown, and a small transform applied
// to its values.
package attrs

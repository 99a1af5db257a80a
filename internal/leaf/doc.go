// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package leaf implements the tagged value stored at each path of a snapshot.
// Every Value carries its canonical encoding: compact JSON with object keys
// sorted and numbers normalised, so that two values are equal exactly when
// their canonical bytes are identical, whatever Go types produced them.
package leaf

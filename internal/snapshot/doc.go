// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package snapshot flattens structured models into path -> leaf maps.
//
// Object members are joined with "." and array elements are addressed by
// their numeric index, so {"array":[{"label":"a"}]} flattens to the single
// path "array.0.label". Keys containing path metacharacters are
// backslash-escaped, which keeps every snapshot path a valid gjson path into
// the source document (see Drill).
//
// Null leaves are omitted. A field that becomes null therefore disappears
// from the snapshot and is reported as removed by the differ. Empty objects
// and arrays are kept as leaves so that emptying a container is observable.
package snapshot

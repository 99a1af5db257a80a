// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"github.com/tfctl/snapdiff/internal/attrs"
	"github.com/tfctl/snapdiff/internal/differ"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

// Row keys.
const (
	KeyPath  = "path"
	KeyKind  = "kind"
	KeyType  = "type"
	KeyValue = "value"
)

// DiffAttrs are the default columns for diff rows.
func DiffAttrs() attrs.AttrList { return attrs.Defaults(KeyPath, KeyKind, KeyValue) }

// SnapshotAttrs are the default columns for snapshot rows.
func SnapshotAttrs() attrs.AttrList { return attrs.Defaults(KeyPath, KeyType, KeyValue) }

// DiffRows turns a diff map into rows ordered by path. Removed paths have a
// nil value.
func DiffRows(m differ.Map) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(m))
	for _, p := range m.Paths() {
		c := m[p]
		row := map[string]interface{}{
			KeyPath: p,
			KeyKind: c.Kind.String(),
		}
		if c.Kind == differ.Removed {
			row[KeyValue] = nil
		} else {
			row[KeyValue] = c.Value.Interface()
		}
		rows = append(rows, row)
	}
	return rows
}

// SnapshotRows turns a snapshot into rows ordered by path.
func SnapshotRows(s snapshot.Snapshot) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(s))
	for _, p := range s.Paths() {
		v := s[p]
		rows = append(rows, map[string]interface{}{
			KeyPath:  p,
			KeyType:  v.Kind().String(),
			KeyValue: v.Interface(),
		})
	}
	return rows
}

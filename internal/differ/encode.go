// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tfctl/snapdiff/internal/log"
)

// MarshalJSON encodes m as an object keyed by path. Added and changed
// entries carry their canonical value, removed entries are null. Keys come
// out sorted, so the output is byte-for-byte reproducible.
func (m Map) MarshalJSON() ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(m))
	for path, c := range m {
		if c.Kind == Removed {
			obj[path] = nil
			continue
		}
		raw, err := c.Value.Canonical()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", path, err)
		}
		obj[path] = raw
	}
	return json.Marshal(obj)
}

// EncodeJSON is MarshalJSON for publication: an encoding failure degrades to
// an empty payload and is only logged.
func EncodeJSON(m Map) []byte {
	b, err := m.MarshalJSON()
	if err != nil {
		log.WithError(err).Warn("diff json encode failed")
		return []byte{}
	}
	return b
}

// Entry renders one change as "path: kind ⇒ value".
func Entry(path string, c Change) string {
	return fmt.Sprintf("%s: %s ⇒ %s", path, c.Kind, c.Value)
}

// LogLine renders "<txID> <actionID> {entries}" with entries sorted by path,
// so identical maps always produce identical lines.
func LogLine(txID, actionID string, m Map) string {
	entries := make([]string, 0, len(m))
	for _, path := range m.Paths() {
		entries = append(entries, Entry(path, m[path]))
	}
	return fmt.Sprintf("%s %s {%s}", txID, actionID, strings.Join(entries, ", "))
}

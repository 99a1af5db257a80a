// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tfctl/snapdiff/internal/leaf"
	"github.com/tfctl/snapdiff/internal/log"
)

// Snapshot maps a flattened path to the leaf found there.
type Snapshot map[string]leaf.Value

// Paths returns the snapshot paths in ascending order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy. Leaf values are immutable so nothing deeper
// needs copying.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Flattenable is implemented by models that supply their own snapshot.
type Flattenable interface {
	Flatten() Snapshot
}

// Flattener turns a model into a snapshot. Flatten is the default.
type Flattener func(model any) (Snapshot, error)

// Flatten produces the snapshot of model. Models implementing Flattenable are
// asked directly, []byte and json.RawMessage are read as JSON documents and
// anything else is encoded with encoding/json first. That encoder replaces
// invalid UTF-8 in Go strings with U+FFFD; models carrying arbitrary bytes
// should implement Flattenable or hold []byte fields, which encode as base64.
func Flatten(model any) (Snapshot, error) {
	switch m := model.(type) {
	case nil:
		return Snapshot{}, nil
	case Flattenable:
		return m.Flatten(), nil
	case Snapshot:
		return m.Clone(), nil
	case json.RawMessage:
		return FlattenJSON(m)
	case []byte:
		return FlattenJSON(m)
	}

	raw, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", model, err)
	}
	return FlattenJSON(raw)
}

// FlattenJSON flattens a JSON document.
func FlattenJSON(doc []byte) (Snapshot, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("failed to flatten: %w", leaf.ErrInvalidJSON)
	}
	out := Snapshot{}
	walk(out, "", gjson.ParseBytes(doc))
	log.Tracef("flattened: paths=%d", len(out))
	return out, nil
}

func walk(out Snapshot, prefix string, r gjson.Result) {
	switch {
	case r.Type == gjson.Null:
		return
	case r.IsObject():
		empty := true
		r.ForEach(func(k, v gjson.Result) bool {
			empty = false
			walk(out, JoinPath(prefix, EscapeKey(k.Str)), v)
			return true
		})
		if empty && prefix != "" {
			out[prefix] = leaf.FromResult(r)
		}
	case r.IsArray():
		i := 0
		r.ForEach(func(_, v gjson.Result) bool {
			walk(out, JoinPath(prefix, strconv.Itoa(i)), v)
			i++
			return true
		})
		if i == 0 && prefix != "" {
			out[prefix] = leaf.FromResult(r)
		}
	default:
		out[prefix] = leaf.FromResult(r)
	}
}

// JoinPath appends a segment to a path.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

// pathMeta holds the characters gjson treats specially inside a path.
const pathMeta = `.*?|#@\!=<>%[]{}(),"'`

// EscapeKey backslash-escapes path metacharacters in an object key.
func EscapeKey(key string) string {
	if !strings.ContainsAny(key, pathMeta) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(pathMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

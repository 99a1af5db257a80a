// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"sort"

	"github.com/tfctl/snapdiff/internal/leaf"
	"github.com/tfctl/snapdiff/internal/log"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

// Kind classifies a change at one path.
type Kind uint8

const (
	Added Kind = iota + 1
	Changed
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "added":
		return Added, nil
	case "changed":
		return Changed, nil
	case "removed":
		return Removed, nil
	}
	return 0, fmt.Errorf("unknown change kind %q", s)
}

// Change is one entry of a diff map. Value is the new leaf for Added and
// Changed and the old leaf for Removed.
type Change struct {
	Kind  Kind
	Value leaf.Value
}

// Map holds only the paths that differ between two snapshots.
type Map map[string]Change

// Paths returns the paths of m in ascending order.
func (m Map) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Count returns the number of entries of each kind.
func (m Map) Count() (added, changed, removed int) {
	for _, c := range m {
		switch c.Kind {
		case Added:
			added++
		case Changed:
			changed++
		case Removed:
			removed++
		}
	}
	return
}

// Compute compares previous against current in two linear passes. Neither
// argument is modified. Leaves that cannot be encoded compare unequal, so a
// path holding one is always reported as changed.
func Compute(previous, current snapshot.Snapshot) Map {
	diff := Map{}

	for path, value := range current {
		old, ok := previous[path]
		switch {
		case !ok:
			diff[path] = Change{Kind: Added, Value: value}
		case !old.Equal(value):
			diff[path] = Change{Kind: Changed, Value: value}
		}
	}

	for path, old := range previous {
		if _, ok := current[path]; !ok {
			diff[path] = Change{Kind: Removed, Value: old}
		}
	}

	log.Tracef("diff computed: previous=%d, current=%d, changes=%d", len(previous), len(current), len(diff))
	return diff
}

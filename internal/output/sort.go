// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"cmp"
	"slices"
	"strings"
)

// sortKey is one parsed term of a --sort value.
type sortKey struct {
	name          string
	descending    bool
	caseSensitive bool
}

func parseSortKeys(spec string) []sortKey {
	var keys []sortKey
	for _, term := range strings.Split(spec, ",") {
		term = strings.TrimSpace(term)
		var k sortKey
		term, k.descending = strings.CutPrefix(term, "-")
		k.name, k.caseSensitive = strings.CutPrefix(term, "!")
		if k.name != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// compare orders a and b on this key alone. Two numbers compare by value;
// anything else compares by its string form.
func (k sortKey) compare(a, b map[string]interface{}) int {
	av, bv := a[k.name], b[k.name]

	var c int
	an, aok := number(av)
	bn, bok := number(bv)
	if aok && bok {
		c = cmp.Compare(an, bn)
	} else {
		as, bs := InterfaceToString(av), InterfaceToString(bv)
		if !k.caseSensitive {
			as, bs = strings.ToLower(as), strings.ToLower(bs)
		}
		c = strings.Compare(as, bs)
	}

	if k.descending {
		return -c
	}
	return c
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// SortDataset orders rows by a comma separated list of keys. A leading -
// sorts descending; a leading ! compares case-sensitively. Equal rows keep
// their order.
func SortDataset(resultSet []map[string]interface{}, spec string) {
	keys := parseSortKeys(spec)
	if len(keys) == 0 {
		return
	}

	slices.SortStableFunc(resultSet, func(a, b map[string]interface{}) int {
		for _, k := range keys {
			if c := k.compare(a, b); c != 0 {
				return c
			}
		}
		return 0
	})
}

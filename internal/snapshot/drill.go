// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// bracketIndex matches the "key[3]" spelling of an array index.
var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// Drill navigates a JSON document using a snapshot path. The bracketed index
// form ("array[0].label") is accepted as an alias of "array.0.label".
func Drill(doc []byte, path string) gjson.Result {
	if path == "" {
		return gjson.ParseBytes(doc)
	}
	return gjson.GetBytes(doc, NormalizePath(path))
}

// NormalizePath rewrites bracketed indexes into the dotted snapshot form.
func NormalizePath(path string) string {
	path = bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(path, ".")
}

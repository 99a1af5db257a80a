// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/snapdiff/internal/log"
)

// ErrEmptyDocument is returned by RenderDelta when either side is empty.
var ErrEmptyDocument = errors.New("empty document")

// ErrNotObject is returned by RenderDelta when either side is a top-level
// array or scalar; the ascii rendering walks objects only.
var ErrNotObject = errors.New("ascii output needs JSON object documents")

// RenderDelta compares two JSON object documents and renders the whole left
// document annotated with +/- lines, which reads better than a path listing
// when reviewing large models. It reports whether the documents differ.
func RenderDelta(left, right []byte, coloring bool) (string, bool, error) {
	log.Debugf("len(docs): %d %d", len(left), len(right))

	if len(left) == 0 || len(right) == 0 {
		return "", false, ErrEmptyDocument
	}
	for _, doc := range [][]byte{left, right} {
		if gjson.ValidBytes(doc) && !gjson.ParseBytes(doc).IsObject() {
			return "", false, ErrNotObject
		}
	}

	differ := gojsondiff.New()

	delta, err := differ.Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare documents: %w", err)
	}

	if !delta.Modified() {
		return "", false, nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return "", true, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       coloring,
	}

	out, err := formatter.NewAsciiFormatter(jdoc, config).Format(delta)
	if err != nil {
		return "", true, err
	}
	return out, true, nil
}

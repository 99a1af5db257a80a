// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	out, _, err := run(t, "", "", "flatten", "-o", "json", "testdata/old.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"path":"count","type":"number","value":1},
		{"path":"label","type":"string","value":"a"},
		{"path":"tags.0","type":"string","value":"x"}
	]`, out)

	out, _, err = run(t, "", "", "flatten", "-o", "raw", "testdata/new.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":2,"tags.0":"x","tags.1":"y"}`, out)
}

func TestFlattenConfigSort(t *testing.T) {
	out, _, err := run(t, "testdata/config.yaml", "", "flatten", "-o", "json", "-a", "!type,!value", "testdata/old.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"path":"tags.0"},{"path":"label"},{"path":"count"}]`, out)

	out, _, err = run(t, "testdata/config.yaml", "", "flatten", "-o", "json", "-s", "path", "-a", "!type,!value", "testdata/old.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"path":"count"},{"path":"label"},{"path":"tags.0"}]`, out)
}

func TestFlattenPath(t *testing.T) {
	out, _, err := run(t, "", "", "flatten", "-o", "raw", "-p", "tags", "testdata/new.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags.0":"x","tags.1":"y"}`, out)

	out, _, err = run(t, "", "", "flatten", "-o", "raw", "-p", "tags[1]", "testdata/new.yaml")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags.1":"y"}`, out)

	_, _, err = run(t, "", "", "flatten", "-p", "nope", "testdata/new.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestFlattenStdin(t *testing.T) {
	out, _, err := run(t, "", `{"a":{"b":null,"c":[]}}`, "flatten", "-o", "raw")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.c":[]}`, out)

	_, _, err = run(t, "", "", "flatten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestFlattenAt(t *testing.T) {
	doc := []byte(`{"array":[{"label":"a"},{"label":"b"}]}`)

	snap, err := flattenAt(doc, "array[1]")
	require.NoError(t, err)
	assert.Equal(t, []string{"array.1.label"}, snap.Paths())

	snap, err = flattenAt(doc, "array.0.label")
	require.NoError(t, err)
	assert.Equal(t, []string{"array.0.label"}, snap.Paths())
	assert.Equal(t, `"a"`, snap["array.0.label"].String())
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package differ

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/snapdiff/internal/leaf"
	"github.com/tfctl/snapdiff/internal/snapshot"
)

func mustFlatten(t *testing.T, doc string) snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.FlattenJSON([]byte(doc))
	require.NoError(t, err)
	return snap
}

func TestComputeIdempotent(t *testing.T) {
	snap := mustFlatten(t, `{"count":0,"label":"Foo","array":[{"label":"a"}]}`)
	assert.Empty(t, Compute(snap, snap))
	assert.Empty(t, Compute(snap, snap.Clone()))
}

func TestComputeClassification(t *testing.T) {
	tests := []struct {
		name string
		prev string
		cur  string
		want map[string]string
	}{
		{
			name: "single leaf changed",
			prev: `{"count":0,"label":"Foo"}`,
			cur:  `{"count":5,"label":"Foo"}`,
			want: map[string]string{"count": "changed ⇒ 5"},
		},
		{
			name: "path added",
			prev: `{"count":0}`,
			cur:  `{"count":0,"label":"Foo"}`,
			want: map[string]string{"label": `added ⇒ "Foo"`},
		},
		{
			name: "path removed carries old value",
			prev: `{"count":0,"label":"Foo"}`,
			cur:  `{"count":0}`,
			want: map[string]string{"label": `removed ⇒ "Foo"`},
		},
		{
			name: "type change is changed",
			prev: `{"count":5}`,
			cur:  `{"count":"5"}`,
			want: map[string]string{"count": `changed ⇒ "5"`},
		},
		{
			name: "numerically equal is unchanged",
			prev: `{"count":5}`,
			cur:  `{"count":5.0}`,
			want: map[string]string{},
		},
		{
			name: "null classifies as removed",
			prev: `{"label":"Foo"}`,
			cur:  `{"label":null}`,
			want: map[string]string{"label": `removed ⇒ "Foo"`},
		},
		{
			name: "array grows and shrinks",
			prev: `{"array":[{"label":"a"},{"label":"b"}]}`,
			cur:  `{"array":[{"label":"z"}],"nested":{"label":"n"}}`,
			want: map[string]string{
				"array.0.label": `changed ⇒ "z"`,
				"array.1.label": `removed ⇒ "b"`,
				"nested.label":  `added ⇒ "n"`,
			},
		},
		{
			name: "emptying an array",
			prev: `{"tags":["a"]}`,
			cur:  `{"tags":[]}`,
			want: map[string]string{"tags": "added ⇒ []", "tags.0": `removed ⇒ "a"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := Compute(mustFlatten(t, tt.prev), mustFlatten(t, tt.cur))
			got := map[string]string{}
			for p, c := range diff {
				got[p] = c.Kind.String() + " ⇒ " + c.Value.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	prev := mustFlatten(t, `{"a":1,"b":2}`)
	cur := mustFlatten(t, `{"a":2,"c":3}`)
	prevPaths, curPaths := prev.Paths(), cur.Paths()

	diff := Compute(prev, cur)
	assert.Len(t, diff, 3)
	assert.Equal(t, prevPaths, prev.Paths())
	assert.Equal(t, curPaths, cur.Paths())
}

func TestComputeInvalidLeafIsChanged(t *testing.T) {
	bad := leaf.InvalidValue(errors.New("cannot encode"))
	prev := snapshot.Snapshot{"x": bad}
	cur := snapshot.Snapshot{"x": bad}

	diff := Compute(prev, cur)
	require.Contains(t, diff, "x")
	assert.Equal(t, Changed, diff["x"].Kind)
}

func TestEncodeJSON(t *testing.T) {
	m := Map{
		"a": {Kind: Changed, Value: leaf.NumberValue(5)},
		"b": {Kind: Removed, Value: leaf.StringValue("old")},
	}
	assert.Equal(t, `{"a":5,"b":null}`, string(EncodeJSON(m)))

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"a":5,"b":null}`, string(b))

	assert.Equal(t, `{}`, string(EncodeJSON(Map{})))

	m = Map{
		"z":     {Kind: Added, Value: leaf.FromJSON([]byte(`{"y":[1,2.0],"x":null}`))},
		"m.0":   {Kind: Removed},
		"a\\.b": {Kind: Changed, Value: leaf.StringValue("<v>")},
	}
	assert.Equal(t, `{"a\\.b":"\u003cv\u003e","m.0":null,"z":{"x":null,"y":[1,2]}}`, string(EncodeJSON(m)))
}

func TestEncodeJSONDegradesToEmpty(t *testing.T) {
	m := Map{
		"a": {Kind: Added, Value: leaf.InvalidValue(errors.New("nope"))},
	}
	out := EncodeJSON(m)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	// A removed entry never needs its value encoded.
	m = Map{"a": {Kind: Removed, Value: leaf.InvalidValue(errors.New("nope"))}}
	assert.Equal(t, `{"a":null}`, string(EncodeJSON(m)))
}

func TestLogLineDeterministic(t *testing.T) {
	one := Map{}
	one["zeta"] = Change{Kind: Added, Value: leaf.StringValue("z")}
	one["alpha"] = Change{Kind: Changed, Value: leaf.NumberValue(1)}
	one["mid"] = Change{Kind: Removed, Value: leaf.BoolValue(true)}

	two := Map{}
	two["mid"] = Change{Kind: Removed, Value: leaf.BoolValue(true)}
	two["alpha"] = Change{Kind: Changed, Value: leaf.NumberValue(1)}
	two["zeta"] = Change{Kind: Added, Value: leaf.StringValue("z")}

	want := `tx-1 increment {alpha: changed ⇒ 1, mid: removed ⇒ true, zeta: added ⇒ "z"}`
	assert.Equal(t, want, LogLine("tx-1", "increment", one))
	assert.Equal(t, LogLine("tx-1", "increment", one), LogLine("tx-1", "increment", two))
	assert.Equal(t, "tx-2 noop {}", LogLine("tx-2", "noop", Map{}))
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{Added, Changed, Removed} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("moved")
	assert.Error(t, err)
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestCount(t *testing.T) {
	m := Compute(mustFlatten(t, `{"a":1,"b":2}`), mustFlatten(t, `{"a":2,"c":3}`))
	added, changed, removed := m.Count()
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"a", "b", "c"}, m.Paths())
}

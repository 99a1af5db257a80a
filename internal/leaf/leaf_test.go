// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package leaf

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCanonicalForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
		want string
	}{
		{"null", `null`, Null, `null`},
		{"true", `true`, Bool, `true`},
		{"false", `false`, Bool, `false`},
		{"int", `5`, Number, `5`},
		{"float with zero fraction", `5.0`, Number, `5`},
		{"exponent", `1e2`, Number, `100`},
		{"fraction", `0.25`, Number, `0.25`},
		{"big int", `9007199254740993`, Number, `9007199254740993`},
		{"string", `"Foo"`, String, `"Foo"`},
		{"escaped string", `"\u0041b"`, String, `"Ab"`},
		{"array", `[1, 2.0, "x"]`, Array, `[1,2,"x"]`},
		{"object keys sorted", `{"b": 1, "a": {"d": null, "c": true}}`, Object, `{"a":{"c":true,"d":null},"b":1}`},
		{"empty object", `{}`, Object, `{}`},
		{"empty array", `[ ]`, Array, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := FromJSON([]byte(tt.raw))
			require.NoError(t, v.Err())
			assert.Equal(t, tt.kind, v.Kind())
			got, err := v.Canonical()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEqualAcrossGoTypes(t *testing.T) {
	assert.True(t, FromAny(5).Equal(FromAny(5.0)))
	assert.True(t, FromAny(int64(7)).Equal(FromJSON([]byte("7.0"))))
	assert.True(t, FromAny(map[string]any{"b": 1, "a": 2}).Equal(FromJSON([]byte(`{"a":2,"b":1}`))))
	assert.True(t, FromAny(nil).Equal(NullValue()))
	assert.True(t, BoolValue(true).Equal(FromAny(true)))
	assert.True(t, StringValue("x").Equal(FromResult(gjson.Parse(`"x"`))))

	assert.False(t, FromAny(5).Equal(FromAny("5")), "number and string differ")
	assert.False(t, FromAny([]int{1, 2}).Equal(FromAny([]int{2, 1})), "array order matters")
}

func TestInvalidValues(t *testing.T) {
	nan := FromAny(math.NaN())
	assert.Equal(t, Invalid, nan.Kind())
	assert.Error(t, nan.Err())
	assert.False(t, nan.Equal(nan), "invalid never equals itself")
	assert.False(t, nan.Equal(NumberValue(1)))
	assert.Contains(t, nan.String(), "<invalid:")
	assert.Nil(t, nan.Interface())

	_, err := json.Marshal(map[string]Value{"x": nan})
	assert.Error(t, err)

	var zero Value
	assert.Error(t, zero.Err())
	assert.False(t, zero.Equal(zero))

	bad := FromJSON([]byte(`{"a":`))
	assert.ErrorIs(t, bad.Err(), ErrInvalidJSON)
}

func TestInvalidUTF8IsNeverEqual(t *testing.T) {
	a := FromResult(gjson.Result{Type: gjson.String, Str: "\xff", Raw: "\"\xff\""})
	b := FromResult(gjson.Result{Type: gjson.String, Str: "\xfe", Raw: "\"\xfe\""})

	assert.Equal(t, Invalid, a.Kind())
	assert.ErrorIs(t, a.Err(), ErrInvalidUTF8)
	assert.False(t, a.Equal(b), "distinct invalid bytes must not collapse")
	assert.False(t, a.Equal(a))

	assert.ErrorIs(t, StringValue("x\xffy").Err(), ErrInvalidUTF8)
	assert.Equal(t, String, StringValue("ok ⇒ fine").Kind())
}

func TestInterfaceAndMarshal(t *testing.T) {
	v := FromAny(map[string]any{"count": 5, "tags": []string{"a"}})
	assert.Equal(t, map[string]any{"count": float64(5), "tags": []any{"a"}}, v.Interface())

	b, err := json.Marshal(map[string]Value{"v": v})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":{"count":5,"tags":["a"]}}`, string(b))
	assert.Equal(t, `{"count":5,"tags":["a"]}`, v.String())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "number", Number.String())
	assert.Equal(t, "object", Object.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

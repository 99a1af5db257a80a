// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package leaf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

var kindNames = [...]string{"invalid", "null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ErrInvalidJSON is returned by Canonical for values built from malformed
// documents.
var ErrInvalidJSON = errors.New("invalid JSON")

// ErrInvalidUTF8 marks strings whose bytes are not valid UTF-8. Encoding them
// would fold distinct byte strings onto U+FFFD.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Value is an immutable leaf. The zero Value is Invalid.
type Value struct {
	kind  Kind
	canon []byte
	err   error
}

// FromResult builds a Value from a parsed gjson result.
func FromResult(r gjson.Result) Value {
	if !r.Exists() {
		return Value{kind: Null, canon: []byte("null")}
	}
	var buf bytes.Buffer
	kind, err := canonicalize(&buf, r)
	if err != nil {
		return Value{err: err}
	}
	return Value{kind: kind, canon: buf.Bytes()}
}

// FromJSON builds a Value from a raw JSON document.
func FromJSON(raw []byte) Value {
	if !gjson.ValidBytes(raw) {
		return Value{err: fmt.Errorf("%w: %q", ErrInvalidJSON, truncate(raw))}
	}
	return FromResult(gjson.ParseBytes(raw))
}

// FromAny encodes an arbitrary Go value with encoding/json and canonicalizes
// the result. Values json cannot encode (channels, NaN, ...) yield an Invalid
// Value carrying the encoder error.
func FromAny(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return NullValue()
	case string:
		if !utf8.ValidString(t) {
			return Value{err: fmt.Errorf("%w: %q", ErrInvalidUTF8, truncate([]byte(t)))}
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{err: err}
	}
	return FromJSON(raw)
}

// NullValue returns the JSON null leaf.
func NullValue() Value { return Value{kind: Null, canon: []byte("null")} }

// BoolValue returns a boolean leaf.
func BoolValue(b bool) Value {
	return Value{kind: Bool, canon: []byte(strconv.FormatBool(b))}
}

// StringValue returns a string leaf.
func StringValue(s string) Value { return FromAny(s) }

// NumberValue returns a numeric leaf.
func NumberValue(f float64) Value { return FromAny(f) }

// InvalidValue returns a leaf that fails to encode with err.
func InvalidValue(err error) Value { return Value{err: err} }

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// Err returns the encoding error of an Invalid value.
func (v Value) Err() error {
	if v.kind == Invalid && v.err == nil {
		return errors.New("zero leaf value")
	}
	return v.err
}

// Canonical returns the canonical encoding.
func (v Value) Canonical() ([]byte, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	return v.canon, nil
}

// Equal reports whether both values encode to identical canonical bytes. A
// value that cannot be encoded is never equal to anything, itself included.
func (v Value) Equal(o Value) bool {
	if v.Err() != nil || o.Err() != nil {
		return false
	}
	return bytes.Equal(v.canon, o.canon)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Canonical()
}

// Interface decodes the canonical form into plain Go values (map[string]any,
// []any, float64, string, bool or nil).
func (v Value) Interface() any {
	if v.Err() != nil {
		return nil
	}
	return gjson.ParseBytes(v.canon).Value()
}

// String renders the value for log lines.
func (v Value) String() string {
	if err := v.Err(); err != nil {
		return fmt.Sprintf("<invalid: %v>", err)
	}
	return string(v.canon)
}

func canonicalize(buf *bytes.Buffer, r gjson.Result) (Kind, error) {
	switch r.Type {
	case gjson.Null:
		buf.WriteString("null")
		return Null, nil
	case gjson.True:
		buf.WriteString("true")
		return Bool, nil
	case gjson.False:
		buf.WriteString("false")
		return Bool, nil
	case gjson.Number:
		n, err := canonicalNumber(r.Raw)
		if err != nil {
			return Invalid, err
		}
		buf.WriteString(n)
		return Number, nil
	case gjson.String:
		if !utf8.ValidString(r.Str) {
			return Invalid, fmt.Errorf("%w: %q", ErrInvalidUTF8, truncate([]byte(r.Str)))
		}
		s, err := json.Marshal(r.Str)
		if err != nil {
			return Invalid, err
		}
		buf.Write(s)
		return String, nil
	}

	if r.IsArray() {
		buf.WriteByte('[')
		var err error
		i := 0
		r.ForEach(func(_, el gjson.Result) bool {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			_, err = canonicalize(buf, el)
			return err == nil
		})
		if err != nil {
			return Invalid, err
		}
		buf.WriteByte(']')
		return Array, nil
	}

	if r.IsObject() {
		members := map[string]gjson.Result{}
		r.ForEach(func(k, el gjson.Result) bool {
			members[k.Str] = el
			return true
		})
		keys := make([]string, 0, len(members))
		for k := range members {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if !utf8.ValidString(k) {
				return Invalid, fmt.Errorf("%w: key %q", ErrInvalidUTF8, truncate([]byte(k)))
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return Invalid, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if _, err := canonicalize(buf, members[k]); err != nil {
				return Invalid, err
			}
		}
		buf.WriteByte('}')
		return Object, nil
	}

	return Invalid, fmt.Errorf("%w: %q", ErrInvalidJSON, truncate([]byte(r.Raw)))
}

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1 << 53

// canonicalNumber normalises a JSON number so that 5, 5.0 and 5e0 encode
// identically. Integers that fit int64 keep full precision.
func canonicalNumber(raw string) (string, error) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("invalid number %q: %w", raw, err)
	}
	if f >= -maxExactInt && f <= maxExactInt && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func truncate(raw []byte) string {
	const max = 32
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}

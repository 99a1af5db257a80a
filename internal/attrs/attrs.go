// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tfctl/snapdiff/internal/log"
)

// Attr is one output column. Key names the row field it reads; OutputKey is
// the column title.
type Attr struct {
	Key string `yaml:"key" json:"Key"`
	// Should this Attr be rendered or is it only there for filtering and
	// sorting?
	Include       bool   `yaml:"include" json:"Include"`
	OutputKey     string `yaml:"outputKey" json:"OutputKey"`
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies the transform spec to a string value. Other values pass
// through untouched.
//
// Spec letters: u/U upper case, l/L lower case (the last one wins). A number
// n truncates to n runes; -n keeps both ends and joins them with "..".
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")
	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	match := lengthRe.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return result
	}

	// The last length wins so a column spec can override a global one.
	l, _ := strconv.Atoi(match[len(match)-1])
	runes := []rune(result)
	abs := l
	if abs < 0 {
		abs = -abs
	}
	if len(runes) <= abs {
		return result
	}
	if l < 0 {
		keep := abs/2 - 1
		if keep < 1 {
			keep = 1
		}
		result = string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
		log.Tracef("length middle: result=%s", result)
	} else {
		result = string(runes[:l])
		log.Tracef("length trunc: result=%s", result)
	}
	return result
}

// AttrList is the ordered set of columns.
type AttrList []Attr

// Defaults returns an AttrList showing every key, titled by key.
func Defaults(keys ...string) AttrList {
	list := make(AttrList, 0, len(keys))
	for _, k := range keys {
		list = append(list, Attr{Key: k, Include: true, OutputKey: k})
	}
	return list
}

// Set parses an --attrs value and merges it into the list.
//
// Each comma separated spec is key[:title[:transform]]. A leading ! hides the
// column. The key * carries a transform applied to every column.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")
		if len(fields) > transformIdx+1 {
			return fmt.Errorf("invalid attr spec %q: too many fields", spec)
		}

		attr := Attr{Include: true}
		attr.Key = strings.TrimSpace(fields[keyIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		attr.OutputKey = attr.Key
		if len(fields) > outputIdx && strings.TrimSpace(fields[outputIdx]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}
		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}
		log.Tracef("attr parsed: key=%s, output=%s, spec=%s", attr.Key, attr.OutputKey, attr.TransformSpec)

		// Columns given again (defaults, repeated flags) are replaced in place.
		for i := range *a {
			if (*a)[i].Key == attr.Key {
				(*a)[i] = attr
				continue specloop
			}
		}
		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the * transform, if any, to every column.
func (a *AttrList) SetGlobalTransformSpec() {
	spec := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return
	}
	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
	log.Debugf("global spec applied: spec=%s", spec)
}

// Visible returns the columns that are rendered.
func (a AttrList) Visible() AttrList {
	var visible AttrList
	for _, attr := range a {
		if attr.Include {
			visible = append(visible, attr)
		}
	}
	return visible
}

// String returns the list in --attrs form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tfctl/snapdiff/internal/attrs"
	"github.com/tfctl/snapdiff/internal/log"
)

// EnvDelim overrides the comma between filter expressions.
const EnvDelim = "SNAPDIFF_FILTER_DELIM"

// exprRegex captures key, optional negated operator, and target.
var exprRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

var errEmptyKey = errors.New("empty key")

// Filter is a single parsed --filter expression. An empty Operand means the
// key only has to be present.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

var stringOps = map[string]func(value, target string) (bool, error){
	"=": func(v, t string) (bool, error) { return v == t, nil },
	"~": func(v, t string) (bool, error) { return strings.EqualFold(v, t), nil },
	"^": func(v, t string) (bool, error) { return strings.HasPrefix(v, t), nil },
	">": func(v, t string) (bool, error) { return v > t, nil },
	"<": func(v, t string) (bool, error) { return v < t, nil },
	"@": func(v, t string) (bool, error) { return strings.Contains(v, t), nil },
	"/": func(v, t string) (bool, error) { return regexp.MatchString(t, v) },
}

var numericOps = map[string]func(value, target float64) bool{
	"=": func(v, t float64) bool { return v == t },
	">": func(v, t float64) bool { return v > t },
	"<": func(v, t float64) bool { return v < t },
}

// parseFilter turns one expression such as "kind!=removed" into a Filter.
func parseFilter(expr string) (Filter, error) {
	m := exprRegex.FindStringSubmatch(expr)
	if m == nil {
		return Filter{}, fmt.Errorf("invalid filter: %s", expr)
	}

	f := Filter{Key: strings.TrimSpace(m[1]), Value: m[3]}
	if f.Key == "" {
		return Filter{}, fmt.Errorf("invalid filter: %w in %s", errEmptyKey, expr)
	}
	f.Operand, f.Negate = strings.CutPrefix(m[2], "!")
	return f, nil
}

// BuildFilters parses a delimited list of expressions. Malformed ones are
// logged and dropped.
func BuildFilters(spec string) []Filter {
	var out []Filter
	if spec == "" {
		return out
	}

	delim := os.Getenv(EnvDelim)
	if delim == "" {
		delim = ","
	}

	for _, expr := range strings.Split(spec, delim) {
		if expr = strings.TrimSpace(expr); expr == "" {
			continue
		}
		f, err := parseFilter(expr)
		if err != nil {
			log.Errorf("%v", err)
			continue
		}
		out = append(out, f)
	}
	return out
}

// FilterDataset keeps the rows that satisfy every expression in spec.
func FilterDataset(rows []map[string]interface{}, columns attrs.AttrList, spec string) []map[string]interface{} {
	fs := BuildFilters(spec)
	if len(fs) == 0 {
		return rows
	}

	var kept []map[string]interface{}
	for _, row := range rows {
		if applyFilters(row, columns, fs) {
			kept = append(kept, row)
		}
	}
	return kept
}

func applyFilters(row map[string]interface{}, columns attrs.AttrList, fs []Filter) bool {
	for _, f := range fs {
		key := resolveKey(row, columns, f.Key)
		if key == "" {
			log.Errorf("filter key not found: %s", f.Key)
			fmt.Fprintf(os.Stderr, "warning: filter key not found: %s\n", f.Key)
			continue
		}

		value := row[key]
		switch {
		case value == nil:
			// Absent values satisfy only negated comparisons.
			if f.Operand == "" || !f.Negate {
				return false
			}
		case f.Operand == "":
		case !matchValue(value, f):
			return false
		}
	}
	return true
}

// matchValue picks numeric, membership or string comparison from the type of
// value and the shape of the target.
func matchValue(value interface{}, f Filter) bool {
	switch v := value.(type) {
	case string:
		return checkStringOperand(v, f)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), f)
	}

	if n, ok := toFloat64(value); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64); err == nil {
			return checkNumericOperand(n, f)
		}
		return checkStringOperand(strconv.FormatFloat(n, 'f', -1, 64), f)
	}

	if f.Operand == "@" {
		return checkContainsOperand(value, f)
	}
	return checkStringOperand(fmt.Sprintf("%v", value), f)
}

// resolveKey maps a filter key to a row key: column title, then column key,
// then the raw row.
func resolveKey(row map[string]interface{}, columns attrs.AttrList, name string) string {
	for _, c := range columns {
		if c.OutputKey == name {
			return c.Key
		}
	}
	for _, c := range columns {
		if c.Key == name {
			return c.Key
		}
	}
	if _, ok := row[name]; ok {
		return name
	}
	return ""
}

// checkContainsOperand tests array membership or object key presence.
func checkContainsOperand(value interface{}, f Filter) bool {
	var found bool
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if fmt.Sprintf("%v", item) == f.Value {
				found = true
				break
			}
		}
	case map[string]any:
		_, found = v[f.Value]
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
	return found != f.Negate
}

func checkNumericOperand(value float64, f Filter) bool {
	target, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		log.Errorf("invalid numeric value: %s", f.Value)
		return false
	}
	op, ok := numericOps[f.Operand]
	if !ok {
		log.Errorf("unsupported numeric operand: %s", f.Operand)
		return false
	}
	return op(value, target) != f.Negate
}

func checkStringOperand(value string, f Filter) bool {
	op, ok := stringOps[f.Operand]
	if !ok {
		log.Errorf("unsupported filtering operand: %s", f.Operand)
		return false
	}
	matched, err := op(value, f.Value)
	if err != nil {
		log.Errorf("invalid regex: %s", f.Value)
		return false
	}
	return matched != f.Negate
}

// toFloat64 widens any Go numeric kind decoders hand back.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

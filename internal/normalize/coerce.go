package normalize

import (
	"strconv"
	"strings"
)

// asMap returns v as a JSON object, or nil.
func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// asSlice returns v as a JSON array, or nil.
func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// str coerces v to a trimmed string. Non-string scalars are not stringified;
// they yield "".
func str(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// num coerces v to a float64. Numeric strings are parsed. The second return
// is false when no usable number is present.
func num(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// numOr coerces v to a float64, returning def when no usable number is present.
func numOr(v interface{}, def float64) float64 {
	if n, ok := num(v); ok {
		return n
	}
	return def
}

// clampRange bounds v to [lo, hi].
func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampEnum returns value if it is in allowed (case-insensitive, canonical
// spelling restored), else fallback. This protects downstream consumers from
// unbounded strings.
func clampEnum(value string, allowed []string, fallback string) string {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if lower == a {
			return a
		}
	}
	return fallback
}

// stringSlice coerces v to a slice of non-blank strings, element-wise.
// Non-string elements and blank entries are dropped.
func stringSlice(v interface{}) []string {
	items := asSlice(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// missing reports whether a category-like string value is effectively absent:
// empty, or the literal strings "null"/"undefined" the extraction service
// sometimes emits.
func missing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "undefined":
		return true
	}
	return false
}

package jobs

import (
	"fmt"
	"strconv"
)

// Criteria is the opaque search/preference/selector configuration passed
// through to an adapter. The core never interprets it; adapters extract the
// keys they expect through the typed accessors below and fail early on shape
// mismatches.
type Criteria map[string]any

func (c Criteria) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func (c Criteria) Int(key string, def int) int {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}

func (c Criteria) Bool(key string) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "1" || t == "true" || t == "yes" || t == "on"
	}
	return false
}

// StringList accepts either a scalar or a list value; a scalar becomes a
// one-element list. Empty entries are dropped.
func (c Criteria) StringList(key string) []string {
	v, ok := c[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			s := fmt.Sprintf("%v", item)
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{fmt.Sprintf("%v", v)}
}

func (c Criteria) Sub(key string) Criteria {
	v, ok := c[key]
	if !ok || v == nil {
		return Criteria{}
	}
	switch t := v.(type) {
	case map[string]any:
		return Criteria(t)
	case Criteria:
		return t
	}
	return Criteria{}
}

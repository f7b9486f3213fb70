package columns

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Lookup reads the dotted path from row. The boolean is false when any
// segment is missing; a miss is not an error.
func Lookup(row Record, path string) (any, bool) {
	if row == nil || path == "" {
		return nil, false
	}
	if v, ok := row[path]; ok {
		return v, v != nil
	}
	return lookupPath(map[string]any(row), path)
}

// lookupPath walks maps by key and slices by index.
func lookupPath(v any, path string) (any, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		if cur == nil {
			return nil, false
		}
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case Record:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			next, ok := reflectIndex(cur, seg)
			if !ok {
				return nil, false
			}
			cur = next
		}
	}
	return cur, cur != nil
}

// reflectIndex handles typed maps and slices such as []map[string]any.
func reflectIndex(v any, seg string) (any, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		e := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !e.IsValid() {
			return nil, false
		}
		return e.Interface(), true
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// isStructured reports whether v must be serialized before display.
func isStructured(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(fmt.Stringer); ok {
		return false
	}
	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

// present reports whether v counts as a value in the fallback chain.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	}
	return true
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

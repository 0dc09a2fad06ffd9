// Package export turns a case into shareable artifacts: a deterministic
// JSON document, a printable PDF summary, and the signed tokens that gate
// artifact downloads.
package export

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// CircularSentinel replaces any value that refers back to one of its own
// ancestors in the canonical output.
const CircularSentinel = "[circular]"

// MarshalCanonical serializes a value to deterministic JSON: object keys
// sorted lexicographically at every nesting level, array order preserved,
// cycles replaced with the sentinel, 2-space indentation. The same value
// always yields byte-identical output regardless of map insertion order.
func MarshalCanonical(v any) ([]byte, error) {
	tree, err := normalize(reflect.ValueOf(v), map[uintptr]bool{})
	if err != nil {
		return nil, err
	}
	// encoding/json writes map keys in sorted order, which gives the
	// lexicographic ordering at every level once everything is a map.
	return json.MarshalIndent(tree, "", "  ")
}

func normalize(v reflect.Value, seen map[uintptr]bool) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() != reflect.Pointer && v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			raw, err := m.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var decoded any
			if err := json.Unmarshal(raw, &decoded); err != nil {
				return nil, err
			}
			return decoded, nil
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return normalize(v.Elem(), seen)

	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return CircularSentinel, nil
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return normalize(v.Elem(), seen)

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return CircularSentinel, nil
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			val, err := normalize(iter.Value(), seen)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil

	case reflect.Slice:
		if v.IsNil() {
			return []any{}, nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return CircularSentinel, nil
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		return normalizeSequence(v, seen)

	case reflect.Array:
		return normalizeSequence(v, seen)

	case reflect.Struct:
		out := map[string]any{}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitempty, skip := jsonName(field)
			if skip {
				continue
			}
			fv := v.Field(i)
			if omitempty && fv.IsZero() {
				continue
			}
			val, err := normalize(fv, seen)
			if err != nil {
				return nil, err
			}
			out[name] = val
		}
		return out, nil

	default:
		if v.CanInterface() {
			return v.Interface(), nil
		}
		return nil, fmt.Errorf("cannot serialize %s value", v.Kind())
	}
}

func normalizeSequence(v reflect.Value, seen map[uintptr]bool) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := normalize(v.Index(i), seen)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func jsonName(field reflect.StructField) (name string, omitempty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

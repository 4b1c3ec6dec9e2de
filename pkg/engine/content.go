package engine

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/loom-ui/loom/pkg/host"
)

// contentShape is the explicit variant over the value shapes a content part
// can hold. Every consumption site (mount, patch, teardown) switches on it
// exhaustively instead of sprinkling type inspection.
type contentShape uint8

const (
	shapeEmpty     contentShape = iota + 1 // nil value, rendered as an empty text node
	shapeScalar                            // string/number/bool, rendered as a text node
	shapeComponent                         // nested *Definition
	shapeList                              // slice/array of mixed content values
	shapeNode                              // raw *host.Node inserted by reference
)

// String returns the string representation of the contentShape.
func (s contentShape) String() string {
	switch s {
	case shapeEmpty:
		return "Empty"
	case shapeScalar:
		return "Scalar"
	case shapeComponent:
		return "Component"
	case shapeList:
		return "List"
	case shapeNode:
		return "Node"
	default:
		return "Unknown"
	}
}

// classifyContent maps a content expression value to its shape.
func classifyContent(v any) contentShape {
	switch v.(type) {
	case nil:
		return shapeEmpty
	case *Definition:
		return shapeComponent
	case *host.Node:
		return shapeNode
	case string, []byte:
		return shapeScalar
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return shapeList
	default:
		return shapeScalar
	}
}

// listValues expands a list-shaped value into its items.
func listValues(v any) []any {
	if items, ok := v.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// coerceScalar converts a scalar content or attribute value to its string
// form, with fast paths for the common types.
func coerceScalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// coerceAttribute maps an attribute expression value to (value, present):
// boolean true is a presence-only attribute, false and nil mean the
// attribute is absent, anything else is string-coerced.
func coerceAttribute(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", val
	default:
		return coerceScalar(val), true
	}
}

// sameIdentity reports reference identity for pointer-like values and plain
// equality for comparables. Non-comparable values that are not the same
// reference are never identical.
func sameIdentity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Map, reflect.Func:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Comparable() || !rb.Comparable() {
		return false
	}
	return a == b
}

// shallowEqual is the pairwise equality test over effect dependency lists.
func shallowEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameIdentity(a[i], b[i]) {
			return false
		}
	}
	return true
}

package chainz

import (
	"errors"
	"reflect"
)

// ErrNotIterable is the recorded error when Each or MatchOf receives an input
// that cannot be iterated.
var ErrNotIterable = errors.New("input is not iterable")

// iterate adapts an input value to a Seq. Accepted inputs: a Seq (or any
// func(func(any) bool)), []any, and arbitrary slices or arrays through
// reflection. Strings are deliberately not iterable - iterating bytes or
// runes is almost never what a pipeline means.
func iterate(input any) (Seq, bool) {
	switch v := input.(type) {
	case Seq:
		return v, true
	case func(func(any) bool):
		return v, true
	case []any:
		return func(yield func(any) bool) {
			for _, item := range v {
				if !yield(item) {
					return
				}
			}
		}, true
	}
	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, true
	default:
		return nil, false
	}
}

// materialize adapts an input value to a concrete slice, for nodes that need
// the length up front. A Seq input is drained.
func materialize(input any) ([]any, bool) {
	if v, ok := input.([]any); ok {
		return v, true
	}
	seq, ok := iterate(input)
	if !ok {
		return nil, false
	}
	var out []any
	for item := range seq {
		out = append(out, item)
	}
	return out, true
}

// Collect drains a Seq into a slice, executing any pending lazy work. It is a
// convenience for consumers that want the materialized results of an Each
// step.
func Collect(values Seq) []any {
	var out []any
	for v := range values {
		out = append(out, v)
	}
	return out
}

package chainz

import (
	"reflect"
	"testing"
)

func TestIterate(t *testing.T) {
	t.Run("Typed Slices", func(t *testing.T) {
		seq, ok := iterate([]int{1, 2, 3})
		if !ok {
			t.Fatal("expected []int to be iterable")
		}
		if got := Collect(seq); !reflect.DeepEqual(got, []any{1, 2, 3}) {
			t.Errorf("expected [1 2 3], got %v", got)
		}
	})

	t.Run("Arrays", func(t *testing.T) {
		seq, ok := iterate([2]string{"a", "b"})
		if !ok {
			t.Fatal("expected array to be iterable")
		}
		if got := Collect(seq); !reflect.DeepEqual(got, []any{"a", "b"}) {
			t.Errorf("expected [a b], got %v", got)
		}
	})

	t.Run("Seq Passes Through", func(t *testing.T) {
		src := Seq(func(yield func(any) bool) {
			yield(1)
		})
		seq, ok := iterate(src)
		if !ok {
			t.Fatal("expected Seq to be iterable")
		}
		if got := Collect(seq); !reflect.DeepEqual(got, []any{1}) {
			t.Errorf("expected [1], got %v", got)
		}
	})

	t.Run("Rejected Inputs", func(t *testing.T) {
		for _, input := range []any{nil, 42, "string", map[string]int{"a": 1}} {
			if _, ok := iterate(input); ok {
				t.Errorf("expected %T to be rejected", input)
			}
		}
	})

	t.Run("Materialize Drains", func(t *testing.T) {
		items, ok := materialize([]string{"x", "y"})
		if !ok {
			t.Fatal("expected slice to materialize")
		}
		if !reflect.DeepEqual(items, []any{"x", "y"}) {
			t.Errorf("expected [x y], got %v", items)
		}
	})
}

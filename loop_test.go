package chainz

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestLoop(t *testing.T) {
	t.Run("Maps Each Element", func(t *testing.T) {
		chain, err := New("upper",
			From("split", strings.Fields),
			Each, From("upper", strings.ToUpper),
			From("collect", Collect),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		out, report := chain.Process(context.Background(), "a b c")
		if !report.Ok {
			t.Error("expected successful report")
		}
		want := []any{"A", "B", "C"}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("expected %v, got %v", want, out)
		}
	})

	t.Run("Output Is Lazy", func(t *testing.T) {
		var calls int
		chain, err := New("lazy",
			Each, From("count", func(n int) int {
				calls++
				return n
			}),
			From("first", func(values Seq) any {
				for v := range values {
					return v
				}
				return nil
			}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		out, _ := chain.Process(context.Background(), []any{1, 2, 3})
		if out != 1 {
			t.Errorf("expected 1, got %v", out)
		}
		if calls != 1 {
			t.Errorf("expected 1 execution for an early-stopping consumer, got %d", calls)
		}
	})

	t.Run("Failed Elements Are Absent", func(t *testing.T) {
		chain, err := New("avg",
			From("split", strings.Fields),
			Each, FromErr("float", func(s string) (float64, error) {
				return strconv.ParseFloat(s, 64)
			}),
			From("collect", Collect),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		out, report := chain.Process(context.Background(), "1 2 x")
		if !report.Ok {
			t.Error("per-element failures should not fail the chain")
		}
		want := []any{1.0, 2.0}
		if !reflect.DeepEqual(out, want) {
			t.Errorf("expected %v, got %v", want, out)
		}
		if len(report.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(report.Failures))
		}
		if report.Failures[0].Source != "avg/2.float" {
			t.Errorf("expected source avg/2.float, got %s", report.Failures[0].Source)
		}
	})

	t.Run("All Elements Failing Is Still Success", func(t *testing.T) {
		chain, err := New("empty",
			Each, FromErr("never", func(any) (int, error) {
				return 0, errors.New("boom")
			}),
			From("collect", Collect),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		out, report := chain.Process(context.Background(), []any{1, 2})
		if !report.Ok {
			t.Error("expected successful report")
		}
		if got := out.([]any); len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
		if len(report.Failures) != 2 {
			t.Errorf("expected 2 failures, got %d", len(report.Failures))
		}
	})

	t.Run("Non Iterable Input Is Fatal", func(t *testing.T) {
		chain, err := New("iter",
			Each, From("id", func(v any) any { return v }),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		_, report := chain.Process(context.Background(), 42)
		if report.Ok {
			t.Error("expected failed report")
		}
		if !errors.Is(report.Failures[0].Err, ErrNotIterable) {
			t.Errorf("expected ErrNotIterable, got %v", report.Failures[0].Err)
		}
	})

	t.Run("Strings Are Not Iterable", func(t *testing.T) {
		chain, err := New("iter",
			Each, From("id", func(v any) any { return v }),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer chain.Close()

		_, report := chain.Process(context.Background(), "abc")
		if report.Ok {
			t.Error("expected string input to be rejected")
		}
	})
}

package chainz

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestChain(t *testing.T) {
	newAvg := func(t *testing.T) *Chain {
		t.Helper()
		chain, err := New("avg",
			From("split", strings.Fields),
			Each, FromErr("float", func(s string) (float64, error) {
				return strconv.ParseFloat(s, 64)
			}),
			From("mean", func(values Seq) float64 {
				var sum float64
				var n int
				for v := range values {
					sum += v.(float64)
					n++
				}
				if n == 0 {
					return 0
				}
				return sum / float64(n)
			}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return chain
	}

	t.Run("Happy Path", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		out, report := chain.Process(context.Background(), "1 2 3")
		if out != 2.0 {
			t.Errorf("expected 2, got %v", out)
		}
		if !report.Ok || report.HasFailures() {
			t.Errorf("expected clean report, got ok=%t failures=%d", report.Ok, len(report.Failures))
		}
		if report.SuccessRate != 1.0 {
			t.Errorf("expected success rate 1, got %v", report.SuccessRate)
		}
	})

	t.Run("Partial Failure Degrades Gracefully", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		out, report := chain.Process(context.Background(), "1 2 x")
		if out != 1.5 {
			t.Errorf("expected 1.5, got %v", out)
		}
		if !report.Ok {
			t.Error("expected successful report despite element failure")
		}
		if len(report.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(report.Failures))
		}
		f := report.Failures[0]
		if f.Source != "avg/2.float" {
			t.Errorf("expected source avg/2.float, got %s", f.Source)
		}
		if f.Input != "x" {
			t.Errorf("expected offending input x, got %v", f.Input)
		}
	})

	t.Run("Nil Context", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		out, report := chain.Process(nil, "4 6") //nolint:staticcheck
		if out != 5.0 || !report.Ok {
			t.Errorf("expected 5, got ok=%t out=%v", report.Ok, out)
		}
	})

	t.Run("Reports Are Per Call", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		_, bad := chain.Process(context.Background(), "1 x")
		_, good := chain.Process(context.Background(), "1 2")
		if len(bad.Failures) != 1 {
			t.Errorf("expected 1 failure in first call, got %d", len(bad.Failures))
		}
		if len(good.Failures) != 0 {
			t.Errorf("failures leaked across calls: %v", good.Failures)
		}
	})

	t.Run("Concurrent Calls", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				input := "1 2 3"
				wantFailures := 0
				if i%2 == 1 {
					input = "1 2 x"
					wantFailures = 1
				}
				_, report := chain.Process(context.Background(), input)
				if len(report.Failures) != wantFailures {
					t.Errorf("call %d: expected %d failures, got %d", i, wantFailures, len(report.Failures))
				}
			}(i)
		}
		wg.Wait()
	})

	t.Run("Handlers Run In Registration Order", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		var order []string
		chain.OnReport(func(*Report) { order = append(order, "first") })
		chain.OnReport(func(*Report) { order = append(order, "second") })

		chain.Process(context.Background(), "1 2")
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("unexpected handler order: %v", order)
		}
	})

	t.Run("OnFailures Skips Clean Calls", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		var all, failed int
		chain.OnReport(func(*Report) { all++ })
		chain.OnFailures(func(*Report) { failed++ })

		chain.Process(context.Background(), "1 2")
		chain.Process(context.Background(), "1 x")
		if all != 2 {
			t.Errorf("expected OnReport twice, got %d", all)
		}
		if failed != 1 {
			t.Errorf("expected OnFailures once, got %d", failed)
		}
	})

	t.Run("Handlers See Settled Report", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		var seen *Report
		chain.OnReport(func(r *Report) { seen = r })

		_, returned := chain.Process(context.Background(), "1 x")
		if seen != returned {
			t.Error("handler should receive the same report Process returns")
		}
	})

	t.Run("Fake Clock Stamps Report", func(t *testing.T) {
		clock := clockz.NewFakeClock()
		chain := newAvg(t).WithClock(clock)
		defer chain.Close()

		_, report := chain.Process(context.Background(), "1 2")
		if !report.Timestamp.Equal(clock.Now()) {
			t.Errorf("expected timestamp %v, got %v", clock.Now(), report.Timestamp)
		}
		if report.Duration != 0 {
			t.Errorf("expected zero duration with frozen clock, got %v", report.Duration)
		}
	})

	t.Run("Hook Events Fire", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		var mu sync.Mutex
		var completes, failures []ChainEvent

		if err := chain.OnComplete(func(_ context.Context, e ChainEvent) error {
			mu.Lock()
			completes = append(completes, e)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := chain.OnFailure(func(_ context.Context, e ChainEvent) error {
			mu.Lock()
			failures = append(failures, e)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		chain.Process(context.Background(), "1 2")
		chain.Process(context.Background(), "1 x")

		// Wait for async hooks
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if len(completes) != 2 {
			t.Errorf("expected 2 complete events, got %d", len(completes))
		}
		if len(failures) != 1 {
			t.Errorf("expected 1 failure event, got %d", len(failures))
		}
		if len(failures) == 1 && failures[0].Failures != 1 {
			t.Errorf("expected failure count 1 in event, got %d", failures[0].Failures)
		}
	})

	t.Run("Metrics Track Outcomes", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		chain.Process(context.Background(), "1 2")
		chain.Process(context.Background(), 42)

		if got := chain.Metrics().Counter(ChainProcessedTotal).Value(); got != 2 {
			t.Errorf("expected 2 processed, got %v", got)
		}
		if got := chain.Metrics().Counter(ChainSuccessesTotal).Value(); got != 1 {
			t.Errorf("expected 1 success, got %v", got)
		}
		if got := chain.Metrics().Counter(ChainFailuresTotal).Value(); got != 1 {
			t.Errorf("expected 1 failed call, got %v", got)
		}
	})

	t.Run("Len Counts Leaves", func(t *testing.T) {
		chain := newAvg(t)
		defer chain.Close()

		if chain.Len() != 3 {
			t.Errorf("expected 3 leaves, got %d", chain.Len())
		}
		if chain.Name() != "avg" {
			t.Errorf("expected name avg, got %s", chain.Name())
		}
	})
}

package chainz

import (
	"math"
	"time"
)

// Report is the structured outcome of one chain invocation: aggregate
// counters plus the ordered failure entries. It is handed to every
// registered report handler after the root node returns and before Process
// returns to the caller, so handlers always see a complete, settled report
// and can never race a later invocation.
type Report struct {
	Chain    Name      // chain name
	Ok       bool      // whether the root node reported success
	Failures []Failure // ordered failure entries, possibly empty

	// Leaf operation counters. A leaf can run several times in one call
	// (under Each) or not at all (after a fatal stop upstream).
	Succeeded int // successful leaf operations
	Failed    int // failed leaf operations
	Missed    int // leaves never reached during this call
	Required  int // leaves that are required, accounting for optional ancestors
	Total     int // total leaves in the chain

	// SuccessRate averages each reached leaf's success ratio over the total
	// leaf count; missed leaves contribute zero. Rounded to 4 decimals.
	SuccessRate float64

	Duration  time.Duration // wall time of the invocation
	Timestamp time.Time     // when the invocation finished
}

// HasFailures reports whether any failure was recorded, fatal or not.
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// HasFatal reports whether any recorded failure was fatal.
func (r *Report) HasFatal() bool {
	for i := range r.Failures {
		if r.Failures[i].Fatal {
			return true
		}
	}
	return false
}

// report settles the recorder state into a Report. total and required come
// from the chain's one-time construction walk.
func (r Recorder) report(chain Name, total, required int, ok bool, duration time.Duration, now time.Time) *Report {
	var succeeded, failed int
	var completed float64
	for _, t := range r.s.tallies {
		succeeded += t.succeeded
		failed += t.failed
		if ops := t.succeeded + t.failed; ops > 0 {
			completed += float64(t.succeeded) / float64(ops)
		}
	}
	rate := 0.0
	if total > 0 {
		rate = math.Round(completed/float64(total)*10000) / 10000
	}
	return &Report{
		Chain:       chain,
		Ok:          ok,
		Failures:    r.Failures(),
		Succeeded:   succeeded,
		Failed:      failed,
		Missed:      total - len(r.s.tallies),
		Required:    required,
		Total:       total,
		SuccessRate: rate,
		Duration:    duration,
		Timestamp:   now,
	}
}

package chainz

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Failure is one recorded processing failure. Entries are immutable and live
// for the duration of one top-level call; after the report is dispatched the
// chain drops them.
type Failure struct {
	Source    string    // rendered label of the failing node
	Input     any       // the value that caused the failure
	Err       error     // the captured error
	Fatal     bool      // whether the failing node was required
	Timestamp time.Time // when the failure was recorded
}

// tally counts one leaf's operations within a single call. A leaf may run
// many times per call (under Each) or not at all (after a fatal stop).
type tally struct {
	succeeded int
	failed    int
}

// recorderState is the shared mutable core behind Recorder values. One state
// exists per top-level call; derived Recorder views all point at it.
type recorderState struct {
	clock    clockz.Clock
	failures []Failure
	fatal    bool
	tallies  map[*Leaf]*tally
}

// Recorder accumulates failure entries and per-leaf tallies during one
// top-level invocation. A fresh Recorder is allocated per call and never
// shared across calls, which is what makes concurrent calls over the same
// node tree safe.
//
// A Recorder value is a view: option nodes derive views that override the
// severity of everything recorded beneath them, while all views share the
// same entry list. Structural failures bypass the override, because they are
// fatal regardless of how the node was wrapped.
type Recorder struct {
	s     *recorderState
	fatal *bool // severity override inherited from enclosing option nodes
}

// NewRecorder returns a recorder for one invocation. Chains allocate these
// internally; constructing one directly is only useful for testing nodes in
// isolation.
func NewRecorder(clock clockz.Clock) Recorder {
	if clock == nil {
		clock = clockz.RealClock
	}
	return Recorder{s: &recorderState{
		clock:   clock,
		tallies: make(map[*Leaf]*tally),
	}}
}

// Record registers a failure entry. The fatal flag is the failing node's
// required flag, unless an enclosing Optional or Required override is in
// scope, in which case the override wins for the whole subtree.
func (r Recorder) Record(label Label, input any, err error, fatal bool) {
	if r.fatal != nil {
		fatal = *r.fatal
	}
	r.record(label, input, err, fatal)
}

// recordStructural registers a failure that makes continuing impossible,
// such as a match length mismatch. Always fatal, overrides notwithstanding.
func (r Recorder) recordStructural(label Label, input any, err error) {
	r.record(label, input, err, true)
}

func (r Recorder) record(label Label, input any, err error, fatal bool) {
	r.s.failures = append(r.s.failures, Failure{
		Source:    label.String(),
		Input:     input,
		Err:       err,
		Fatal:     fatal,
		Timestamp: r.s.clock.Now(),
	})
	if fatal {
		r.s.fatal = true
	}
}

// HasFatal reports whether any fatal failure has been recorded so far.
func (r Recorder) HasFatal() bool {
	return r.s.fatal
}

// Failures returns the entries recorded so far, in order.
func (r Recorder) Failures() []Failure {
	out := make([]Failure, len(r.s.failures))
	copy(out, r.s.failures)
	return out
}

// withSeverity derives a view whose recorded entries carry the given fatal
// flag regardless of the failing node's own required flag. Used by option
// nodes so that severity cascades through the wrapped subtree.
func (r Recorder) withSeverity(required bool) Recorder {
	return Recorder{s: r.s, fatal: &required}
}

// observe tallies one leaf operation for statistics.
func (r Recorder) observe(l *Leaf, ok bool) {
	t := r.s.tallies[l]
	if t == nil {
		t = &tally{}
		r.s.tallies[l] = t
	}
	if ok {
		t.succeeded++
	} else {
		t.failed++
	}
}

// Package chainz provides a declarative library for composing data-processing
// pipelines in Go where each step's failure is isolated, labeled, and
// reported without aborting the whole pipeline.
//
// # Overview
//
// chainz turns a declarative structure of functions, branch maps, groups, and
// option markers into an immutable tree of nodes, built once at construction
// time. Each call flows a single input value through the tree; a step that
// fails never raises past its node - it records a structured failure and
// returns a default, and composition rules decide whether the failure stops
// the pipeline or is absorbed.
//
// # Core Concepts
//
// Every unit of execution is a Node. A node call reports success with a
// boolean instead of an error, because a failure inside a chain is data to
// collect, not an error to propagate:
//
//	call(ctx, input, label, recorder) -> (ok, value)
//
// Key components:
//   - Leaves: wrap a single callable created with Apply, From, or FromErr
//   - Composites: Serial (piped steps), ModelOf/GroupOf (keyed/positional
//     branching), MatchOf (positional zip), and the Each marker (item-wise
//     mapping with lazy output)
//   - Options: Optional, Required, Named, Defaulted, DefaultedBy override a
//     single property of the node they wrap
//   - Chain: the user-facing facade that owns the root node, allocates a
//     fresh Recorder per call, and dispatches the resulting Report
//
// # Quick Start
//
//	split := chainz.From("split", strings.Fields)
//	toFloat := chainz.FromErr("float", func(s string) (float64, error) {
//	    return strconv.ParseFloat(s, 64)
//	})
//	mean := chainz.From("mean", func(values chainz.Seq) float64 {
//	    var sum float64
//	    var n int
//	    for v := range values {
//	        sum += v.(float64)
//	        n++
//	    }
//	    return sum / float64(n)
//	})
//
//	avg, err := chainz.New("avg", split, chainz.Each, toFloat, mean)
//	if err != nil {
//	    // construction errors are the only errors chainz raises
//	}
//
//	result, report := avg.Process(ctx, "1 2 x")
//	// result: 1.5, report.Failures: one entry labeled "avg/2.float"
//
// # Failure Model
//
// Failures never travel as errors through the tree. A leaf that fails records
// a Failure (label, offending input, error, fatal flag) on the call's
// Recorder and returns its default value. Parents interpret the failure
// through the child's required flag: a required child's failure stops a
// Serial sequence and poisons a branching composite's result, while an
// optional child's failure is absorbed. Structural failures - a MatchOf
// input of the wrong length, a non-iterable input to Each - are always
// fatal, because continuing is not semantically possible.
//
// The only user-visible failure mode is "the returned value is a default,
// and the Report explains why."
//
// # Observability
//
// Chains carry the standard observability surface: metricz counters and
// gauges, a tracez span per call, hookz completion/failure events, capitan
// signals for fatal outcomes, and a clockz clock injectable for tests.
package chainz

import (
	"context"
	"errors"
)

// Name identifies chains, leaves, and label segments.
// Using this type encourages storing names as constants rather than
// inline strings throughout your code.
type Name = string

// Func is the canonical callable wrapped by a leaf. It receives the current
// input value and either returns the transformed value or an error. Returning
// an error (or panicking) is the only failure signal; no sentinel return
// value is reserved.
type Func func(context.Context, any) (any, error)

// Seq is the lazily evaluated output of an Each step. Nothing executes until
// the sequence is consumed; each consumed element runs the wrapped node and,
// on failure, records the failure at that point. Sequences are single-pass:
// ranging a second time re-executes the elements.
type Seq func(yield func(any) bool)

// NodeKind discriminates the closed set of node variants. The variant is
// resolved once at construction time; the call path never sniffs element
// types to decide what a node is.
type NodeKind uint8

// Node variants.
const (
	KindLeaf NodeKind = iota
	KindSequence
	KindDictModel
	KindListModel
	KindMatch
	KindLoop
	KindPass
)

// String returns the kind name for debugging.
func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSequence:
		return "sequence"
	case KindDictModel:
		return "dict-model"
	case KindListModel:
		return "list-model"
	case KindMatch:
		return "match"
	case KindLoop:
		return "loop"
	case KindPass:
		return "pass"
	default:
		return "unknown"
	}
}

// Node is one unit of a pipeline. Nodes are immutable after construction and
// hold no call-scoped state, so many concurrent calls may traverse the same
// tree simultaneously.
//
// The set of implementations is closed: nodes are created through package
// constructors (Apply, Serial, ModelOf, ...) or by New's parser, never by
// implementing the interface outside the package.
type Node interface {
	// Kind reports the resolved variant of this node.
	Kind() NodeKind

	// Segment is this node's contribution to failure labels. Composites
	// contribute nothing; leaves contribute their name.
	Segment() Name

	// Required reports how a parent interprets this node's failure: a
	// required node's failure stops the parent, an optional node's failure
	// is absorbed.
	Required() bool

	// Children returns the node's direct children, empty for leaves.
	Children() []Node

	// call executes the node. The label already includes this node's own
	// segment; ok reports success, and on failure the returned value is the
	// node's default.
	call(ctx context.Context, input any, label Label, rec Recorder) (ok bool, out any)

	// stats counts the leaves under this node and how many of them are
	// required, given whether every ancestor so far is required.
	stats(required bool) (leaves, requiredLeaves int)
}

// callNode invokes a child node with the scope extended by the child's own
// label segment. All parent-to-child calls go through here so that Named
// overrides take effect uniformly.
func callNode(ctx context.Context, n Node, input any, scope Label, rec Recorder) (bool, any) {
	if seg := n.Segment(); seg != "" {
		scope = scope.Child(seg)
	}
	return n.call(ctx, input, scope, rec)
}

// Construction errors.
var (
	ErrInvalidName    = errors.New("invalid chain name")
	ErrEmptyStructure = errors.New("empty structure")
	ErrMatchTooFew    = errors.New("match requires at least two branches")
	ErrBadOption      = errors.New("malformed option placement")
	ErrUnchainable    = errors.New("unchainable element")
	ErrDuplicateChain = errors.New("chain name already registered")
)

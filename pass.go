package chainz

import "context"

// passNode forwards its input unchanged and never fails. It exists for
// branching structures where one branch should carry the original value
// through, and is cheaper than a leaf wrapping an identity function because
// it records nothing.
type passNode struct{}

// Pass is the pass-through branch marker. Use it as a branch in ModelOf,
// GroupOf, or MatchOf structures to keep the input at that slot:
//
//	chainz.New("enrich", chainz.ModelOf(map[string]any{
//	    "raw":    chainz.Pass,
//	    "parsed": parse,
//	}))
var Pass Node = passNode{}

func (passNode) Kind() NodeKind { return KindPass }

func (passNode) Segment() Name { return "" }

func (passNode) Required() bool { return true }

func (passNode) Children() []Node { return nil }

func (passNode) call(_ context.Context, input any, _ Label, _ Recorder) (bool, any) {
	return true, input
}

func (passNode) stats(bool) (int, int) { return 0, 0 }

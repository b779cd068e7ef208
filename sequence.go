package chainz

import "context"

// sequence pipes a value through its children in order, feeding each child's
// output to the next. The first failing required child stops the walk: the
// sequence fails and returns whatever default that child returned. A failing
// optional child is skipped instead - the input it received is forwarded
// unchanged to the next child, discarding the attempted transformation.
//
// Children after a fatal stop are never invoked; they surface in statistics
// as missed leaves.
type sequence struct {
	children []Node
}

// Serial declares an ordered sub-sequence inside a chain structure. A chain's
// top-level elements already form a sequence; Serial exists to nest one
// inside a branch or an Each marker:
//
//	chainz.New("ingest",
//	    fetch,
//	    chainz.Each, chainz.Serial(decode, validate),
//	    store,
//	)
func Serial(elements ...any) Element {
	return Element{kind: elemSerial, items: elements}
}

func (*sequence) Kind() NodeKind { return KindSequence }

func (*sequence) Segment() Name { return "" }

func (*sequence) Required() bool { return true }

func (s *sequence) Children() []Node {
	out := make([]Node, len(s.children))
	copy(out, s.children)
	return out
}

func (s *sequence) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	value := input
	for _, child := range s.children {
		ok, out := callNode(ctx, child, value, label, rec)
		if ok {
			value = out
			continue
		}
		if child.Required() {
			return false, out
		}
	}
	return true, value
}

func (s *sequence) stats(required bool) (int, int) {
	var leaves, req int
	for _, child := range s.children {
		l, r := child.stats(required)
		leaves += l
		req += r
	}
	return leaves, req
}

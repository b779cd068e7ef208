package chainz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zoobzio/capitan"
)

// matchNode zips a fixed-length iterable input to its branches: item i goes
// to branch i. The input's length must equal the branch count exactly; a
// non-iterable input or a length mismatch is a structural failure, recorded
// fatal with zero branch invocations, because no sensible pairing exists.
//
// Once the length check passes every branch runs - match makes no
// required/optional distinction at the branch level. Any branch failure makes
// the whole match fail, but the returned collection still holds every
// branch's result, with defaults at the failing slots.
type matchNode struct {
	children []Node
}

// MatchOf declares positional zip branches: the input must be an iterable
// whose length equals the branch count, and each item is processed by the
// branch at the same position. At least two branches are required.
//
//	chainz.New("pair", split, chainz.MatchOf(parseKey, parseValue))
func MatchOf(branches ...any) Element {
	return Element{kind: elemMatch, items: branches}
}

func (*matchNode) Kind() NodeKind { return KindMatch }

func (*matchNode) Segment() Name { return "" }

func (*matchNode) Required() bool { return true }

func (m *matchNode) Children() []Node {
	out := make([]Node, len(m.children))
	copy(out, m.children)
	return out
}

func (m *matchNode) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	items, ok := materialize(input)
	if !ok {
		rec.recordStructural(label, input, ErrNotIterable)
		m.signalMismatch(ctx, label, -1)
		return false, nil
	}
	if len(items) != len(m.children) {
		err := fmt.Errorf("match expected %d items, received %d", len(m.children), len(items))
		rec.recordStructural(label, input, err)
		m.signalMismatch(ctx, label, len(items))
		return false, nil
	}
	ok = true
	results := make([]any, len(m.children))
	for i, child := range m.children {
		bok, out := callNode(ctx, child, items[i], label.Child(Name(strconv.Itoa(i))), rec)
		results[i] = out
		if !bok {
			ok = false
		}
	}
	return ok, results
}

func (m *matchNode) signalMismatch(ctx context.Context, label Label, received int) {
	capitan.Warn(ctx, SignalMatchMismatch,
		FieldChain.Field(label.Root()),
		FieldSource.Field(label.String()),
		FieldExpected.Field(len(m.children)),
		FieldReceived.Field(received),
		FieldTimestamp.Field(float64(time.Now().Unix())),
	)
}

func (m *matchNode) stats(required bool) (int, int) {
	var leaves, req int
	for _, child := range m.children {
		l, r := child.stats(required)
		leaves += l
		req += r
	}
	return leaves, req
}

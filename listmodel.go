package chainz

import (
	"context"
	"strconv"
)

// listModel hands the same input to every positional branch independently and
// assembles the successful results into an ordered slice. Like dictModel,
// every branch runs regardless of the others.
//
// A failing required branch poisons the composite but its default keeps the
// slot; a failing optional branch's slot is dropped, shortening the result.
//
// Branch failure labels extend the current path with the branch index.
type listModel struct {
	children []Node
}

// GroupOf declares positional parallel branches. A plain []any element inside
// a chain structure is shorthand for GroupOf.
//
//	chainz.New("stats", chainz.GroupOf(minimum, maximum, chainz.Optional(median)))
func GroupOf(branches ...any) Element {
	return Element{kind: elemGroup, items: branches}
}

func (*listModel) Kind() NodeKind { return KindListModel }

func (*listModel) Segment() Name { return "" }

func (*listModel) Required() bool { return true }

func (m *listModel) Children() []Node {
	out := make([]Node, len(m.children))
	copy(out, m.children)
	return out
}

func (m *listModel) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	ok := true
	result := make([]any, 0, len(m.children))
	for i, child := range m.children {
		bok, out := callNode(ctx, child, input, label.Child(Name(strconv.Itoa(i))), rec)
		switch {
		case bok:
			result = append(result, out)
		case child.Required():
			result = append(result, out)
			ok = false
		}
	}
	return ok, result
}

func (m *listModel) stats(required bool) (int, int) {
	var leaves, req int
	for _, child := range m.children {
		l, r := child.stats(required)
		leaves += l
		req += r
	}
	return leaves, req
}

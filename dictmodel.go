package chainz

import "context"

// dictModel hands the same input to every keyed branch independently and
// assembles the successful results into a map. Branching never
// short-circuits: every branch runs no matter what the others did.
//
// A failing required branch poisons the composite (it reports failure) but
// its default still occupies the branch's slot. A failing optional branch is
// omitted from the result entirely - it is treated as "didn't happen".
//
// Branch failure labels extend the current path with the branch key.
type dictModel struct {
	keys     []Name
	children []Node
}

// ModelOf declares keyed parallel branches. Branch order follows the sorted
// keys so that execution and failure ordering are deterministic. A plain
// map[string]any element inside a chain structure is shorthand for ModelOf.
//
//	chainz.New("profile", chainz.ModelOf(map[string]any{
//	    "name":  extractName,
//	    "email": chainz.Optional(extractEmail),
//	}))
func ModelOf(branches map[string]any) Element {
	return Element{kind: elemModel, branches: branches}
}

func (*dictModel) Kind() NodeKind { return KindDictModel }

func (*dictModel) Segment() Name { return "" }

func (*dictModel) Required() bool { return true }

func (d *dictModel) Children() []Node {
	out := make([]Node, len(d.children))
	copy(out, d.children)
	return out
}

func (d *dictModel) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	ok := true
	result := make(map[string]any, len(d.children))
	for i, child := range d.children {
		key := d.keys[i]
		bok, out := callNode(ctx, child, input, label.Child(key), rec)
		switch {
		case bok:
			result[key] = out
		case child.Required():
			result[key] = out
			ok = false
		}
	}
	return ok, result
}

func (d *dictModel) stats(required bool) (int, int) {
	var leaves, req int
	for _, child := range d.children {
		l, r := child.stats(required)
		leaves += l
		req += r
	}
	return leaves, req
}

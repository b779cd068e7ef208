package chainz

import "strings"

// Label is the path-like identifier attached to failure entries. It is built
// from the chain's root name plus the segment of every node between the root
// and the failure point: leaf names, branch keys, and collection indices.
//
// Nodes never store their own label - only a segment. Labels are materialized
// per call by derivation while the tree is traversed, because segments such
// as a dict branch key or a loop element index only exist in context.
//
// Labels are immutable; Child returns a derived label and never mutates the
// receiver, so sibling branches can derive from the same parent label
// concurrently.
type Label struct {
	root     Name
	segments []Name
}

// RootLabel returns a label with no segments, anchored at a chain name.
func RootLabel(root Name) Label {
	return Label{root: root}
}

// Child derives a new label with one more segment.
func (l Label) Child(segment Name) Label {
	segments := make([]Name, len(l.segments)+1)
	copy(segments, l.segments)
	segments[len(l.segments)] = segment
	return Label{root: l.root, segments: segments}
}

// Root returns the chain name this label is anchored at.
func (l Label) Root() Name {
	return l.root
}

// Segments returns a copy of the label's segments.
func (l Label) Segments() []Name {
	out := make([]Name, len(l.segments))
	copy(out, l.segments)
	return out
}

// String renders the label for failure reports: the root name, a slash, and
// the dot-joined segments. A label with no segments renders as the bare root:
//
//	RootLabel("avg")                        // "avg"
//	RootLabel("avg").Child("2").Child("float") // "avg/2.float"
func (l Label) String() string {
	if len(l.segments) == 0 {
		return l.root
	}
	var b strings.Builder
	b.Grow(len(l.root) + 1 + 8*len(l.segments))
	b.WriteString(l.root)
	b.WriteByte('/')
	for i, seg := range l.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

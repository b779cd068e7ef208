package chainz

import (
	"context"
	"strconv"
	"time"

	"github.com/zoobzio/capitan"
)

// loop applies its single child to every element of an iterable input,
// producing a lazily evaluated Seq. Constructing the output runs nothing;
// only a downstream consumer iterating the sequence triggers per-element
// execution and, therefore, per-element failure recording. Consumers that
// stop early leave the remaining elements unexecuted.
//
// A non-iterable input is a structural failure: recorded fatal, the loop
// fails. Per-element failures are recorded individually (label extended with
// the element index) but silently skipped from the output - they leave no
// default in the sequence, they are just absent. The loop itself stays
// successful even if every element fails; an empty output is a valid
// success outcome.
type loop struct {
	child Node
}

func (*loop) Kind() NodeKind { return KindLoop }

func (*loop) Segment() Name { return "" }

func (*loop) Required() bool { return true }

func (l *loop) Children() []Node { return []Node{l.child} }

func (l *loop) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	src, ok := iterate(input)
	if !ok {
		rec.recordStructural(label, input, ErrNotIterable)
		capitan.Warn(ctx, SignalLoopNotIterable,
			FieldChain.Field(label.Root()),
			FieldSource.Field(label.String()),
			FieldTimestamp.Field(float64(time.Now().Unix())),
		)
		return false, nil
	}
	out := Seq(func(yield func(any) bool) {
		i := 0
		for item := range src {
			eok, v := callNode(ctx, l.child, item, label.Child(Name(strconv.Itoa(i))), rec)
			i++
			if !eok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	})
	return true, out
}

func (l *loop) stats(required bool) (int, int) {
	return l.child.stats(required)
}

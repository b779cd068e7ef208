package chainz

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Leaf wraps a single callable as a pipeline node. A leaf either returns the
// callable's result, or - on any error or panic - records one Failure entry
// and returns its default value. Errors never escape a leaf.
//
// The recorded entry carries the leaf's label (current path plus the leaf's
// segment), the input that caused the failure, the captured error, and a
// fatal flag equal to the leaf's required flag.
//
// A leaf may also delegate to a pre-built node (see Embed), which makes
// nesting one chain inside another transparent.
type Leaf struct {
	fn             Func
	target         Node // non-nil when delegating to a pre-built node
	name           Name
	required       bool
	defaultValue   any
	defaultFactory func() any
}

// Apply wraps a callable as a leaf node with the given name. The name becomes
// the leaf's label segment in failure reports.
//
// Example:
//
//	parse := chainz.Apply("parse_json", func(_ context.Context, v any) (any, error) {
//	    var data Data
//	    err := json.Unmarshal([]byte(v.(string)), &data)
//	    return data, err
//	})
func Apply(name Name, fn Func) *Leaf {
	return &Leaf{fn: fn, name: name, required: true}
}

// From lifts a typed function that cannot fail into a leaf. The leaf still
// guards against panics and against inputs of the wrong dynamic type, both of
// which are recorded as failures rather than propagated.
//
// Example:
//
//	double := chainz.From("double", func(n int) int { return n * 2 })
func From[I, O any](name Name, fn func(I) O) *Leaf {
	return Apply(name, func(_ context.Context, input any) (any, error) {
		typed, err := convert[I](input)
		if err != nil {
			return nil, err
		}
		return fn(typed), nil
	})
}

// FromErr lifts a typed function that may fail into a leaf.
//
// Example:
//
//	toFloat := chainz.FromErr("float", func(s string) (float64, error) {
//	    return strconv.ParseFloat(s, 64)
//	})
func FromErr[I, O any](name Name, fn func(I) (O, error)) *Leaf {
	return Apply(name, func(_ context.Context, input any) (any, error) {
		typed, err := convert[I](input)
		if err != nil {
			return nil, err
		}
		return fn(typed)
	})
}

// Embed wraps a pre-built node as a leaf, delegating calls directly to it.
// Failures inside the embedded node keep their own labels, nested under this
// leaf's name. New uses Embed to drop one chain into another.
func Embed(name Name, n Node) *Leaf {
	return &Leaf{target: n, name: name, required: true}
}

func convert[I any](input any) (I, error) {
	typed, ok := input.(I)
	if !ok && input != nil {
		var zero I
		return zero, fmt.Errorf("expected %T, received %T", zero, input)
	}
	return typed, nil
}

// Kind implements Node.
func (*Leaf) Kind() NodeKind { return KindLeaf }

// Segment implements Node, returning the leaf's name.
func (l *Leaf) Segment() Name { return l.name }

// Required implements Node.
func (l *Leaf) Required() bool { return l.required }

// Children implements Node. A delegating leaf exposes its target.
func (l *Leaf) Children() []Node {
	if l.target != nil {
		return []Node{l.target}
	}
	return nil
}

// Default returns the value substituted when the leaf fails: the factory's
// product if one is set, else the default value, else nil.
func (l *Leaf) Default() any {
	if l.defaultFactory != nil {
		return l.defaultFactory()
	}
	return l.defaultValue
}

func (l *Leaf) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	if l.target != nil {
		return callNode(ctx, l.target, input, label, rec)
	}
	out, err := l.invoke(ctx, input)
	if err != nil {
		rec.Record(label, input, err, l.required)
		rec.observe(l, false)
		return false, l.Default()
	}
	rec.observe(l, true)
	return true, out
}

// invoke runs the callable, converting a panic into an error so that no
// failure signal other than an error exists past this point.
func (l *Leaf) invoke(ctx context.Context, input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.fn(ctx, input)
}

func (l *Leaf) stats(required bool) (int, int) {
	if l.target != nil {
		return l.target.stats(required && l.required)
	}
	if required && l.required {
		return 1, 1
	}
	return 1, 0
}

// funcName derives a default label segment from a callable's qualified name,
// used when a bare function is chained without an explicit name.
func funcName(fn any) Name {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return "func"
	}
	return name
}

package chainz

import "context"

// Option is a reserved marker inside a chain structure that applies to the
// next element. Markers compose: "Each, Maybe, fn" declares an optional
// item-wise step.
type Option string

// Option markers.
const (
	// Each wraps the next element in an item-wise loop: the element is
	// applied to every item of an iterable input and the results form a lazy
	// Seq (see Apply and the package example).
	Each Option = "*"

	// Maybe makes the next element optional: its failure is absorbed by the
	// enclosing structure instead of stopping it.
	Maybe Option = "?"
)

// option is the single override wrapper behind Optional, Required, Named,
// Defaulted, and DefaultedBy. It carries an override record plus the wrapped
// node and alters exactly the overridden properties, leaving the inner call
// logic untouched. Overrides compose by nesting.
type option struct {
	inner          Node
	name           Name
	required       *bool
	defaultValue   any
	defaultFactory func() any
	hasDefault     bool
}

// Optional marks an element as allowed to fail: parents absorb its failure
// instead of stopping. In a Serial sequence the next step receives the input
// the optional step received; in ModelOf/GroupOf the branch's slot is
// omitted from the result.
func Optional(element any) Element {
	required := false
	return Element{kind: elemOption, inner: element, required: &required}
}

// Required marks an element as mandatory, undoing an inherited Optional.
// Failure of a required element stops the enclosing structure.
func Required(element any) Element {
	required := true
	return Element{kind: elemOption, inner: element, required: &required}
}

// Named overrides the label segment under which an element's failures are
// reported.
func Named(name Name, element any) Element {
	return Element{kind: elemOption, inner: element, name: name}
}

// Defaulted overrides the value returned when the element fails.
func Defaulted(element any, value any) Element {
	return Element{kind: elemOption, inner: element, defaultValue: value, hasDefault: true}
}

// DefaultedBy overrides the fallback with a factory, for defaults that must
// be freshly allocated per failure. A factory takes precedence over a plain
// default value.
func DefaultedBy(element any, factory func() any) Element {
	return Element{kind: elemOption, inner: element, defaultFactory: factory, hasDefault: true}
}

// Kind is transparent: an option node reports the wrapped node's variant.
func (o *option) Kind() NodeKind { return o.inner.Kind() }

func (o *option) Segment() Name {
	if o.name != "" {
		return o.name
	}
	return o.inner.Segment()
}

func (o *option) Required() bool {
	if o.required != nil {
		return *o.required
	}
	return o.inner.Required()
}

func (o *option) Children() []Node { return o.inner.Children() }

func (o *option) call(ctx context.Context, input any, label Label, rec Recorder) (bool, any) {
	if o.required != nil {
		// Severity cascades to everything recorded beneath the override.
		rec = rec.withSeverity(*o.required)
	}
	ok, out := o.inner.call(ctx, input, label, rec)
	if !ok && o.hasDefault {
		if o.defaultFactory != nil {
			return false, o.defaultFactory()
		}
		return false, o.defaultValue
	}
	return ok, out
}

func (o *option) stats(required bool) (int, int) {
	return o.inner.stats(required && o.Required())
}

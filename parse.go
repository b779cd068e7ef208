package chainz

import (
	"context"
	"fmt"
	"sort"
)

// Element is an opaque declarative building block produced by Serial,
// GroupOf, ModelOf, MatchOf, and the override constructors. Elements carry
// structure only; the node tree is built from them exactly once, when New
// parses the chain.
type Element struct {
	kind           elemKind
	items          []any
	branches       map[string]any
	inner          any
	name           Name
	required       *bool
	defaultValue   any
	defaultFactory func() any
	hasDefault     bool
}

type elemKind uint8

const (
	elemSerial elemKind = iota
	elemGroup
	elemModel
	elemMatch
	elemOption
)

// parse resolves one declarative element into a node. Any structure may nest
// inside any other to unbounded depth; all structural validation happens
// here, at construction time, never during calls.
//
// Accepted elements:
//   - Element values from Serial, GroupOf, ModelOf, MatchOf, and overrides
//   - any Node (a *Leaf, Pass, or a tree built by another parse)
//   - a *Chain, embedded transparently under its own name
//   - callables: Func, func(context.Context, any) (any, error),
//     func(any) (any, error), func(any) any - named by their qualified
//     function name unless wrapped in Named
//   - map[string]any (shorthand for ModelOf) and []any (shorthand for
//     GroupOf)
func parse(obj any) (Node, error) {
	switch v := obj.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil element", ErrUnchainable)
	case Element:
		return parseElement(v)
	case Option:
		return nil, fmt.Errorf("%w: option %q outside a sequence", ErrBadOption, string(v))
	case Node:
		return v, nil
	case *Chain:
		if v == nil {
			return nil, fmt.Errorf("%w: nil chain", ErrUnchainable)
		}
		return Embed(v.name, v.root), nil
	case Func:
		return Apply(funcName(v), v), nil
	case func(context.Context, any) (any, error):
		return Apply(funcName(v), Func(v)), nil
	case func(any) (any, error):
		return Apply(funcName(v), func(_ context.Context, input any) (any, error) {
			return v(input)
		}), nil
	case func(any) any:
		return Apply(funcName(v), func(_ context.Context, input any) (any, error) {
			return v(input), nil
		}), nil
	case map[string]any:
		return parseModel(v)
	case []any:
		return parseGroup(v)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrUnchainable, obj)
	}
}

func parseElement(e Element) (Node, error) {
	switch e.kind {
	case elemSerial:
		return parseSequence(e.items)
	case elemGroup:
		return parseGroup(e.items)
	case elemModel:
		return parseModel(e.branches)
	case elemMatch:
		return parseMatch(e.items)
	case elemOption:
		inner, err := parse(e.inner)
		if err != nil {
			return nil, err
		}
		return &option{
			inner:          inner,
			name:           e.name,
			required:       e.required,
			defaultValue:   e.defaultValue,
			defaultFactory: e.defaultFactory,
			hasDefault:     e.hasDefault,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown element kind %d", ErrUnchainable, e.kind)
	}
}

// parseSequence consumes a flat element stream, applying option markers to
// the next parsed element. A single-element sequence collapses to the
// element's node.
func parseSequence(items []any) (Node, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: sequence has no elements", ErrEmptyStructure)
	}
	var children []Node
	var each, maybe bool
	for _, item := range items {
		if opt, ok := item.(Option); ok {
			switch opt {
			case Each:
				if each {
					return nil, fmt.Errorf("%w: duplicate %q", ErrBadOption, string(opt))
				}
				each = true
			case Maybe:
				if maybe {
					return nil, fmt.Errorf("%w: duplicate %q", ErrBadOption, string(opt))
				}
				maybe = true
			default:
				return nil, fmt.Errorf("%w: unknown option %q", ErrBadOption, string(opt))
			}
			continue
		}
		node, err := parse(item)
		if err != nil {
			return nil, err
		}
		if each {
			node = &loop{child: node}
		}
		if maybe {
			required := false
			node = &option{inner: node, required: &required}
		}
		each, maybe = false, false
		children = append(children, node)
	}
	if each || maybe {
		return nil, fmt.Errorf("%w: trailing option marker", ErrBadOption)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &sequence{children: children}, nil
}

func parseGroup(items []any) (Node, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: group has no branches", ErrEmptyStructure)
	}
	children := make([]Node, len(items))
	for i, item := range items {
		node, err := parse(item)
		if err != nil {
			return nil, err
		}
		children[i] = node
	}
	return &listModel{children: children}, nil
}

func parseModel(branches map[string]any) (Node, error) {
	if len(branches) == 0 {
		return nil, fmt.Errorf("%w: model has no branches", ErrEmptyStructure)
	}
	keys := make([]Name, 0, len(branches))
	for key := range branches {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	children := make([]Node, len(keys))
	for i, key := range keys {
		node, err := parse(branches[key])
		if err != nil {
			return nil, err
		}
		children[i] = node
	}
	return &dictModel{keys: keys, children: children}, nil
}

func parseMatch(items []any) (Node, error) {
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: received %d", ErrMatchTooFew, len(items))
	}
	children := make([]Node, len(items))
	for i, item := range items {
		node, err := parse(item)
		if err != nil {
			return nil, err
		}
		children[i] = node
	}
	return &matchNode{children: children}, nil
}

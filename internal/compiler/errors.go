package compiler

import (
	"fmt"
	"strings"

	"github.com/hanpama/shapeql/internal/shape"
)

// Error reports a malformed Shape Tree node.
type Error struct {
	// Path is the dotted field path of the offending node; "[]" marks an
	// array element template. Empty for the root.
	Path string
	// Kind is the observed kind of the offending node.
	Kind string
	// Reason describes what is wrong.
	Reason string
}

func (e *Error) Error() string {
	where := e.Path
	if where == "" {
		where = "<root>"
	}
	return fmt.Sprintf("shape: %s (%s): %s", where, e.Kind, e.Reason)
}

type path []string

func (p path) child(name string) path {
	out := make(path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

func (p path) elem() path { return p.child("[]") }

func (p path) String() string {
	var b strings.Builder
	for i, el := range p {
		if i > 0 && el != "[]" {
			b.WriteByte('.')
		}
		b.WriteString(el)
	}
	return b.String()
}

func errorf(p path, kind, format string, args ...any) *Error {
	return &Error{Path: p.String(), Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func kindOf(n shape.Node) string {
	switch n.(type) {
	case *shape.LeafNode, *shape.ObjectNode, *shape.ArrayNode:
		return n.Kind().String()
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// checkNode validates the parts of n both compilers rely on, without
// descending into children.
func checkNode(p path, n shape.Node) error {
	switch n := n.(type) {
	case *shape.LeafNode:
		if n == nil {
			return errorf(p, "leaf", "nil node")
		}
		if n.Validator == nil {
			return errorf(p, "leaf", "leaf has no validator")
		}
	case *shape.ObjectNode:
		if n == nil {
			return errorf(p, "object", "nil node")
		}
		if len(n.Fields) == 0 {
			return errorf(p, "object", "empty selection set")
		}
		seen := make(map[string]struct{}, len(n.Fields))
		for _, f := range n.Fields {
			if !isName(f.Name) {
				return errorf(p.child(f.Name), kindOf(f.Node), "invalid field name %q", f.Name)
			}
			if _, dup := seen[f.Name]; dup {
				return errorf(p.child(f.Name), kindOf(f.Node), "duplicate field %q", f.Name)
			}
			seen[f.Name] = struct{}{}
		}
	case *shape.ArrayNode:
		if n == nil {
			return errorf(p, "array", "nil node")
		}
		if n.Elem == nil {
			return errorf(p, "array", "array has no element template")
		}
	case nil:
		return errorf(p, "nil", "missing node")
	default:
		return errorf(p, kindOf(n), "unsupported node type")
	}
	return nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

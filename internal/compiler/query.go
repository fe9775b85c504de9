package compiler

import (
	"strings"

	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shape"
)

// Selection renders the selection set body of obj: its fields separated by
// single spaces, without the enclosing braces.
func Selection(obj *shape.ObjectNode) (string, error) {
	var b strings.Builder
	if err := writeSelection(&b, nil, obj); err != nil {
		return "", err
	}
	return b.String(), nil
}

// VariableList renders the variable definitions of an operation, e.g.
// "($id: ID!, $first: Int)". An empty set renders as "". Every variable must
// carry a GraphQL type name.
func VariableList(vars shape.Variables) (string, error) {
	if len(vars) == 0 {
		return "", nil
	}
	seen := make(map[string]struct{}, len(vars))
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		p := path{"$" + v.Name}
		if !isName(v.Name) {
			return "", errorf(p, "leaf", "invalid variable name %q", v.Name)
		}
		if _, dup := seen[v.Name]; dup {
			return "", errorf(p, "leaf", "duplicate variable %q", v.Name)
		}
		seen[v.Name] = struct{}{}
		if v.Leaf == nil {
			return "", errorf(p, "nil", "variable has no leaf")
		}
		if v.Leaf.Validator == nil {
			return "", errorf(p, "leaf", "leaf has no validator")
		}
		if v.Leaf.TypeName == "" {
			return "", errorf(p, "leaf", "variable has no type name")
		}
		if _, err := language.ParseType(v.Leaf.TypeName); err != nil {
			return "", errorf(p, "leaf", "invalid type name %q", v.Leaf.TypeName)
		}
		parts = append(parts, "$"+v.Name+": "+v.Leaf.TypeName)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// Document renders a complete query operation:
//
//	query Name($v: T) { selection }
//
// Variables are compiled first, so a missing type name fails before any
// selection text is produced.
func Document(name string, vars shape.Variables, root *shape.ObjectNode) (string, error) {
	if !isName(name) {
		return "", &Error{Kind: "operation", Reason: "invalid operation name " + quote(name)}
	}
	varList, err := VariableList(vars)
	if err != nil {
		return "", err
	}
	if root == nil {
		return "", errorf(nil, "nil", "missing root selection")
	}
	if len(root.Args) > 0 {
		return "", errorf(nil, "object", "root selection cannot take arguments")
	}
	sel, err := Selection(root)
	if err != nil {
		return "", err
	}
	return "query " + name + varList + " { " + sel + " }", nil
}

func writeSelection(b *strings.Builder, p path, obj *shape.ObjectNode) error {
	if err := checkNode(p, obj); err != nil {
		return err
	}
	for i, f := range obj.Fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		if err := writeField(b, p.child(f.Name), f.Name, f.Node); err != nil {
			return err
		}
	}
	return nil
}

func writeField(b *strings.Builder, p path, name string, n shape.Node) error {
	if err := checkNode(p, n); err != nil {
		return err
	}
	b.WriteString(name)
	if err := writeArgs(b, p, n); err != nil {
		return err
	}
	switch n := n.(type) {
	case *shape.ObjectNode:
		b.WriteString(" { ")
		if err := writeSelection(b, p, n); err != nil {
			return err
		}
		b.WriteString(" }")
	case *shape.ArrayNode:
		return writeElem(b, p.elem(), n.Elem)
	}
	return nil
}

// writeElem renders the sub-selection of a list field from its template. A
// list of scalars has none.
func writeElem(b *strings.Builder, p path, elem shape.Node) error {
	if err := checkNode(p, elem); err != nil {
		return err
	}
	if len(elem.Arguments()) > 0 {
		return errorf(p, kindOf(elem), "element template cannot take arguments")
	}
	switch e := elem.(type) {
	case *shape.ObjectNode:
		b.WriteString(" { ")
		if err := writeSelection(b, p, e); err != nil {
			return err
		}
		b.WriteString(" }")
	case *shape.ArrayNode:
		return writeElem(b, p.elem(), e.Elem)
	}
	return nil
}

func writeArgs(b *strings.Builder, p path, n shape.Node) error {
	args := n.Arguments()
	if len(args) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(args))
	b.WriteByte('(')
	for i, a := range args {
		if !isName(a.Name) {
			return errorf(p, kindOf(n), "invalid argument name %q", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return errorf(p, kindOf(n), "duplicate argument %q", a.Name)
		}
		seen[a.Name] = struct{}{}
		if strings.TrimSpace(a.Value) == "" {
			return errorf(p, kindOf(n), "argument %q has no value", a.Name)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name + ": " + a.Value)
	}
	b.WriteByte(')')
	return nil
}

func quote(s string) string { return `"` + s + `"` }

// Package shape defines the Shape Tree: a declarative description of which
// fields a GraphQL query selects and how each response value is validated.
//
// A tree is built from three node kinds. A LeafNode selects one scalar or enum
// field and carries its validator. An ObjectNode selects a nested object and
// lists its child fields in order. An ArrayNode selects a list field and holds
// a single template node that every element of the response list must match.
// Field arguments travel on the node itself, so no field name is reserved.
//
// Builder methods never mutate their receiver; trees are values that can be
// shared freely once built.
package shape

import (
	"slices"

	"github.com/hanpama/shapeql/internal/validate"
)

// Kind identifies a node variant.
type Kind int

const (
	KindLeaf Kind = iota + 1
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Node is implemented by *LeafNode, *ObjectNode and *ArrayNode only.
type Node interface {
	Kind() Kind
	Arguments() []Arg
}

// Arg is a field argument. Value is emitted verbatim into the query text, so
// it is either a variable reference ("$id") or a GraphQL literal ("10",
// "\"text\"", "ADMIN").
type Arg struct {
	Name  string
	Value string
}

// A builds an Arg.
func A(name, value string) Arg { return Arg{Name: name, Value: value} }

// Field is one named child of an ObjectNode.
type Field struct {
	Name string
	Node Node
}

// F builds a Field.
func F(name string, node Node) Field { return Field{Name: name, Node: node} }

// LeafNode selects a scalar or enum field.
type LeafNode struct {
	Validator validate.Validator
	// TypeName is the GraphQL type used when the leaf declares a variable,
	// e.g. "ID!" or "[String!]". Empty for leaves used only as fields.
	TypeName string
	Args     []Arg
}

// Leaf wraps a validator as a leaf node.
func Leaf(v validate.Validator) *LeafNode { return &LeafNode{Validator: v} }

// Named wraps a validator as a leaf node carrying a GraphQL type name.
func Named(typeName string, v validate.Validator) *LeafNode {
	return &LeafNode{Validator: v, TypeName: typeName}
}

func (l *LeafNode) Kind() Kind       { return KindLeaf }
func (l *LeafNode) Arguments() []Arg { return l.Args }

// As returns a copy of l with the GraphQL type name set.
func (l *LeafNode) As(typeName string) *LeafNode {
	c := *l
	c.TypeName = typeName
	return &c
}

// WithArgs returns a copy of l selecting the field with args.
func (l *LeafNode) WithArgs(args ...Arg) *LeafNode {
	c := *l
	c.Args = slices.Clone(args)
	return &c
}

// ObjectNode selects a nested object.
type ObjectNode struct {
	Fields   []Field
	Args     []Arg
	Nullable bool
}

// Object builds an object node with fields in the given order.
func Object(fields ...Field) *ObjectNode { return &ObjectNode{Fields: slices.Clone(fields)} }

func (o *ObjectNode) Kind() Kind       { return KindObject }
func (o *ObjectNode) Arguments() []Arg { return o.Args }

// WithArgs returns a copy of o selecting the field with args.
func (o *ObjectNode) WithArgs(args ...Arg) *ObjectNode {
	c := *o
	c.Args = slices.Clone(args)
	return &c
}

// OrNull returns a copy of o that also accepts a null response value.
func (o *ObjectNode) OrNull() *ObjectNode {
	c := *o
	c.Nullable = true
	return &c
}

// Lookup returns the child named name.
func (o *ObjectNode) Lookup(name string) (Node, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Node, true
		}
	}
	return nil, false
}

// ArrayNode selects a list field. Elem is the template every element of the
// response list is matched against.
type ArrayNode struct {
	Elem     Node
	Args     []Arg
	Nullable bool
}

// Array builds an array node from its element template.
func Array(elem Node) *ArrayNode { return &ArrayNode{Elem: elem} }

func (a *ArrayNode) Kind() Kind       { return KindArray }
func (a *ArrayNode) Arguments() []Arg { return a.Args }

// WithArgs returns a copy of a selecting the field with args.
func (a *ArrayNode) WithArgs(args ...Arg) *ArrayNode {
	c := *a
	c.Args = slices.Clone(args)
	return &c
}

// OrNull returns a copy of a that also accepts a null response value.
func (a *ArrayNode) OrNull() *ArrayNode {
	c := *a
	c.Nullable = true
	return &c
}

// Var declares one operation variable.
type Var struct {
	Name string
	Leaf *LeafNode
}

// V builds a Var.
func V(name string, leaf *LeafNode) Var { return Var{Name: name, Leaf: leaf} }

// Variables is an ordered variable set. Declaration order is the order of
// the rendered variable list.
type Variables []Var

// Lookup returns the leaf declared for name.
func (vs Variables) Lookup(name string) (*LeafNode, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v.Leaf, true
		}
	}
	return nil, false
}

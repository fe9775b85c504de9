// Package shapefile reads Shape Trees from YAML documents:
//
//	operation: UserFavourites
//	enums:
//	  MediaType: [ANIME, MANGA]
//	scalars: [Json]
//	variables:
//	  userId: ID!
//	  type: MediaType
//	query:
//	  User:
//	    _args: {id: $userId}
//	    id: Int!
//	    name: String
//	    favourites:
//	      - _args: {type: $type}
//	        media:
//	          title: String
//
// Mapping key order is the field order. A scalar value is a GraphQL type
// expression and becomes a leaf; a mapping becomes an object; a one-element
// sequence becomes an array whose element is the template. Two keys are
// reserved inside mappings: _args lists the field arguments (emitted
// verbatim) and _nullable: true accepts a null object. In an array template
// both apply to the list field itself.
//
// Type names resolve to the built-in scalars, the declared enums, or the
// declared custom scalars (which accept any non-null value).
package shapefile

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shape"
	"github.com/hanpama/shapeql/internal/validate"
)

const (
	argsKey     = "_args"
	nullableKey = "_nullable"
)

// Document is a decoded shape file.
type Document struct {
	Operation string
	Variables shape.Variables
	Root      *shape.ObjectNode
}

type file struct {
	Operation string              `yaml:"operation"`
	Enums     map[string][]string `yaml:"enums"`
	Scalars   []string            `yaml:"scalars"`
	Variables yaml.Node           `yaml:"variables"`
	Query     yaml.Node           `yaml:"query"`
}

// Load reads and parses the shape file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a shape document.
func Parse(data []byte) (*Document, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("shapefile: %w", err)
	}
	if f.Operation == "" {
		return nil, fmt.Errorf("shapefile: missing operation")
	}
	if f.Query.Kind == 0 {
		return nil, fmt.Errorf("shapefile: missing query")
	}
	t := &Types{Enums: f.Enums, Scalars: f.Scalars}
	b := builder{types: t}

	vars, err := b.variables(&f.Variables)
	if err != nil {
		return nil, err
	}
	root, err := b.object(&f.Query)
	if err != nil {
		return nil, err
	}
	return &Document{Operation: f.Operation, Variables: vars, Root: root}, nil
}

// Types resolves GraphQL type expressions to validators.
type Types struct {
	Enums   map[string][]string
	Scalars []string
}

// Validator returns the validator for a type expression such as "[ID!]!".
// Nullable positions accept null.
func (t *Types) Validator(expr string) (validate.Validator, error) {
	typ, err := language.ParseType(expr)
	if err != nil {
		return nil, err
	}
	return t.fromAST(typ)
}

func (t *Types) fromAST(typ *language.Type) (validate.Validator, error) {
	var v validate.Validator
	if typ.Elem != nil {
		inner, err := t.fromAST(typ.Elem)
		if err != nil {
			return nil, err
		}
		v = validate.List(inner)
	} else {
		switch name := typ.NamedType; name {
		case "String":
			v = validate.String()
		case "Int":
			v = validate.Int()
		case "Float":
			v = validate.Float()
		case "Boolean":
			v = validate.Boolean()
		case "ID":
			v = validate.ID()
		default:
			if values, ok := t.Enums[name]; ok {
				v = validate.Enum(values...)
			} else if slices.Contains(t.Scalars, name) {
				v = validate.Any()
			} else {
				return nil, fmt.Errorf("unknown type %q", name)
			}
		}
	}
	if !typ.NonNull {
		v = validate.Nullable(v)
	}
	return v, nil
}

type builder struct {
	types *Types
}

func errorAt(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("shapefile: line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (b builder) variables(n *yaml.Node) (shape.Variables, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "variables must be a mapping")
	}
	var vars shape.Variables
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		leaf, err := b.leaf(v)
		if err != nil {
			return nil, err
		}
		vars = append(vars, shape.V(k.Value, leaf))
	}
	return vars, nil
}

func (b builder) node(n *yaml.Node) (shape.Node, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return b.leaf(n)
	case yaml.MappingNode:
		return b.object(n)
	case yaml.SequenceNode:
		return b.array(n)
	default:
		return nil, errorAt(n, "unsupported YAML node")
	}
}

func (b builder) leaf(n *yaml.Node) (*shape.LeafNode, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errorAt(n, "expected a type name")
	}
	v, err := b.types.Validator(n.Value)
	if err != nil {
		return nil, errorAt(n, "%v", err)
	}
	return shape.Named(n.Value, v), nil
}

func (b builder) object(n *yaml.Node) (*shape.ObjectNode, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "expected a mapping")
	}
	obj := &shape.ObjectNode{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		switch k.Value {
		case argsKey:
			args, err := b.args(v)
			if err != nil {
				return nil, err
			}
			obj.Args = args
		case nullableKey:
			if err := v.Decode(&obj.Nullable); err != nil {
				return nil, errorAt(v, "%s must be a boolean", nullableKey)
			}
		default:
			child, err := b.node(v)
			if err != nil {
				return nil, err
			}
			obj.Fields = append(obj.Fields, shape.F(k.Value, child))
		}
	}
	return obj, nil
}

func (b builder) array(n *yaml.Node) (*shape.ArrayNode, error) {
	if len(n.Content) != 1 {
		return nil, errorAt(n, "array must hold exactly one template, got %d", len(n.Content))
	}
	elem, err := b.node(n.Content[0])
	if err != nil {
		return nil, err
	}
	arr := &shape.ArrayNode{Elem: elem}
	if obj, ok := elem.(*shape.ObjectNode); ok {
		arr.Args, arr.Nullable = obj.Args, obj.Nullable
		obj.Args, obj.Nullable = nil, false
	}
	return arr, nil
}

func (b builder) args(n *yaml.Node) ([]shape.Arg, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorAt(n, "%s must be a mapping", argsKey)
	}
	var args []shape.Arg
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], resolve(n.Content[i+1])
		if v.Kind != yaml.ScalarNode {
			return nil, errorAt(v, "argument %q must be a scalar", k.Value)
		}
		args = append(args, shape.A(k.Value, v.Value))
	}
	return args, nil
}

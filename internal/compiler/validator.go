package compiler

import (
	"github.com/hanpama/shapeql/internal/shape"
	"github.com/hanpama/shapeql/internal/validate"
)

// Option configures the validator compiler.
type Option func(*options)

type options struct {
	strict bool
}

// Strict makes compiled object validators reject response keys the tree does
// not select. The default tolerates and drops them.
func Strict() Option { return func(o *options) { o.strict = true } }

// Validator compiles n into a validator mirroring its structure: leaves keep
// their own validator, objects become object validators over their fields and
// arrays validate every element against their template.
func Validator(n shape.Node, opts ...Option) (validate.Validator, error) {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return compileValidator(nil, n, &o)
}

func compileValidator(p path, n shape.Node, o *options) (validate.Validator, error) {
	if err := checkNode(p, n); err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case *shape.LeafNode:
		return n.Validator, nil
	case *shape.ObjectNode:
		fields := make([]validate.Field, 0, len(n.Fields))
		for _, f := range n.Fields {
			v, err := compileValidator(p.child(f.Name), f.Node, o)
			if err != nil {
				return nil, err
			}
			fields = append(fields, validate.Field{Name: f.Name, Validator: v})
		}
		var objOpts []validate.ObjectOption
		if o.strict {
			objOpts = append(objOpts, validate.Strict())
		}
		return nullable(validate.Object(fields, objOpts...), n.Nullable), nil
	case *shape.ArrayNode:
		elem, err := compileValidator(p.elem(), n.Elem, o)
		if err != nil {
			return nil, err
		}
		return nullable(validate.List(elem), n.Nullable), nil
	}
	// unreachable: checkNode rejects every other type
	return nil, errorf(p, kindOf(n), "unsupported node type")
}

func nullable(v validate.Validator, ok bool) validate.Validator {
	if ok {
		return validate.Nullable(v)
	}
	return v
}

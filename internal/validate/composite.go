package validate

import (
	"context"
	"slices"
)

// Field pairs a response key with the validator for its value.
type Field struct {
	Name      string
	Validator Validator
}

// ObjectOption configures an object validator.
type ObjectOption func(*object)

// Strict makes the object validator reject keys it does not declare. By
// default unknown keys are tolerated and dropped from the output.
func Strict() ObjectOption { return func(o *object) { o.strict = true } }

type object struct {
	fields []Field
	strict bool
}

// Object validates a JSON object whose declared keys satisfy their field
// validators. Absent keys are validated as null. The output holds exactly the
// declared keys.
func Object(fields []Field, opts ...ObjectOption) Validator {
	o := &object{fields: slices.Clone(fields)}
	for _, f := range opts {
		f(o)
	}
	return o
}

func (o *object) Validate(ctx context.Context, value any) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, issue(CodeInvalidType, "expected object, received %s", received(value))
	}
	var errs Issues
	out := make(map[string]any, len(o.fields))
	for _, f := range o.fields {
		v, err := f.Validator.Validate(ctx, m[f.Name])
		if err != nil {
			errs = append(errs, Prefix(f.Name, err)...)
			continue
		}
		out[f.Name] = v
	}
	if o.strict {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !o.declares(k) {
				errs = append(errs, Issue{Path: Path{k}, Code: CodeUnknownKey, Message: "unrecognized key " + k})
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func (o *object) declares(name string) bool {
	for _, f := range o.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

type list struct{ elem Validator }

// List validates a JSON array whose every element satisfies elem.
func List(elem Validator) Validator { return list{elem: elem} }

func (l list) Validate(ctx context.Context, value any) (any, error) {
	arr, ok := value.([]any)
	if !ok {
		return nil, issue(CodeInvalidType, "expected array, received %s", received(value))
	}
	var errs Issues
	out := make([]any, len(arr))
	for i, item := range arr {
		v, err := l.elem.Validate(ctx, item)
		if err != nil {
			errs = append(errs, Prefix(i, err)...)
			continue
		}
		out[i] = v
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

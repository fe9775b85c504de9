// Package validate provides the validators that check and coerce decoded
// GraphQL response values. Leaf validators cover the built-in scalars and
// enums; Object and List compose them into the shape of a selection set.
//
// Inputs are values as produced by encoding/json decoding into any: nil,
// bool, float64 or json.Number, string, []any and map[string]any. Decoders
// should use UseNumber so large integer IDs survive intact. Validators return
// the coerced output, which may differ from the input (Int yields int, ID
// yields string), or an Issues error.
package validate

import (
	"context"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Validator checks a decoded value and returns its coerced form.
//
// Implementations must be safe for concurrent use and must not mutate value.
// ctx is passed through for validators that consult external state; the
// built-in ones ignore it.
type Validator interface {
	Validate(ctx context.Context, value any) (any, error)
}

// Func adapts a function to the Validator interface.
type Func func(ctx context.Context, value any) (any, error)

func (f Func) Validate(ctx context.Context, value any) (any, error) { return f(ctx, value) }

type scalar struct {
	name   string
	coerce func(any) (any, bool)
}

func (s scalar) Validate(_ context.Context, value any) (any, error) {
	if out, ok := s.coerce(value); ok {
		return out, nil
	}
	return nil, issue(CodeInvalidType, "expected %s, received %s", s.name, received(value))
}

func (s scalar) String() string { return s.name }

// String accepts JSON strings only.
func String() Validator {
	return scalar{name: "string", coerce: func(v any) (any, bool) {
		s, ok := v.(string)
		return s, ok
	}}
}

// Int accepts integral numbers within the signed 32-bit range of GraphQL Int
// and yields int.
func Int() Validator { return intScalar{} }

type intScalar struct{}

func (intScalar) Validate(_ context.Context, value any) (any, error) {
	n, ok, overflow := integral(value)
	switch {
	case overflow, ok && (n < math.MinInt32 || n > math.MaxInt32):
		return nil, issue(CodeInvalidType, "integer %v out of 32-bit range", value)
	case !ok:
		return nil, issue(CodeInvalidType, "expected integer, received %s", received(value))
	}
	return int(n), nil
}

func (intScalar) String() string { return "integer" }

// Float accepts any number and yields float64.
func Float() Validator { return scalar{name: "number", coerce: coerceToFloat} }

// Boolean accepts JSON booleans only.
func Boolean() Validator {
	return scalar{name: "boolean", coerce: func(v any) (any, bool) {
		b, ok := v.(bool)
		return b, ok
	}}
}

// ID accepts strings and integral numbers and yields string, matching the
// GraphQL ID serialization rules.
func ID() Validator { return scalar{name: "ID", coerce: coerceToID} }

// Any accepts every non-null value unchanged. Custom scalars without a more
// specific validator use it.
func Any() Validator {
	return scalar{name: "value", coerce: func(v any) (any, bool) { return v, v != nil }}
}

type enum struct{ values []string }

// Enum accepts one of the given symbolic names.
func Enum(values ...string) Validator { return enum{values: slices.Clone(values)} }

func (e enum) Validate(_ context.Context, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, issue(CodeInvalidType, "expected enum, received %s", received(value))
	}
	if !slices.Contains(e.values, s) {
		return nil, issue(CodeInvalidEnum, "invalid enum value %q, expected one of %v", s, e.values)
	}
	return s, nil
}

type nullable struct{ inner Validator }

// Nullable lets null through and validates every other value with inner.
func Nullable(inner Validator) Validator {
	if n, ok := inner.(nullable); ok {
		return n
	}
	return nullable{inner: inner}
}

func (n nullable) Validate(ctx context.Context, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return n.inner.Validate(ctx, value)
}

// integral reports value as an int64 when it is a whole number. overflow is
// set for whole numbers that do not fit in int64.
func integral(value any) (n int64, ok, overflow bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true, false
	case int32:
		return int64(v), true, false
	case int64:
		return v, true, false
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true, false
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false, false
		}
		return integral(f)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false, false
		}
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false, true
		}
		return int64(v), true, false
	}
	return 0, false, false
}

func coerceToFloat(value any) (any, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return nil, false
}

func coerceToID(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case json.Number:
		if isIntegerLiteral(string(v)) {
			return string(v), true
		}
		f, err := v.Float64()
		if err != nil {
			return nil, false
		}
		return coerceToID(f)
	case float64:
		if math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, false
		}
		return strconv.FormatFloat(v, 'f', 0, 64), true
	}
	return nil, false
}

// isIntegerLiteral reports whether s is an optionally signed run of digits.
func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

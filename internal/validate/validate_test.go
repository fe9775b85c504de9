package validate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestScalars(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		v       Validator
		in      any
		want    any
		wantErr string
	}{
		{"string ok", String(), "x", "x", ""},
		{"string rejects number", String(), 1.0, nil, "expected string, received number"},
		{"string rejects null", String(), nil, nil, "expected string, received null"},
		{"int from float", Int(), 3.0, 3, ""},
		{"int rejects fraction", Int(), 3.5, nil, "expected integer"},
		{"int from json number", Int(), json.Number("42"), 42, ""},
		{"int at 32-bit bounds", Int(), -2147483648.0, -2147483648, ""},
		{"int above 32-bit range", Int(), 3000000000.0, nil, "integer 3e+09 out of 32-bit range"},
		{"int above 64-bit range", Int(), 1e20, nil, "out of 32-bit range"},
		{"int json number out of range", Int(), json.Number("12345678901234567891"), nil, "integer 12345678901234567891 out of 32-bit range"},
		{"int64 out of range", Int(), int64(1 << 40), nil, "out of 32-bit range"},
		{"int rejects json fraction", Int(), json.Number("1.5"), nil, "expected integer, received number"},
		{"float", Float(), 1.0, 1.0, ""},
		{"float from int", Float(), 2, 2.0, ""},
		{"float from json number", Float(), json.Number("2.5"), 2.5, ""},
		{"boolean", Boolean(), true, true, ""},
		{"boolean rejects string", Boolean(), "true", nil, "expected boolean, received string"},
		{"id from string", ID(), "u1", "u1", ""},
		{"id from number", ID(), 42.0, "42", ""},
		{"id keeps large json number", ID(), json.Number("12345678901234567891"), "12345678901234567891", ""},
		{"id from json exponent", ID(), json.Number("1e3"), "1000", ""},
		{"id rejects json fraction", ID(), json.Number("1.5"), nil, "expected ID, received number"},
		{"any", Any(), map[string]any{"k": "v"}, map[string]any{"k": "v"}, ""},
		{"any rejects null", Any(), nil, nil, "received null"},
		{"enum", Enum("ADMIN", "USER"), "USER", "USER", ""},
		{"enum unknown", Enum("ADMIN", "USER"), "ROOT", nil, `invalid enum value "ROOT"`},
		{"nullable null", Nullable(String()), nil, nil, ""},
		{"nullable value", Nullable(Int()), 7.0, 7, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Validate(ctx, tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.wantErr)
				var is Issues
				require.True(t, errors.As(err, &is))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestObjectPermissiveDropsUnknownKeys(t *testing.T) {
	v := Object([]Field{{Name: "a", Validator: Float()}})
	got, err := v.Validate(context.Background(), map[string]any{"a": 1.0, "extra": "x"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": 1.0}, got)
}

func TestObjectStrictRejectsUnknownKeys(t *testing.T) {
	v := Object([]Field{{Name: "a", Validator: Float()}}, Strict())
	_, err := v.Validate(context.Background(), map[string]any{"a": 1.0, "z": 1, "b": 2})
	var is Issues
	require.ErrorAs(t, err, &is)
	want := Issues{
		{Path: Path{"b"}, Code: CodeUnknownKey, Message: "unrecognized key b"},
		{Path: Path{"z"}, Code: CodeUnknownKey, Message: "unrecognized key z"},
	}
	if diff := cmp.Diff(want, is); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedIssuePaths(t *testing.T) {
	v := Object([]Field{{
		Name: "user",
		Validator: Object([]Field{{
			Name:      "friends",
			Validator: List(Object([]Field{{Name: "name", Validator: String()}})),
		}}),
	}})
	in := map[string]any{"user": map[string]any{"friends": []any{
		map[string]any{"name": "ann"},
		map[string]any{"name": 3.0},
		map[string]any{},
	}}}
	_, err := v.Validate(context.Background(), in)
	var is Issues
	require.ErrorAs(t, err, &is)
	require.Len(t, is, 2)
	require.Equal(t, "user.friends[1].name", is[0].Path.String())
	require.Equal(t, "user.friends[2].name", is[1].Path.String())
	require.Contains(t, err.Error(), "2 validation issues")
}

func TestListRejectsNonArray(t *testing.T) {
	_, err := List(String()).Validate(context.Background(), map[string]any{})
	require.EqualError(t, err, "expected array, received object")
}

func TestFuncErrorsBecomeCustomIssues(t *testing.T) {
	failing := Func(func(context.Context, any) (any, error) { return nil, errors.New("nope") })
	_, err := Object([]Field{{Name: "x", Validator: failing}}).Validate(context.Background(), map[string]any{"x": 1.0})
	var is Issues
	require.ErrorAs(t, err, &is)
	require.Equal(t, Issues{{Path: Path{"x"}, Code: CodeCustom, Message: "nope"}}, is)
}

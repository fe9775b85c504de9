package compiler

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shape"
	"github.com/hanpama/shapeql/internal/validate"
)

func str() *shape.LeafNode { return shape.Leaf(validate.String()) }

func TestSelection_FieldOrderFollowsTree(t *testing.T) {
	obj := shape.Object(
		shape.F("zeta", str()),
		shape.F("alpha", str()),
		shape.F("mid", shape.Object(shape.F("b", str()), shape.F("a", str()))),
	)
	got, err := Selection(obj)
	require.NoError(t, err)
	require.Equal(t, "zeta alpha mid { b a }", got)

	again, err := Selection(obj)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestSelection_ObjectArgs(t *testing.T) {
	obj := shape.Object(
		shape.F("name", shape.Object(shape.F("a", str())).
			WithArgs(shape.A("userId", "$userId"), shape.A("type", "$type"))),
	)
	got, err := Selection(obj)
	require.NoError(t, err)
	require.Equal(t, "name(userId: $userId, type: $type) { a }", got)
}

func TestSelection_ArrayTemplate(t *testing.T) {
	obj := shape.Object(
		shape.F("field", shape.Array(shape.Object(
			shape.F("media", shape.Object(shape.F("title", str()))),
		))),
	)
	got, err := Selection(obj)
	require.NoError(t, err)
	require.Equal(t, "field { media { title } }", got)
}

func TestSelection_ArrayVariants(t *testing.T) {
	obj := shape.Object(
		shape.F("tags", shape.Array(str())),
		shape.F("matrix", shape.Array(shape.Array(shape.Object(shape.F("v", str()))))),
		shape.F("page", shape.Array(shape.Object(shape.F("id", str()))).WithArgs(shape.A("first", "10"))),
		shape.F("avatar", str().WithArgs(shape.A("size", "64"))),
	)
	got, err := Selection(obj)
	require.NoError(t, err)
	require.Equal(t, "tags matrix { v } page(first: 10) { id } avatar(size: 64)", got)
}

func TestSelection_FieldNamedArgsIsAField(t *testing.T) {
	got, err := Selection(shape.Object(shape.F("_args", str())))
	require.NoError(t, err)
	require.Equal(t, "_args", got)
}

func TestSelection_Malformed(t *testing.T) {
	var nilLeaf *shape.LeafNode
	tests := []struct {
		name   string
		obj    *shape.ObjectNode
		path   string
		kind   string
		reason string
	}{
		{"empty root", shape.Object(), "", "object", "empty selection set"},
		{"empty child", shape.Object(shape.F("user", shape.Object())), "user", "object", "empty selection set"},
		{"nil child", shape.Object(shape.F("a", nil)), "a", "nil", "missing node"},
		{"typed nil leaf", shape.Object(shape.F("a", nilLeaf)), "a", "leaf", "nil node"},
		{"leaf without validator", shape.Object(shape.F("a", &shape.LeafNode{})), "a", "leaf", "leaf has no validator"},
		{"duplicate", shape.Object(shape.F("a", str()), shape.F("a", str())), "a", "leaf", `duplicate field "a"`},
		{"bad name", shape.Object(shape.F("a-b", str())), "a-b", "leaf", `invalid field name "a-b"`},
		{"array without template", shape.Object(shape.F("xs", &shape.ArrayNode{})), "xs", "array", "array has no element template"},
		{"template args", shape.Object(shape.F("xs", shape.Array(shape.Object(shape.F("a", str())).WithArgs(shape.A("x", "1"))))), "xs[]", "object", "element template cannot take arguments"},
		{"foreign node", shape.Object(shape.F("a", foreignNode{})), "a", "compiler.foreignNode", "unsupported node type"},
		{"empty arg value", shape.Object(shape.F("a", str().WithArgs(shape.A("x", " ")))), "a", "leaf", `argument "x" has no value`},
		{"duplicate arg", shape.Object(shape.F("a", str().WithArgs(shape.A("x", "1"), shape.A("x", "2")))), "a", "leaf", `duplicate argument "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Selection(tt.obj)
			var ce *Error
			require.True(t, errors.As(err, &ce), "got %v", err)
			require.Equal(t, tt.path, ce.Path)
			require.Equal(t, tt.kind, ce.Kind)
			require.Equal(t, tt.reason, ce.Reason)
		})
	}
}

type foreignNode struct{}

func (foreignNode) Kind() shape.Kind       { return shape.KindLeaf }
func (foreignNode) Arguments() []shape.Arg { return nil }

func TestVariableList(t *testing.T) {
	got, err := VariableList(shape.Variables{
		shape.V("userId", shape.Named("ID!", validate.ID())),
		shape.V("type", shape.Leaf(validate.Enum("A", "B")).As("MediaType")),
	})
	require.NoError(t, err)
	require.Equal(t, "($userId: ID!, $type: MediaType)", got)

	got, err = VariableList(nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVariableList_MissingTypeName(t *testing.T) {
	_, err := VariableList(shape.Variables{shape.V("userId", shape.Leaf(validate.ID()))})
	var ce *Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "$userId", ce.Path)
	require.Equal(t, "variable has no type name", ce.Reason)
	require.EqualError(t, err, "shape: $userId (leaf): variable has no type name")
}

func TestVariableList_MissingValidator(t *testing.T) {
	_, err := VariableList(shape.Variables{shape.V("userId", shape.Named("ID!", nil))})
	require.EqualError(t, err, "shape: $userId (leaf): leaf has no validator")
}

func TestVariableList_InvalidTypeName(t *testing.T) {
	_, err := VariableList(shape.Variables{shape.V("id", shape.Named("[ID", validate.ID()))})
	require.ErrorContains(t, err, `invalid type name "[ID"`)
}

func TestDocument_MissingTypeNameFailsBeforeSelection(t *testing.T) {
	// The selection is malformed too; the variable error must win.
	text, err := Document("Q", shape.Variables{shape.V("id", shape.Leaf(validate.ID()))}, shape.Object())
	require.Empty(t, text)
	require.ErrorContains(t, err, "variable has no type name")
}

func TestDocument_OperationName(t *testing.T) {
	for _, name := range []string{"", "1Q", "my query"} {
		_, err := Document(name, nil, shape.Object(shape.F("a", str())))
		var ce *Error
		require.ErrorAs(t, err, &ce, name)
		require.Equal(t, "operation", ce.Kind)
	}
	_, err := Document("Q", nil, shape.Object(shape.F("a", str())).WithArgs(shape.A("x", "1")))
	require.ErrorContains(t, err, "root selection cannot take arguments")
	_, err = Document("Q", nil, nil)
	require.ErrorContains(t, err, "missing root selection")
}

func userQuery() (shape.Variables, *shape.ObjectNode) {
	vars := shape.Variables{
		shape.V("userId", shape.Named("ID!", validate.ID())),
		shape.V("type", shape.Named("MediaType", validate.Nullable(validate.Enum("ANIME", "MANGA")))),
	}
	root := shape.Object(
		shape.F("User", shape.Object(
			shape.F("id", shape.Leaf(validate.Int())),
			shape.F("name", str()),
			shape.F("favourites", shape.Array(shape.Object(
				shape.F("media", shape.Object(
					shape.F("title", str()),
					shape.F("type", shape.Leaf(validate.Enum("ANIME", "MANGA"))),
				)),
			)).WithArgs(shape.A("type", "$type"))),
		).WithArgs(shape.A("id", "$userId"))),
	)
	return vars, root
}

func TestDocument_Golden(t *testing.T) {
	vars, root := userQuery()
	text, err := Document("UserFavourites", vars, root)
	require.NoError(t, err)

	_, err = language.ParseQuery(text)
	require.NoError(t, err, "compiled document must parse")

	g := goldie.New(t)
	g.Assert(t, "user_favourites", []byte(text+"\n"))
}

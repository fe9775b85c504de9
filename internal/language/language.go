// Package language wraps gqlparser for the few GraphQL language services the
// client needs: syntax checks of outgoing documents, schema-aware validation,
// type-expression parsing and pretty printing.
package language

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL. Built-in scalars and directives are
// provided implicitly.
func LoadSchema(name, sdl string) (*Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateQuery parses source and checks it against schema with the standard
// validation rules.
func ValidateQuery(schema *Schema, source string) error {
	_, errs := gqlparser.LoadQuery(schema, source)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseType parses a GraphQL type reference such as "[ID!]!".
func ParseType(expr string) (*Type, error) {
	doc, err := ParseQuery("query ($v: " + expr + ") { __typename }")
	if err != nil {
		return nil, fmt.Errorf("invalid type %q: %w", expr, err)
	}
	if len(doc.Operations) != 1 || len(doc.Operations[0].VariableDefinitions) != 1 {
		return nil, fmt.Errorf("invalid type %q", expr)
	}
	return doc.Operations[0].VariableDefinitions[0].Type, nil
}

// Format pretty-prints a document.
func Format(doc *QueryDocument) string {
	var b strings.Builder
	formatter.NewFormatter(&b).FormatQueryDocument(doc)
	return b.String()
}

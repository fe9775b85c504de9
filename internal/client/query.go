package client

import (
	"errors"
	"fmt"

	"github.com/hanpama/shapeql/internal/compiler"
	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shape"
	"github.com/hanpama/shapeql/internal/validate"
)

// Query is a compiled, immutable GraphQL query bound to an endpoint.
type Query struct {
	address   string
	name      string
	text      string
	vars      shape.Variables
	typed     bool
	validator validate.Validator
	opts      Options
}

// New builds a query from literal document text. v validates the response
// data; when nil, Execute returns data unchecked.
func New(address, text string, v validate.Validator, opts ...Option) (*Query, error) {
	q := newQuery(address, opts)
	q.text = text
	q.validator = v
	doc, err := q.check()
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) == 1 {
		q.name = doc.Operations[0].Name
	}
	return q, nil
}

// NewTyped compiles root into a query operation named name with the given
// variable declarations, and compiles the response validator from the same
// tree. vars may be nil.
func NewTyped(address, name string, vars shape.Variables, root *shape.ObjectNode, opts ...Option) (*Query, error) {
	q := newQuery(address, opts)
	text, err := compiler.Document(name, vars, root)
	if err != nil {
		return nil, &ConstructionError{Err: err}
	}
	var copts []compiler.Option
	if q.opts.Strict {
		copts = append(copts, compiler.Strict())
	}
	v, err := compiler.Validator(root, copts...)
	if err != nil {
		return nil, &ConstructionError{Err: err}
	}
	q.name = name
	q.text = text
	q.vars = vars
	q.typed = true
	q.validator = v
	if _, err := q.check(); err != nil {
		return nil, err
	}
	return q, nil
}

func newQuery(address string, opts []Option) *Query {
	q := &Query{address: address}
	for _, f := range opts {
		f(&q.opts)
	}
	if q.opts.Transport == nil {
		q.opts.Transport = defaultTransport
	}
	return q
}

func (q *Query) check() (*language.QueryDocument, error) {
	if q.address == "" {
		return nil, &ConstructionError{Err: errors.New("empty address")}
	}
	doc, err := language.ParseQuery(q.text)
	if err != nil {
		return nil, &ConstructionError{Err: fmt.Errorf("parse document: %w", err)}
	}
	if q.opts.Schema != nil {
		if err := language.ValidateQuery(q.opts.Schema, q.text); err != nil {
			return nil, &ConstructionError{Err: fmt.Errorf("validate document: %w", err)}
		}
	}
	return doc, nil
}

// Text returns the compiled document.
func (q *Query) Text() string { return q.text }

// Name returns the operation name, empty for anonymous literal documents.
func (q *Query) Name() string { return q.name }

// Address returns the endpoint the query is sent to.
func (q *Query) Address() string { return q.address }

package client

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/shapeql/internal/validate"
)

// ConstructionError reports a query that could not be built: a malformed
// Shape Tree, an untyped variable, an invalid operation name or a document
// the parser or schema rejects.
type ConstructionError struct {
	Err error
}

func (e *ConstructionError) Error() string { return "construct query: " + e.Err.Error() }
func (e *ConstructionError) Unwrap() error { return e.Err }

// TransportError reports an exchange that produced no usable envelope: the
// request failed, the status was not 2xx, or the body was not a JSON
// envelope. Body holds the raw response text when one was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("transport: status %d: %v: %s", e.Status, e.Err, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("transport: status %d: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("transport: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a response whose envelope carried a non-empty error
// list. Errors keeps the list as received.
type ProtocolError struct {
	Errors gqlerror.List
}

func (e *ProtocolError) Error() string { return FormatErrors(e.Errors) }

// Scopes of a ValidationError.
const (
	ScopeData      = "data"
	ScopeVariables = "variables"
)

// ValidationError reports response data (or supplied variables) rejected by
// the validator.
type ValidationError struct {
	Scope  string
	Issues validate.Issues
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Scope, e.Issues.Error())
}

func (e *ValidationError) Unwrap() error { return e.Issues }

// FormatErrors renders a remote error list as one message. Each error becomes
// a block of "GraphQL Error: <message>" followed by its locations and path
// when present; blocks are separated by a blank line.
func FormatErrors(list gqlerror.List) string {
	blocks := make([]string, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		block := "GraphQL Error: " + e.Message
		if len(e.Locations) > 0 {
			locs := make([]string, len(e.Locations))
			for i, l := range e.Locations {
				locs[i] = fmt.Sprintf("line %d, column %d", l.Line, l.Column)
			}
			block += "\nLocations: " + strings.Join(locs, "; ")
		}
		if len(e.Path) > 0 {
			block += "\nPath: " + joinPath(e.Path)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

func joinPath(p ast.Path) string {
	parts := make([]string, len(p))
	for i, el := range p {
		switch v := el.(type) {
		case ast.PathName:
			parts[i] = string(v)
		case ast.PathIndex:
			parts[i] = fmt.Sprint(int(v))
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}

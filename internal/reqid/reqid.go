package reqid

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Header carries the request ID on outgoing HTTP requests.
const Header = "X-Request-Id"

// key is the context key for the request ID.
type key struct{}

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// Ensure returns ctx unchanged if it already carries a request ID, and a
// context with a fresh one otherwise.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	return NewContext(ctx)
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}

type execKey struct{}

var lastExec atomic.Uint64

// WithExecution returns a copy of ctx carrying a fresh execution token. A
// request ID may be shared by every call made with the same context; the
// token is unique to one execution and lets subscribers pair start and
// finish events of concurrent calls.
func WithExecution(ctx context.Context) (context.Context, uint64) {
	token := lastExec.Add(1)
	return context.WithValue(ctx, execKey{}, token), token
}

// ExecutionFromContext extracts the execution token from ctx.
func ExecutionFromContext(ctx context.Context) (uint64, bool) {
	token, ok := ctx.Value(execKey{}).(uint64)
	return token, ok
}

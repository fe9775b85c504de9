package client

import (
	"net/http"

	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/transport"
)

// Options configures query construction.
type Options struct {
	// Transport performs the exchange. Defaults to a shared transport.HTTP.
	Transport transport.Transport

	// Schema, when set, is used to validate the document at construction.
	Schema *language.Schema

	// Strict makes compiled object validators reject unknown response keys.
	Strict bool

	// Header is added to every request. Fixed pipeline headers win.
	Header http.Header
}

type Option func(*Options)

func WithTransport(t transport.Transport) Option { return func(o *Options) { o.Transport = t } }
func WithSchema(s *language.Schema) Option       { return func(o *Options) { o.Schema = s } }
func WithStrict() Option                         { return func(o *Options) { o.Strict = true } }
func WithHeader(h http.Header) Option            { return func(o *Options) { o.Header = h.Clone() } }

var defaultTransport transport.Transport = transport.NewHTTP()

// ExecOption configures a single Execute call.
type ExecOption func(*execOptions)

type execOptions struct {
	authorization string
}

// WithAuthorization sends h verbatim as the Authorization header.
func WithAuthorization(h string) ExecOption {
	return func(o *execOptions) { o.authorization = h }
}

// WithToken sends "<scheme> <token>" as the Authorization header, e.g.
// WithToken("Bearer", tok).
func WithToken(scheme, token string) ExecOption {
	return func(o *execOptions) { o.authorization = scheme + " " + token }
}

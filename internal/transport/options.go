package transport

import (
	"net/http"
	"time"
)

// Options configures the HTTP transport.
//
// Defaults:
// - Timeout:      10s (used only if the incoming context has no deadline)
// - MaxBodyBytes: 0 (unlimited)
// - Client:       a fresh *http.Client
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	Client       *http.Client
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Option mutates Options
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Timeout:   10 * time.Second,
		UserAgent: "shapeql",
	}
}

func WithClient(c *http.Client) Option   { return func(o *Options) { o.Client = c } }
func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithUserAgent(ua string) Option     { return func(o *Options) { o.UserAgent = ua } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }

package events

import "time"

// HTTPClientStart is emitted before an HTTP exchange with a GraphQL endpoint.
type HTTPClientStart struct {
	Method string
	URL    string
}

// HTTPClientFinish is emitted after the exchange. Status is zero when no
// response was received.
type HTTPClientFinish struct {
	Method   string
	URL      string
	Status   int
	Err      error
	Duration time.Duration
}

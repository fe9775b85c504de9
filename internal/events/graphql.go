package events

import "time"

// QueryStart is emitted before a typed query is executed.
type QueryStart struct {
	OperationName string
	Address       string
}

// QueryFinish is emitted after a typed query execution completes, whether it
// produced data or failed.
type QueryFinish struct {
	OperationName string
	Address       string
	Err           error
	Duration      time.Duration
}

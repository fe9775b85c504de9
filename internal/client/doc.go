// Package client implements typed GraphQL queries: a compiled document bound
// to an endpoint address and a validator for the response data.
//
// # Construction
//
// NewTyped compiles a Shape Tree once into the query text and the response
// validator. New accepts hand-written query text and an optional validator
// for documents a Shape Tree cannot express. Both check the document with the
// GraphQL parser (and, with WithSchema, against a local schema) and fail with
// *ConstructionError before any network activity.
//
// # Execution
//
// Execute sends {"query", "variables"} as a single POST with caching
// disabled, then classifies the outcome in a fixed order:
//
//  1. transport failure or non-2xx status: *TransportError carrying the raw body
//  2. non-empty "errors" list, even when "data" is also present: *ProtocolError
//  3. "data" rejected by the validator: *ValidationError
//  4. otherwise the validated (possibly coerced) data
//
// A Query holds no mutable state; any number of goroutines may execute it
// concurrently.
package client

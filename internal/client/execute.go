package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"

	eventbus "github.com/hanpama/shapeql/internal/eventbus"
	events "github.com/hanpama/shapeql/internal/events"
	reqid "github.com/hanpama/shapeql/internal/reqid"
	"github.com/hanpama/shapeql/internal/transport"
	"github.com/hanpama/shapeql/internal/validate"
)

type requestBody struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors gqlerror.List   `json:"errors"`
}

// Execute sends the query with vars and returns the validated response data.
// Numbers are decoded as json.Number so leaf validators see them unrounded.
// vars may be nil. For typed queries every supplied variable must be declared
// and accepted by its declared leaf validator; the validator output is what
// gets sent.
func (q *Query) Execute(ctx context.Context, vars map[string]any, opts ...ExecOption) (any, error) {
	var eo execOptions
	for _, f := range opts {
		f(&eo)
	}
	ctx, rid := reqid.Ensure(ctx)
	ctx, _ = reqid.WithExecution(ctx)

	start := time.Now()
	eventbus.Publish(ctx, events.QueryStart{OperationName: q.name, Address: q.address})
	data, err := q.execute(ctx, rid, vars, &eo)
	eventbus.Publish(ctx, events.QueryFinish{
		OperationName: q.name,
		Address:       q.address,
		Err:           err,
		Duration:      time.Since(start),
	})
	return data, err
}

func (q *Query) execute(ctx context.Context, rid string, vars map[string]any, eo *execOptions) (any, error) {
	vars, err := q.checkVariables(ctx, vars)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(requestBody{Query: q.text, Variables: vars})
	if err != nil {
		return nil, &ValidationError{Scope: ScopeVariables, Issues: validate.Issues{{Code: validate.CodeCustom, Message: err.Error()}}}
	}

	resp, err := q.opts.Transport.Exchange(ctx, &transport.Request{
		URL:    q.address,
		Method: http.MethodPost,
		Header: q.header(rid, eo),
		Body:   body,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if !resp.OK() {
		return nil, &TransportError{Status: resp.Status, Body: string(resp.Body)}
	}

	var env envelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &TransportError{Status: resp.Status, Body: string(resp.Body), Err: fmt.Errorf("decode envelope: %w", err)}
	}
	// The error list decides failure even when data is present too.
	if len(env.Errors) > 0 {
		return nil, &ProtocolError{Errors: env.Errors}
	}
	var data any
	if len(env.Data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(env.Data))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, &TransportError{Status: resp.Status, Body: string(resp.Body), Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	if q.validator == nil {
		return data, nil
	}
	out, err := q.validator.Validate(ctx, data)
	if err != nil {
		return nil, &ValidationError{Scope: ScopeData, Issues: asIssues(err)}
	}
	return out, nil
}

func (q *Query) checkVariables(ctx context.Context, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars))
	if !q.typed {
		for k, v := range vars {
			out[k] = v
		}
		return out, nil
	}
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	slices.Sort(names)

	var issues validate.Issues
	for _, name := range names {
		leaf, ok := q.vars.Lookup(name)
		if !ok {
			issues = append(issues, validate.Issue{Path: validate.Path{name}, Code: validate.CodeUnknownKey, Message: "undeclared variable"})
			continue
		}
		v, err := leaf.Validator.Validate(ctx, vars[name])
		if err != nil {
			issues = append(issues, validate.Prefix(name, err)...)
			continue
		}
		out[name] = v
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Scope: ScopeVariables, Issues: issues}
	}
	return out, nil
}

func (q *Query) header(rid string, eo *execOptions) http.Header {
	h := q.opts.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set(reqid.Header, rid)
	if eo.authorization != "" {
		h.Set("Authorization", eo.authorization)
	}
	return h
}

func asIssues(err error) validate.Issues {
	if is, ok := err.(validate.Issues); ok {
		return is
	}
	return validate.Issues{{Code: validate.CodeCustom, Message: err.Error()}}
}

// Decode executes q and maps the validated data onto T through its JSON
// form, giving callers a static type for the result.
func Decode[T any](ctx context.Context, q *Query, vars map[string]any, opts ...ExecOption) (T, error) {
	var out T
	data, err := q.Execute(ctx, vars, opts...)
	if err != nil {
		return out, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode result into %T: %w", out, err)
	}
	return out, nil
}

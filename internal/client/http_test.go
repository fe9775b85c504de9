package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/shapeql/internal/shape"
	"github.com/hanpama/shapeql/internal/transport"
	"github.com/hanpama/shapeql/internal/validate"
)

func TestExecuteOverHTTP(t *testing.T) {
	var gotQuery string
	var gotVars map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		gotQuery, gotVars = req.Query, req.Variables
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"Page":{"media":[{"id":1,"title":"A"},{"id":2,"title":"B"}]}}}`))
	}))
	defer srv.Close()

	tr := transport.NewHTTP()
	defer tr.Close()

	root := shape.Object(
		shape.F("Page", shape.Object(
			shape.F("media", shape.Array(shape.Object(
				shape.F("id", shape.Leaf(validate.Int())),
				shape.F("title", shape.Leaf(validate.String())),
			)).WithArgs(shape.A("search", "$search"))),
		)),
	)
	vars := shape.Variables{shape.V("search", shape.Named("String", validate.Nullable(validate.String())))}
	q, err := NewTyped(srv.URL, "Search", vars, root, WithTransport(tr))
	require.NoError(t, err)

	got, err := q.Execute(context.Background(), map[string]any{"search": "a"}, WithToken("Bearer", "secret"))
	require.NoError(t, err)
	require.Equal(t, "query Search($search: String) { Page { media(search: $search) { id title } } }", gotQuery)
	require.Equal(t, map[string]any{"search": "a"}, gotVars)
	require.Equal(t, map[string]any{"Page": map[string]any{"media": []any{
		map[string]any{"id": 1, "title": "A"},
		map[string]any{"id": 2, "title": "B"},
	}}}, got)

	_, err = q.Execute(context.Background(), nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusUnauthorized, te.Status)
	require.Contains(t, te.Body, "unauthorized")
}

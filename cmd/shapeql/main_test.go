package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hanpama/shapeql/internal/client"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

const compiled = "query MediaTitle($id: Int!) { Media(id: $id) { id title { romaji } genres } }"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), err
}

func graphqlServer(t *testing.T, response string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			require.NoError(t, json.Unmarshal(raw, got))
			(*got)["authorization"] = r.Header.Get("Authorization")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompile(t *testing.T) {
	out, err := runCLI(t, "compile", "testdata/media.yaml")
	require.NoError(t, err)
	require.Equal(t, compiled+"\n", out)

	out, err = runCLI(t, "compile", "--pretty", "testdata/media.yaml")
	require.NoError(t, err)
	require.Contains(t, out, "query MediaTitle")
	require.Contains(t, out, "$id: Int!")
	require.Greater(t, bytes.Count([]byte(out), []byte("\n")), 3)
}

func TestCompileAgainstSchema(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "shapeql.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("schema: testdata/schema.graphql\n"), 0o600))
	_, err := runCLI(t, "--config", cfg, "compile", "testdata/media.yaml")
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("operation: Q\nquery:\n  Media:\n    rating: Int\n"), 0o600))
	_, err = runCLI(t, "--config", cfg, "compile", bad)
	require.ErrorContains(t, err, "rating")
}

func TestCompileErrors(t *testing.T) {
	_, err := runCLI(t, "compile")
	require.Error(t, err)

	_, err = runCLI(t, "compile", "testdata/missing.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExec(t *testing.T) {
	var got map[string]any
	srv := graphqlServer(t, `{"data":{"Media":{"id":1,"title":{"romaji":"Cowboy Bebop","native":"x"},"genres":["Action"]}}}`, &got)

	out, err := runCLI(t, "exec", "testdata/media.yaml",
		"--endpoint", srv.URL, "--var", "id=1", "--token", "secret")
	require.NoError(t, err)

	require.Equal(t, compiled, got["query"])
	require.Equal(t, map[string]any{"id": 1.0}, got["variables"])
	require.Equal(t, "Bearer secret", got["authorization"])

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	require.Equal(t, map[string]any{"Media": map[string]any{
		"id":     1.0,
		"title":  map[string]any{"romaji": "Cowboy Bebop"},
		"genres": []any{"Action"},
	}}, data)
}

func TestExecStrictRejectsUnknownKeys(t *testing.T) {
	srv := graphqlServer(t, `{"data":{"Media":{"id":1,"title":{"romaji":"A","native":"x"},"genres":[]}}}`, nil)

	_, err := runCLI(t, "exec", "testdata/media.yaml", "--endpoint", srv.URL, "--var", "id=1", "--strict")
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, client.ScopeData, ve.Scope)
	require.Contains(t, ve.Error(), "Media.title.native")
}

func TestExecRejectsBadVariable(t *testing.T) {
	srv := graphqlServer(t, `{"data":null}`, nil)

	_, err := runCLI(t, "exec", "testdata/media.yaml", "--endpoint", srv.URL, "--var", "id=one")
	var ve *client.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, client.ScopeVariables, ve.Scope)
}

func TestExecProtocolErrorWritesMetrics(t *testing.T) {
	srv := graphqlServer(t, `{"data":null,"errors":[{"message":"Not Found.","locations":[{"line":1,"column":30}],"path":["Media"]}]}`, nil)
	textfile := filepath.Join(t.TempDir(), "shapeql.prom")

	_, err := runCLI(t, "--metrics.textfile", textfile,
		"exec", "testdata/media.yaml", "--endpoint", srv.URL, "--var", "id=1")
	var pe *client.ProtocolError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "GraphQL Error: Not Found.\nLocations: line 1, column 30\nPath: Media", pe.Error())

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	require.Contains(t, string(prom), `shapeql_queries_total{operation="MediaTitle",outcome="protocol_error"} 1`)
	require.Contains(t, string(prom), `shapeql_http_requests_total{code="200"} 1`)
}

func TestExecRequiresEndpoint(t *testing.T) {
	_, err := runCLI(t, "exec", "testdata/media.yaml")
	require.ErrorContains(t, err, "missing endpoint")
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"id=1", "name=Bebop", `tags=["a"]`, "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": 1.0, "name": "Bebop", "tags": []any{"a"}, "empty": ""}, vars)

	_, err = parseVars([]string{"=1"})
	require.Error(t, err)
	_, err = parseVars([]string{"id"})
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	require.Equal(t, "shapeql dev\n", out)
}

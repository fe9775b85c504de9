package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/shapeql/internal/client"
	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shapefile"
	"github.com/hanpama/shapeql/internal/transport"
)

type execOptions struct {
	*rootOptions
	endpoint      string
	vars          []string
	token         string
	scheme        string
	authorization string
	timeout       string
	schema        string
	strict        bool
}

func newExecCommand(root *rootOptions) *cobra.Command {
	opts := &execOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "exec <shape.yaml>",
		Short: "Execute a shape file against an endpoint and print the validated data",
		Long: `Execute compiles the shape file, sends it to the GraphQL endpoint and
validates the response against the same shape. Variables are given as
name=value pairs; the value is parsed as JSON and falls back to a plain
string when it is not valid JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.endpoint, "endpoint", "", "GraphQL HTTP endpoint")
	flags.StringArrayVar(&opts.vars, "var", nil, "variable as name=json (repeatable)")
	flags.StringVar(&opts.token, "token", "", "credential sent as \"<scheme> <token>\"")
	flags.StringVar(&opts.scheme, "scheme", "", "authorization scheme for --token (default Bearer)")
	flags.StringVar(&opts.authorization, "authorization", "", "raw Authorization header value")
	flags.StringVar(&opts.timeout, "timeout", "", "execution timeout, e.g. 10s")
	flags.StringVar(&opts.schema, "schema", "", "SDL file to validate the document against")
	flags.BoolVar(&opts.strict, "strict", false, "reject response keys the shape does not declare")
	return cmd
}

// apply merges changed exec flags into the loaded config.
func (o *execOptions) apply(cmd *cobra.Command) error {
	cfg := o.cfg
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = o.endpoint
	}
	if flags.Changed("token") {
		cfg.Auth.Token = o.token
	}
	if flags.Changed("scheme") {
		cfg.Auth.Scheme = o.scheme
	}
	if flags.Changed("authorization") {
		cfg.Auth.Header = o.authorization
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("schema") {
		cfg.Schema = o.schema
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if cfg.Endpoint == "" {
		return fmt.Errorf("missing endpoint: set --endpoint or endpoint in the config file")
	}
	return cfg.Validate()
}

func runExec(cmd *cobra.Command, opts *execOptions, path string) error {
	if err := opts.apply(cmd); err != nil {
		return err
	}
	cfg := opts.cfg

	doc, err := shapefile.Load(path)
	if err != nil {
		return err
	}
	vars, err := parseVars(opts.vars)
	if err != nil {
		return err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	tr := transport.NewHTTP(transport.WithTimeout(timeout))
	defer tr.Close()
	qopts := []client.Option{client.WithTransport(tr)}
	if cfg.Strict {
		qopts = append(qopts, client.WithStrict())
	}
	if cfg.Schema != "" {
		schema, err := loadSchema(cfg.Schema)
		if err != nil {
			return err
		}
		qopts = append(qopts, client.WithSchema(schema))
	}

	q, err := client.NewTyped(cfg.Endpoint, doc.Operation, doc.Variables, doc.Root, qopts...)
	if err != nil {
		return err
	}
	opts.logger.Debug("compiled query", zap.String("operation", q.Name()), zap.String("query", q.Text()))

	var eopts []client.ExecOption
	if auth := cfg.Authorization(); auth != "" {
		eopts = append(eopts, client.WithAuthorization(auth))
	}

	data, err := q.Execute(cmd.Context(), vars, eopts...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		vars[name] = v
	}
	return vars, nil
}

func loadSchema(path string) (*language.Schema, error) {
	sdl, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return language.LoadSchema(path, string(sdl))
}

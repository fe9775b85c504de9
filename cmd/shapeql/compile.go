package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanpama/shapeql/internal/compiler"
	"github.com/hanpama/shapeql/internal/language"
	"github.com/hanpama/shapeql/internal/shapefile"
)

type compileOptions struct {
	*rootOptions
	pretty bool
}

func newCompileCommand(root *rootOptions) *cobra.Command {
	opts := &compileOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "compile <shape.yaml>",
		Short: "Print the GraphQL document for a shape file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "format the document over multiple lines")
	return cmd
}

func runCompile(cmd *cobra.Command, opts *compileOptions, path string) error {
	doc, err := shapefile.Load(path)
	if err != nil {
		return err
	}
	text, err := compiler.Document(doc.Operation, doc.Variables, doc.Root)
	if err != nil {
		return err
	}
	if opts.cfg.Schema != "" {
		schema, err := loadSchema(opts.cfg.Schema)
		if err != nil {
			return err
		}
		if err := language.ValidateQuery(schema, text); err != nil {
			return err
		}
	}
	if opts.pretty {
		parsed, err := language.ParseQuery(text)
		if err != nil {
			return err
		}
		text = language.Format(parsed)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

// Command schematools is the §6 CLI surface: process, validate, codegen,
// and chain sub-commands over a local schema document (a file path or a
// file:// URL; documents are read through schemadoc.FileFetcher only).
// Grounded on original_source/src/commands/{mod,codegen,registry,chain}.rs;
// it keeps their `-v...` and `--output` flags but has no `-o key=value`
// option.
//
// codegen (template rendering against the IMG) is documented here as the
// §6 contract requires but not implemented: rendering needs a template
// engine, an external collaborator per spec.md. There is no registry
// sub-command. process, validate, and chain are fully wired against this
// repo's packages.
package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kstasik/schema-tools/process/bump"
	"github.com/kstasik/schema-tools/process/dereference"
	"github.com/kstasik/schema-tools/process/mergeallof"
	"github.com/kstasik/schema-tools/process/mergeopenapi"
	"github.com/kstasik/schema-tools/process/name"
	"github.com/kstasik/schema-tools/process/patch"
	"github.com/kstasik/schema-tools/resolver"
	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/validate"
)

var (
	verbosity  int
	outputFmt  string
	outputFile string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "schematools",
		Short: "Process, validate, and codegen JSON-Schema/OpenAPI documents",
	}

	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase logging verbosity (repeatable, up to -vvvv)")
	root.PersistentFlags().StringVar(&outputFmt, "output", "json", "output format: json|yaml")
	root.PersistentFlags().StringVar(&outputFile, "to-file", "", "write output to this path instead of stdout")

	root.AddCommand(newProcessCmd(), newValidateCmd(), newCodegenCmd(), newChainCmd())
	return root
}

func newLogger() logrus.FieldLogger {
	log := logrus.New()
	switch {
	case verbosity >= 4:
		log.SetLevel(logrus.TraceLevel)
	case verbosity == 3:
		log.SetLevel(logrus.DebugLevel)
	case verbosity == 2:
		log.SetLevel(logrus.InfoLevel)
	case verbosity == 1:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

// loadDocument resolves specifier (a bare path or URL per §6) into a
// fully-loaded Document and a Resolver/Storage ready to follow its $refs.
func loadDocument(specifier string) (*schemadoc.Document, *resolver.Resolver, error) {
	u, err := schemadoc.PathToURL(specifier)
	if err != nil {
		return nil, nil, fmt.Errorf("schematools: %q is not a valid path or URL: %w", specifier, err)
	}

	log := newLogger()
	storage := schemadoc.NewStorage(schemadoc.FileFetcher{}, log)
	if err := storage.LoadRoots([]*url.URL{u}); err != nil {
		return nil, nil, err
	}

	doc, ok := storage.Get(u)
	if !ok {
		return nil, nil, fmt.Errorf("schematools: %q did not load", specifier)
	}

	return doc, resolver.New(storage, u, log), nil
}

// writeOutput renders body as --output (json|yaml) to stdout or --to-file.
func writeOutput(body interface{}) error {
	var out []byte
	var err error
	switch outputFmt {
	case "yaml":
		out, err = yamlMarshal(body)
	default:
		out, err = jsonMarshalIndent(body)
	}
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err = os.Stdout.Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(outputFile, out, 0o644)
}

func newProcessCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "process", Short: "Transform a loaded document"}
	cmd.AddCommand(
		newDereferenceCmd(),
		newMergeAllofCmd(),
		newMergeOpenapiCmd(),
		newBumpOpenapiCmd(),
		newNameCmd(),
		newPatchCmd(),
	)
	return cmd
}

func newDereferenceCmd() *cobra.Command {
	var skipRootInternal, createInternalRefs bool
	cmd := &cobra.Command{
		Use:   "dereference <file>",
		Short: "Inline every $ref in the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, r, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			d := dereference.New(r, doc, dereference.Options{
				SkipRootInternal:  skipRootInternal,
				CreateInternalRefs: createInternalRefs,
			}, newLogger())
			if err := d.Run(doc); err != nil {
				return err
			}
			return writeOutput(doc.Body)
		},
	}
	cmd.Flags().BoolVar(&skipRootInternal, "skip-root-internal", false, "leave root-document $refs intact")
	cmd.Flags().BoolVar(&createInternalRefs, "create-internal-refs", false, "back-reference repeated targets instead of duplicating them")
	return cmd
}

func newMergeAllofCmd() *cobra.Command {
	var filterExpr string
	cmd := &cobra.Command{
		Use:   "merge-allof <file>",
		Short: "Flatten every allOf into a single merged schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, r, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			opts := mergeallof.Options{}
			if filterExpr != "" {
				f, err := traverseParseFilter(filterExpr)
				if err != nil {
					return err
				}
				opts.Filter = f
			}
			m := mergeallof.New(r, opts, newLogger())
			result, err := m.Run(doc.Body)
			if err != nil {
				return err
			}
			return writeOutput(result)
		},
	}
	cmd.Flags().StringVar(&filterExpr, "filter", "", "exclude allOf branches failing field=value")
	return cmd
}

func newMergeOpenapiCmd() *cobra.Command {
	var with, retag string
	cmd := &cobra.Command{
		Use:   "merge-openapi <file>",
		Short: "Union a secondary OpenAPI document into the primary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			secondary, _, err := loadDocument(with)
			if err != nil {
				return err
			}
			opts := mergeopenapi.Options{With: secondary.Body}
			if retag != "" {
				opts.Retag = &retag
			}
			if err := mergeopenapi.Merge(doc.Body, opts); err != nil {
				return err
			}
			return writeOutput(doc.Body)
		},
	}
	cmd.Flags().StringVar(&with, "with", "", "secondary OpenAPI document to merge in")
	cmd.Flags().StringVar(&retag, "retag", "", "replace every inserted operation's tags with this single tag")
	cmd.MarkFlagRequired("with")
	return cmd
}

func newBumpOpenapiCmd() *cobra.Command {
	var recentPath string
	cmd := &cobra.Command{
		Use:   "bump-openapi <original>",
		Short: "Bump info.version per x-version-* comparison against a recent document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			recent, _, err := loadDocument(recentPath)
			if err != nil {
				return err
			}
			if err := bump.Bump(original.Body, recent.Body, bump.XVersion); err != nil {
				return err
			}
			return writeOutput(recent.Body)
		},
	}
	cmd.Flags().StringVar(&recentPath, "recent", "", "the newer document to bump in place")
	cmd.MarkFlagRequired("recent")
	return cmd
}

func newNameCmd() *cobra.Command {
	var overwrite, overwriteAmbiguous, resourceMethodVersion bool
	cmd := &cobra.Command{
		Use:   "name <file>",
		Short: "Assign component schema titles and path operationIds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			log := newLogger()
			err = name.NameOpenapi(doc.Body, name.OpenapiNamerOptions{
				Overwrite:             overwrite,
				OverwriteAmbiguous:    overwriteAmbiguous,
				ResourceMethodVersion: resourceMethodVersion,
				Log:                   log,
			})
			if err != nil {
				return err
			}
			return writeOutput(doc.Body)
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing titles/operationIds")
	cmd.Flags().BoolVar(&overwriteAmbiguous, "overwrite-ambiguous", false, "accepted but has no effect: oneOf/anyOf option schemas are named like any other nested schema")
	cmd.Flags().BoolVar(&resourceMethodVersion, "resource-method-version", false, "use the reversed operationId form")
	return cmd
}

func newPatchCmd() *cobra.Command {
	var op, path, value string
	cmd := &cobra.Command{
		Use:   "patch <file>",
		Short: "Apply a single RFC-6902 operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			result, err := patch.Inline(doc.Body, op, path, jsonLiteral(value))
			if err != nil {
				return err
			}
			return writeOutput(result)
		},
	}
	cmd.Flags().StringVar(&op, "op", "replace", "RFC-6902 operation (add|remove|replace|test); there is no --from, so move and copy cannot be expressed")
	cmd.Flags().StringVar(&path, "path", "", "JSON pointer target")
	cmd.Flags().StringVar(&value, "value", "", "literal value (JSON-decoded if it parses, else a string)")
	cmd.MarkFlagRequired("path")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "validate", Short: "Validate a document's structure"}

	cmd.AddCommand(&cobra.Command{
		Use:   "openapi <file>",
		Short: "Validate against the bundled OpenAPI 3.0 meta-schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			return validate.ValidateOpenAPI(doc.Body, doc.URL.String(), newLogger())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "jsonschema <file>",
		Short: "Confirm the document is a well-formed JSON-Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			return validate.ValidateJSONSchema(doc.Body, doc.URL.String())
		},
	})

	return cmd
}

// newCodegenCmd documents the §6 codegen contract (jsonschema/openapi
// sub-commands rendering a registry's .j2 templates against the IMG); this
// repo builds the IMG (model.Extractor) and discovers templates
// (registry.Discovery) but leaves template rendering itself — a Tera-like
// engine is the natural counterpart and isn't in the retrieved pack — to an
// external collaborator.
func newCodegenCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "codegen", Short: "Render registry templates against the extracted model (not implemented)"}
	notImplemented := func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("schematools: codegen rendering is an external collaborator; see registry.Discovery and model.Extractor")
	}
	cmd.AddCommand(&cobra.Command{Use: "jsonschema <file>", Args: cobra.ExactArgs(1), RunE: notImplemented})
	cmd.AddCommand(&cobra.Command{Use: "openapi <file>", Args: cobra.ExactArgs(1), RunE: notImplemented})
	return cmd
}

func newChainCmd() *cobra.Command {
	var steps []string
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Run a sequence of sub-commands in order; each step loads its own input and writes its own output",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, step := range steps {
				root := newRootCmd()
				root.SetArgs(splitChainStep(step))
				if err := root.Execute(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&steps, "command", "c", nil, "a full sub-command line to run in sequence (repeatable)")
	return cmd
}

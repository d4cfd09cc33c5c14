package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/compiler"
	"github.com/danforbes/dots/internal/ir"
	"github.com/danforbes/dots/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Document bool // input is a normalized JSON document, not a metadata blob
	Key      string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid" yaml:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Schema []string                   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Cycles []compiler.CycleWarning    `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Check a metadata blob or document against the output invariants",
		Long: `Validate decodes the input and re-checks the normalized document:
type references resolve, payloads match their kind, storage items set
exactly one of type and map, and the document satisfies the CUE schema
(see "dots schema"). Recursive types are reported as warnings.

With --document the input is an already normalized JSON document, for
example one written by "dots decode --format json" and edited since.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Document, "document", false, "input is a normalized JSON document")
	cmd.Flags().StringVar(&opts.Key, "key", "", "cache key (requires --cache)")

	return cmd
}

func runValidate(opts *ValidateOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	var (
		md  *ir.Metadata
		doc []byte
		err error
	)
	if opts.Document {
		md, doc, err = loadDocument(arg, cmd)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, "cannot load document", err)
		}
	} else {
		md, _, err = source{opts: opts.RootOptions, cmd: cmd, arg: arg, key: opts.Key}.loadOrFail(cmd.Context(), formatter)
		if err != nil {
			return err
		}
	}

	result, err := validateAll(md, doc, formatter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "schema check", err)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// loadDocument reads a normalized JSON document.
func loadDocument(arg string, cmd *cobra.Command) (*ir.Metadata, []byte, error) {
	doc, err := readDocument(arg, cmd)
	if err != nil {
		return nil, nil, err
	}
	var md ir.Metadata
	if err := json.Unmarshal(doc, &md); err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}
	return &md, doc, nil
}

// validateAll runs the invariant checks, the CUE schema and the cycle
// analysis. doc is the JSON form when the input was a document; nil means
// md is rendered first.
func validateAll(md *ir.Metadata, doc []byte, formatter *OutputFormatter) (ValidationResult, error) {
	result := ValidationResult{Valid: true}

	formatter.VerboseLog("Checking %d types, %d pallets", len(md.Types), len(md.Pallets))
	result.Errors = compiler.Validate(md)

	v, err := schema.NewValidator()
	if err != nil {
		return result, err
	}
	if doc == nil {
		err = v.ValidateMetadata(md)
	} else {
		err = v.Validate(doc)
	}
	var schemaErr *schema.Error
	switch {
	case errors.As(err, &schemaErr):
		for _, issue := range schemaErr.Issues {
			result.Schema = append(result.Schema, issue.String())
		}
	case err != nil:
		return result, err
	}

	result.Cycles = compiler.AnalyzeCycles(md.Types)
	result.Valid = len(result.Errors) == 0 && len(result.Schema) == 0
	return result, nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	count := len(result.Errors) + len(result.Schema)
	message := fmt.Sprintf("validation failed with %d error(s)", count)

	if formatter.Structured() {
		if err := formatter.Error(ErrCodeValidation, message, result); err != nil {
			return err
		}
	} else {
		formatter.Failed("%s", message)
		for _, e := range result.Errors {
			fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
		}
		for _, issue := range result.Schema {
			fmt.Fprintf(formatter.Writer, "  [schema] %s\n", issue)
		}
		outputCycles(formatter, result.Cycles)
	}

	exitErr := NewExitError(ExitFailure, message)
	exitErr.Reported = true
	return exitErr
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Structured() {
		return formatter.Success(result)
	}
	formatter.Pass("metadata is valid")
	outputCycles(formatter, result.Cycles)
	return nil
}

func outputCycles(formatter *OutputFormatter, cycles []compiler.CycleWarning) {
	for _, c := range cycles {
		formatter.Warn("%s", c.Message)
	}
}

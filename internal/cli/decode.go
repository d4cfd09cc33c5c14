package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danforbes/dots/internal/ir"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Key    string // cache key, usually <implName>-<specVersion>
	Output string // write the document here instead of stdout
}

// DecodeSummary is the text-mode report of a decode.
type DecodeSummary struct {
	Pallets        int    `json:"pallets" yaml:"pallets"`
	Types          int    `json:"types" yaml:"types"`
	Extensions     int    `json:"extensions" yaml:"extensions"`
	SigningVersion uint8  `json:"signing_version" yaml:"signing_version"`
	RawSize        int    `json:"raw_size" yaml:"raw_size"`
	Hash           string `json:"hash" yaml:"hash"`
}

func (s DecodeSummary) String() string {
	return fmt.Sprintf("pallets:    %d\ntypes:      %d\nextensions: %d\nversion:    %d\nhash:       %s",
		s.Pallets, s.Types, s.Extensions, s.SigningVersion, s.Hash)
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <input>",
		Short: "Decode metadata into the normalized document",
		Long: `Decode a version 14 metadata blob and print the normalized document.

<input> is a file (raw bytes, 0x hex, or a state_getMetadata JSON-RPC
response), "-" for stdin, or a literal 0x hex string.

With --format json the document is written as canonical JSON; with
--format yaml as YAML. Text mode prints a summary and the content hash.

Examples:
  dots decode metadata.scale --format json
  dots decode rpc-response.json --format yaml -o metadata.yaml
  dots decode metadata.hex --cache dots.db --key polkadot-1002000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "cache key (requires --cache)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runDecode(opts *DecodeOptions, arg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	md, size, err := source{opts: opts.RootOptions, cmd: cmd, arg: arg, key: opts.Key}.loadOrFail(cmd.Context(), formatter)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Decoded %d bytes: %d types, %d pallets", size, len(md.Types), len(md.Pallets))

	var out bytes.Buffer
	if err := renderDocument(&out, opts.Format, md, size); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "render document", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(out.Bytes())
		return err
	}
	if err := os.WriteFile(opts.Output, out.Bytes(), 0o644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "write output", err)
	}
	formatter.VerboseLog("Wrote %s", opts.Output)
	return nil
}

// renderDocument writes md in the requested format. JSON output is
// canonical so it hashes and diffs stably.
func renderDocument(w io.Writer, format string, md *ir.Metadata, size int) error {
	switch format {
	case "json":
		data, err := ir.MarshalCanonical(md)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(md); err != nil {
			return err
		}
		return enc.Close()
	}

	hash, err := ir.MetadataHash(md)
	if err != nil {
		return err
	}
	summary := DecodeSummary{
		Pallets:        len(md.Pallets),
		Types:          len(md.Types),
		Extensions:     len(md.Signing.Extensions),
		SigningVersion: md.Signing.Version,
		RawSize:        size,
		Hash:           hash,
	}
	_, err = fmt.Fprintln(w, summary)
	return err
}

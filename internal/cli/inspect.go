package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/ir"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Key string
}

// PalletSummary is one row of the pallet listing.
type PalletSummary struct {
	Index     uint8  `json:"index" yaml:"index"`
	Name      string `json:"name" yaml:"name"`
	Calls     int    `json:"calls" yaml:"calls"`
	Events    int    `json:"events" yaml:"events"`
	Errors    int    `json:"errors" yaml:"errors"`
	Storage   int    `json:"storage" yaml:"storage"`
	Constants int    `json:"constants" yaml:"constants"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <input> [pallet]",
		Short: "List pallets or show one pallet",
		Long: `Without a pallet name, inspect lists every pallet with the size of
each section. With a name it shows the pallet's calls, events, errors,
storage items and constants.

Examples:
  dots inspect metadata.scale
  dots inspect metadata.scale Balances --format json`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pallet := ""
			if len(args) == 2 {
				pallet = args[1]
			}
			return runInspect(opts, args[0], pallet, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "cache key (requires --cache)")

	return cmd
}

func runInspect(opts *InspectOptions, arg, palletName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	md, _, err := source{opts: opts.RootOptions, cmd: cmd, arg: arg, key: opts.Key}.loadOrFail(cmd.Context(), formatter)
	if err != nil {
		return err
	}

	if palletName == "" {
		summaries := summarizePallets(md.Pallets)
		if formatter.Structured() {
			return formatter.Success(summaries)
		}
		writePalletTable(formatter.Writer, summaries)
		return nil
	}

	pallet, ok := md.Pallet(palletName)
	if !ok {
		return formatter.Fail(ExitFailure, ErrCodeNotFound,
			fmt.Sprintf("pallet %q not found", palletName), nil)
	}
	if formatter.Structured() {
		return formatter.Success(pallet)
	}
	writePallet(formatter.Writer, pallet, md.Types)
	return nil
}

func summarizePallets(pallets []ir.Pallet) []PalletSummary {
	out := make([]PalletSummary, 0, len(pallets))
	for _, p := range pallets {
		out = append(out, PalletSummary{
			Index:     p.Index,
			Name:      p.Name,
			Calls:     len(p.Calls),
			Events:    len(p.Events),
			Errors:    len(p.Errors),
			Storage:   len(p.Storage),
			Constants: len(p.Constants),
		})
	}
	return out
}

func writePalletTable(w io.Writer, rows []PalletSummary) {
	header := color.New(color.Bold)
	header.Fprintf(w, "%5s  %-24s %6s %6s %6s %7s %9s\n", "INDEX", "NAME", "CALLS", "EVENTS", "ERRORS", "STORAGE", "CONSTANTS")
	for _, r := range rows {
		fmt.Fprintf(w, "%5d  %-24s %6d %6d %6d %7d %9d\n",
			r.Index, r.Name, r.Calls, r.Events, r.Errors, r.Storage, r.Constants)
	}
}

func writePallet(w io.Writer, p *ir.Pallet, types ir.Types) {
	title := color.New(color.Bold, color.FgCyan)
	title.Fprintf(w, "%s (index %d)\n", p.Name, p.Index)

	writeVariants(w, "calls", p.Calls, types)
	writeVariants(w, "events", p.Events, types)
	writeVariants(w, "errors", p.Errors, types)

	if p.Storage != nil {
		color.New(color.Bold).Fprintln(w, "storage")
		for _, s := range p.Storage {
			if s.Map != nil {
				fmt.Fprintf(w, "  %s: map %s -> %s [%s] %s\n", s.Name,
					typeLabel(s.Map.Key, types), typeLabel(s.Map.Value, types),
					joinHashers(s.Map.Hashers), s.Modifier)
				continue
			}
			fmt.Fprintf(w, "  %s: %s %s\n", s.Name, typeLabel(*s.Type, types), s.Modifier)
		}
	}

	if len(p.Constants) > 0 {
		color.New(color.Bold).Fprintln(w, "constants")
		for _, c := range p.Constants {
			fmt.Fprintf(w, "  %s: %s = %s\n", c.Name, typeLabel(c.Type, types), c.Value)
		}
	}
}

func writeVariants(w io.Writer, section string, vs []ir.PalletVariant, types ir.Types) {
	if vs == nil {
		return
	}
	color.New(color.Bold).Fprintln(w, section)
	for _, v := range vs {
		fmt.Fprintf(w, "  %d %s(%s)\n", v.Index, v.Name, fieldList(v.Fields, types))
	}
}

func fieldList(fields []ir.Field, types ir.Types) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		label := typeLabel(f.Field, types)
		if f.Name != nil {
			label = *f.Name + ": " + label
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

func joinHashers(hs []ir.StorageHasher) string {
	parts := make([]string, len(hs))
	for i, h := range hs {
		parts[i] = string(h)
	}
	return strings.Join(parts, ", ")
}

// typeLabel renders a short human name for a type id: the qualified name
// when there is one, otherwise the kind.
func typeLabel(id uint32, types ir.Types) string {
	st, ok := types[id]
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	if st.Name != nil && *st.Name != "" {
		return fmt.Sprintf("%s#%d", *st.Name, id)
	}
	return fmt.Sprintf("%s#%d", st.Type, id)
}

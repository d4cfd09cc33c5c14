package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/ir"
)

// TypesOptions holds flags for the types command.
type TypesOptions struct {
	*RootOptions
	Key  string
	Kind string // only list types of this kind
}

// TypeEntry is one type of the index with its id.
type TypeEntry struct {
	ID   uint32       `json:"id" yaml:"id"`
	Type ir.ScaleType `json:"type" yaml:"type"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TypesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "types <input> [id...]",
		Short: "Show entries of the normalized type index",
		Long: `Types prints the requested entries of the type index, or every entry
when no id is given. --kind restricts the listing to one discriminant.

Examples:
  dots types metadata.scale 0 1 2
  dots types metadata.scale --kind Enum --format yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Key, "key", "", "cache key (requires --cache)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only list types of this kind")

	return cmd
}

func runTypes(opts *TypesOptions, arg string, idArgs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Kind != "" && !ir.ValidKinds[ir.Kind(opts.Kind)] {
		return formatter.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("unknown kind %q", opts.Kind), nil)
	}

	ids := make([]uint32, 0, len(idArgs))
	for _, a := range idArgs {
		id, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid type id %q", a), err)
		}
		ids = append(ids, uint32(id))
	}

	md, _, err := source{opts: opts.RootOptions, cmd: cmd, arg: arg, key: opts.Key}.loadOrFail(cmd.Context(), formatter)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		ids = md.Types.IDs()
	}

	entries := make([]TypeEntry, 0, len(ids))
	for _, id := range ids {
		st, ok := md.Types[id]
		if !ok {
			return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("type %d not found", id), nil)
		}
		if opts.Kind != "" && st.Type != ir.Kind(opts.Kind) {
			continue
		}
		entries = append(entries, TypeEntry{ID: id, Type: st})
	}

	if formatter.Structured() {
		return formatter.Success(entries)
	}
	for _, e := range entries {
		writeType(formatter.Writer, e, md.Types)
	}
	return nil
}

func writeType(w io.Writer, e TypeEntry, types ir.Types) {
	st := e.Type
	head := fmt.Sprintf("%d: %s", e.ID, st.Type)
	if st.Name != nil && *st.Name != "" {
		head += " " + *st.Name
	}

	switch st.Type {
	case ir.KindEnum:
		fmt.Fprintln(w, head)
		for _, v := range st.Variants {
			fmt.Fprintf(w, "    %d %s(%s)\n", v.Index, v.Name, fieldList(v.Fields, types))
		}
	case ir.KindStruct, ir.KindTuple, ir.KindResult:
		fmt.Fprintf(w, "%s(%s)\n", head, fieldList(st.Fields, types))
	case ir.KindList:
		if st.Length != nil {
			fmt.Fprintf(w, "%s [%s; %d]\n", head, typeLabel(*st.Store, types), *st.Length)
		} else {
			fmt.Fprintf(w, "%s [%s]\n", head, typeLabel(*st.Store, types))
		}
	case ir.KindCompact, ir.KindOption:
		fmt.Fprintf(w, "%s<%s>\n", head, typeLabel(*st.Store, types))
	default:
		fmt.Fprintln(w, head)
	}
}

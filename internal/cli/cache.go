package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danforbes/dots/internal/store"
)

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the decoded metadata cache",
		Long: `The cache stores normalized documents in a sqlite database, keyed by
<implName>-<specVersion>. Decode, validate, inspect and types consult it
when both --cache and --key are given.`,
	}

	cmd.AddCommand(newCacheListCommand(rootOpts))
	cmd.AddCommand(newCacheDeleteCommand(rootOpts))
	cmd.AddCommand(newCacheClearCommand(rootOpts))
	cmd.AddCommand(newCacheKeyCommand(rootOpts))

	return cmd
}

func newCacheListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List cached entries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(f *OutputFormatter, st *store.Store) error {
				entries, err := st.List(cmd.Context())
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeCache, "list cache", err)
				}
				if f.Structured() {
					return f.Success(entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(f.Writer, "Cache is empty.")
					return nil
				}
				for _, e := range entries {
					fmt.Fprintf(f.Writer, "%s  %s  %d bytes  %s\n", e.Key, shortHash(e.Hash), e.RawSize, e.ID)
				}
				return nil
			})
		},
	}
}

func newCacheDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <key>",
		Short:         "Delete one cached entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(f *OutputFormatter, st *store.Store) error {
				deleted, err := st.Delete(cmd.Context(), args[0])
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeCache, "delete cache entry", err)
				}
				if !deleted {
					return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no cache entry %q", args[0]), nil)
				}
				if f.Structured() {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				f.Pass("deleted %s", args[0])
				return nil
			})
		},
	}
}

func newCacheClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Delete every cached entry",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(rootOpts, cmd, func(f *OutputFormatter, st *store.Store) error {
				n, err := st.Clear(cmd.Context())
				if err != nil {
					return f.Fail(ExitCommandError, ErrCodeCache, "clear cache", err)
				}
				if f.Structured() {
					return f.Success(map[string]int64{"deleted": n})
				}
				f.Pass("deleted %d entries", n)
				return nil
			})
		},
	}
}

// newCacheKeyCommand prints the cache key for a runtime version, so
// scripts do not have to know the format.
func newCacheKeyCommand(rootOpts *RootOptions) *cobra.Command {
	var specVersion uint32
	cmd := &cobra.Command{
		Use:           "key <impl-name>",
		Short:         "Print the cache key for a runtime version",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := store.Key(args[0], specVersion)
			f := newFormatter(rootOpts, cmd)
			if f.Structured() {
				return f.Success(map[string]string{"key": key})
			}
			fmt.Fprintln(f.Writer, key)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&specVersion, "spec-version", 0, "runtime spec version")
	return cmd
}

// withStore opens the cache named by --cache and runs fn against it.
func withStore(opts *RootOptions, cmd *cobra.Command, fn func(*OutputFormatter, *store.Store) error) error {
	f := newFormatter(opts, cmd)
	if opts.Cache == "" {
		return f.Fail(ExitCommandError, ErrCodeCache, "no cache configured (use --cache or the cache config key)", nil)
	}

	st, err := store.Open(opts.Cache)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeCache, "open cache", err)
	}
	defer st.Close()

	return fn(f, st)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "yaml" | "text"
	ConfigFile  string
	Cache       string // path of the sqlite metadata cache, empty for none
	Parallelism int
	NoColor     bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the dots CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "dots",
		Short: "dots - FRAME metadata decoder",
		Long: `Decode and normalize FRAME runtime metadata (version 14).

Reads the SCALE encoded metadata blob returned by state_getMetadata and
emits a flat type index, per-pallet calls, events, errors, storage and
constants, and the signed extensions that carry payload.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, opts.ConfigFile); err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			applyConfig(v, opts)

			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.NoColor {
				color.NoColor = true
			}
			configureLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|yaml|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default $XDG_CONFIG_HOME/dots/config.yaml)")
	flags.StringVar(&opts.Cache, "cache", "", "sqlite metadata cache path")
	flags.IntVar(&opts.Parallelism, "parallelism", 0, "pallets projected concurrently (0 or 1 is sequential)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	bindFlags(v, cmd)

	// Add subcommands
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// configureLogging routes slog to stderr: debug when verbose, warnings
// otherwise.
func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

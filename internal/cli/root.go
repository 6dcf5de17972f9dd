package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/forty96/internal/board"
	"github.com/roach88/forty96/internal/config"
	"github.com/roach88/forty96/internal/journal"
)

// Version is the forty96 release, overridden at link time with
// -ldflags "-X github.com/roach88/forty96/internal/cli.Version=...".
var Version = "0.1.0-dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is resolved before any subcommand runs. Nil when a subcommand
	// is executed on its own, in which case defaults apply.
	Config *config.Config

	// Overrides for tests. Nil means crypto/rand tiles, UUIDv7 session
	// tokens and terminal detection on the output.
	Random   board.RandomSource
	Sessions journal.SessionGenerator
	Terminal *bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the forty96 CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forty96",
		Short: "forty96 - sliding tile puzzle",
		Long:  "A 2048-style puzzle engine with a terminal front end and a move-tree self test.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Verbose = opts.Verbose
			}
			opts.Config = &cfg

			setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
			slog.Debug("config resolved",
				"source", cfg.Source,
				"size", cfg.Size,
				"spawn", cfg.Spawn,
				"timeout", cfg.Timeout,
			)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"path to a CUE config file (default: ./"+config.DefaultFile+" if present)")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// settings returns the resolved config, or defaults.
func (o *RootOptions) settings() config.Config {
	if o.Config == nil {
		cfg := config.Default()
		cfg.Verbose = o.Verbose
		return cfg
	}
	return *o.Config
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.settings().Verbose,
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadOptional(config.DefaultFile)
	}
	return config.Load(path)
}

// setupLogging installs the default slog handler. Debug level when verbose.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the forty96 version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.Success(map[string]string{"version": Version})
			}
			return f.Success("forty96 " + Version)
		},
	}
}

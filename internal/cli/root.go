package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/bigram/internal/config"
	"github.com/roach88/bigram/internal/ingest"
)

// Version is the current version of bigram (overridden by ldflags at build time).
var Version = "0.3.0"

// RootOptions holds the flags of the bigram command.
type RootOptions struct {
	Verbose    bool
	Format     string
	Database   string
	ConfigPath string
	Reset      bool
	Force      bool
	Dump       bool
	Limit      int

	// RunIDs allows overriding the ingestion run id generator (for testing).
	// If nil, defaults to ingest.UUIDv7Generator.
	RunIDs ingest.RunIDGenerator
}

// NewRootCommand creates the bigram command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bigram [flags] [file...]",
		Short: "Count adjacent word pairs in text files",
		Long: `Add bigrams from text files to a persistent bigram store.

Each file is split into whitespace-separated words. Every distinct word gets
a stable id, and every pair of adjacent words is counted in the order it
appears. Counts accumulate across runs until the store is reset.

A file that does not exist is reported and skipped.

Examples:
  bigram book.txt notes.txt
  bigram --dump --limit 20
  bigram --reset --force`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}
	cmd.SetVersionTemplate("Version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usagef("valid flags: %v", err)
	})

	flags := cmd.Flags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "", "output format (text|json|yaml)")
	flags.StringVar(&opts.Database, "db", "", "path to the bigram store (default \"bigrams.db\")")
	flags.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	flags.BoolVar(&opts.Reset, "reset", false, "delete the bigram store (requires --force)")
	flags.BoolVarP(&opts.Force, "force", "f", false, "confirm --reset")
	flags.BoolVar(&opts.Dump, "dump", false, "print raw bigram counts")
	flags.IntVar(&opts.Limit, "limit", 0, "maximum rows printed by --dump (0 = all)")

	return cmd
}

func run(cmd *cobra.Command, opts *RootOptions, args []string) error {
	if err := checkUsage(cmd, opts, args); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.Level())
	formatter := &OutputFormatter{
		Format:    cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}

	if opts.Reset {
		return runReset(cfg, logger, formatter)
	}
	return runIngest(cmd.Context(), opts, args, cfg, logger, formatter)
}

// checkUsage rejects flag combinations that cannot be acted on.
func checkUsage(cmd *cobra.Command, opts *RootOptions, args []string) error {
	if cmd.Flags().Changed("format") && !slices.Contains(config.ValidFormats, opts.Format) {
		return usagef("--format to be one of %v, got %q", config.ValidFormats, opts.Format)
	}

	if opts.Reset {
		if !opts.Force {
			return usagef("--force with --reset; reset permanently deletes the bigram store")
		}
		if len(args) > 0 {
			return usagef("no file arguments with --reset, got %d", len(args))
		}
		if opts.Dump {
			return usagef("either --reset or --dump, not both")
		}
		return nil
	}

	if opts.Force {
		return usagef("--force only together with --reset")
	}
	if cmd.Flags().Changed("limit") && !opts.Dump {
		return usagef("--limit only together with --dump")
	}
	if opts.Limit < 0 {
		return usagef("--limit to be zero or positive, got %d", opts.Limit)
	}
	if len(args) == 0 && !opts.Dump {
		return usagef("at least one file to ingest (see --help)")
	}
	return nil
}

// resolveConfig layers defaults, the optional config file and flags.
func resolveConfig(cmd *cobra.Command, opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("db") {
		cfg.Database = opts.Database
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = opts.Format
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("after flags: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

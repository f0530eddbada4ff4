package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	"chronoseq/internal/config"
	appLog "chronoseq/internal/log"
)

// RootOptions holds global flags and the state loaded from them before a
// command runs.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json" | "cbor"
	Seq        string
	Verbose    bool

	// Fs backs the config file and local calendar files.
	Fs afero.Fs

	cfg   *config.Config
	rules chrono.Rules
	seq   calendar.Sequence
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "cbor"}

// NewRootCommand creates the root command for the chronoseq CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Fs: afero.NewOsFs()})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chronoseq",
		Short: "chronoseq - partial time points across Gregorian and ISO calendars",
		Long: `Build, compare and enumerate time points of variable precision.

A point is an element list such as "YR=2023,MH=8,DY=21" (Gregorian) or
"YR=2023,WK=34,WY=MO" (ISO). Points without a year recur; their
occurrences are enumerated within a bound given by --start/--end.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (created with defaults if missing)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|cbor)")
	cmd.PersistentFlags().StringVar(&opts.Seq, "seq", "", "sequence of point arguments (gregorian|iso); defaults to the configured sequence")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewPointCommand(opts))
	cmd.AddCommand(NewSpanCommand(opts))
	cmd.AddCommand(NewOccurrencesCommand(opts))
	cmd.AddCommand(NewRecurrenceCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewShiftCommand(opts))
	cmd.AddCommand(NewNextCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// load validates global flags and loads the configuration.
func (o *RootOptions) load() error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitUsage, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	var err error
	if o.ConfigPath != "" {
		o.cfg, err = config.LoadFs(o.Fs, o.ConfigPath)
	} else {
		o.cfg, err = config.FromEnv()
	}
	if err != nil {
		return WrapExitError(ExitFailure, "load config", err)
	}

	appLog.SetLevel(o.cfg.Level())
	if o.Verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	o.rules, err = o.cfg.Rules()
	if err != nil {
		return WrapExitError(ExitFailure, "config year_range", err)
	}

	o.seq = o.cfg.Sequence()
	if o.Seq != "" {
		if o.seq, err = calendar.ParseSequence(o.Seq); err != nil {
			return WrapExitError(ExitUsage, "--seq", err)
		}
	}
	appLog.Debug("cli config loaded", "config", o.ConfigPath, "sequence", o.seq, "max_occurrences", o.cfg.MaxOccurrences)
	return nil
}

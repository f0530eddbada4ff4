package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"chronoseq/internal/chrono"
	"chronoseq/internal/ics"
	appLog "chronoseq/internal/log"
	"chronoseq/internal/model"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		bf        boundFlags
		recurring bool
		name      string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export <elements>",
		Short: "Write the occurrences of a point as an iCalendar file",
		Long: `Write the occurrences of a point within the bound as VEVENTs. With
--recurring a single event carries an RRULE instead. --format does not
apply; the output is always iCalendar.`,
		Example: `  chronoseq export MH=8,DY=21 --start YR=2023 --end YR=2030 --recurring -o birthday.ics`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			bound, err := rootOpts.parseBound(bf.start, bf.end)
			if err != nil {
				return err
			}

			opts := ics.ExportOptions{Name: name}
			var body string
			if recurring {
				body, err = ics.ExportRecurring(tp, bound, opts)
				if errors.Is(err, ics.ErrNoOccurrence) {
					return invalid("export", err)
				}
				if err != nil {
					return WrapExitError(ExitFailure, "export", err)
				}
			} else {
				spans, truncated := chrono.Take(chrono.OccurrencesWithin(tp, bound), rootOpts.limit(bf.max))
				if truncated {
					appLog.Info("export truncated", "count", len(spans))
				}
				body = ics.ExportOccurrences(tp, spans, opts)
			}

			if output == "" || output == "-" {
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
			if err := afero.WriteFile(rootOpts.Fs, output, []byte(body), 0o644); err != nil {
				return WrapExitError(ExitFailure, "write "+output, err)
			}
			appLog.Info("export written", "path", output, "bytes", len(body))
			return nil
		},
	}
	bf.register(cmd)
	cmd.Flags().BoolVar(&recurring, "recurring", false, "emit one event with an RRULE instead of one event per occurrence")
	cmd.Flags().StringVar(&name, "name", "", "calendar and event name (default: the element list)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// importResult is the structured output of the import command.
type importResult struct {
	Source        string             `json:"source"`
	Occurrences   []model.Occurrence `json:"occurrences"`
	TruncatedUIDs []string           `json:"truncated_uids,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	var bf boundFlags
	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Expand the events of an iCalendar file or URL within a bound",
		Long: `Read VEVENTs from a local file or an http(s) URL and list their
instances overlapping the bound. RRULE, EXDATE and RECURRENCE-ID are
honored. Remote calendars are cached under cache_dir and revalidated with
ETag / Last-Modified.`,
		Example: `  chronoseq import holidays.ics --start YR=2024`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bound, err := rootOpts.parseBound(bf.start, bf.end)
			if err != nil {
				return err
			}

			src := args[0]
			var body []byte
			if ics.IsRemote(src) {
				res, err := ics.NewFetcher(rootOpts.Fs, rootOpts.cfg.CacheDir).Fetch(cmd.Context(), src)
				if err != nil {
					return WrapExitError(ExitFailure, "fetch calendar", err)
				}
				body = res.Body
			} else if body, err = afero.ReadFile(rootOpts.Fs, src); err != nil {
				return WrapExitError(ExitFailure, "read calendar", err)
			}

			events, err := ics.ParseEvents(src, body)
			if err != nil {
				return WrapExitError(ExitFailure, "parse calendar", err)
			}
			exp, err := ics.ExpandEvents(events, ics.ExpandConfig{
				Bound:                  bound,
				MaxOccurrencesPerEvent: rootOpts.limit(bf.max),
			})
			if err != nil {
				return WrapExitError(ExitFailure, "expand calendar", err)
			}

			res := importResult{
				Source:        src,
				Occurrences:   exp.Occurrences,
				TruncatedUIDs: exp.TruncatedEvents,
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(res, func(w io.Writer) error {
				for _, o := range res.Occurrences {
					if err := writeRow(w, o, o.Summary); err != nil {
						return err
					}
				}
				for _, uid := range res.TruncatedUIDs {
					if _, err := fmt.Fprintf(w, "# truncated %s\n", uid); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	bf.register(cmd)
	return cmd
}

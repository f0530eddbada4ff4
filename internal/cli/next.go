package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"chronoseq/internal/chrono"
	"chronoseq/internal/model"
	"chronoseq/internal/schedule"
)

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		after string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "next <elements>",
		Short: "Print the next occurrence of a point",
		Long: `Print the first occurrence of a point starting strictly after --after
(default: now). With --watch, keep running and print each occurrence as it
starts, until interrupted.`,
		Example: `  chronoseq next MH=8,DY=21 --after 2023-08-01T00:00:00Z
  chronoseq next WY=MO,HR=9 --seq iso --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			emit := func(s chrono.Span) error {
				occ := model.NewOccurrence(s)
				return f.Write(occ, func(w io.Writer) error { return writeRow(w, occ) })
			}

			if watch {
				err := schedule.Watch(cmd.Context(), tp, func(s chrono.Span) {
					_ = emit(s)
				})
				if err != nil {
					return WrapExitError(ExitFailure, "watch", err)
				}
				return nil
			}

			from := time.Now()
			if after != "" {
				if from, err = time.Parse(time.RFC3339, after); err != nil {
					return invalid("--after", err)
				}
			}
			sched := schedule.New(tp)
			next := sched.Next(from)
			if next.IsZero() {
				return NewExitError(ExitFailure, "point has no occurrence after "+from.Format(time.RFC3339))
			}
			s, _ := sched.Occurrence(next)
			return emit(s)
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "RFC 3339 time to search after (default now)")
	cmd.Flags().BoolVar(&watch, "watch", false, "print each occurrence as it starts, until interrupted")
	return cmd
}

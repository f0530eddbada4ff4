package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	appLog "chronoseq/internal/log"
	"chronoseq/internal/model"
)

// boundFlags are the --start/--end/--max flags shared by enumerating
// commands.
type boundFlags struct {
	start string
	end   string
	max   int
}

func (b *boundFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.start, "start", "", "anchored point where the bound starts, e.g. YR=2023 (required)")
	cmd.Flags().StringVar(&b.end, "end", "", "anchored point where the bound ends; defaults to the end of --start's span")
	cmd.Flags().IntVar(&b.max, "max", 0, "stop after this many occurrences (capped by max_occurrences)")
	_ = cmd.MarkFlagRequired("start")
}

// NewPointCommand creates the point command.
func NewPointCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "point <elements>",
		Short: "Validate a point and describe its units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			p := model.NewPoint(tp)
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(p, func(w io.Writer) error { return writePoint(w, p) })
		},
	}
}

// NewSpanCommand creates the span command.
func NewSpanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "span <elements>",
		Short: "Print the concrete span of an anchored point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			s, err := tp.ToSpan()
			if err != nil {
				return invalid("span", err)
			}
			ps := model.NewPointSpan(tp, s)
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(ps, func(w io.Writer) error { return writeRow(w, ps.Span) })
		},
	}
}

// NewOccurrencesCommand creates the occurrences command.
func NewOccurrencesCommand(rootOpts *RootOptions) *cobra.Command {
	var bf boundFlags
	cmd := &cobra.Command{
		Use:   "occurrences <elements>",
		Short: "List the occurrences of a point within a bound",
		Long: `List every concrete span of a point lying entirely within the bound.

Anchors that do not exist, such as Feb 29 in a common year or ISO week 53
in a short year, are skipped.`,
		Example: `  chronoseq occurrences MH=2,DY=29 --start YR=2020 --end YR=2030
  chronoseq occurrences WY=FR,HR=17 --seq iso --start YR=2023,MH=8 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			bound, err := rootOpts.parseBound(bf.start, bf.end)
			if err != nil {
				return err
			}

			list := model.ListOccurrences(tp, bound, rootOpts.limit(bf.max))
			appLog.Debug("occurrences listed", "bound", bound, "count", len(list.Occurrences), "truncated", list.Truncated)

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(list, func(w io.Writer) error { return writeRows(w, list.Occurrences, list.Truncated) })
		},
	}
	bf.register(cmd)
	return cmd
}

// recurrenceResult is the structured output of the recurrence command.
type recurrenceResult struct {
	From        model.Point        `json:"from"`
	To          model.Point        `json:"to"`
	Occurrences []model.Occurrence `json:"occurrences"`
	Truncated   bool               `json:"truncated,omitempty"`
}

// NewRecurrenceCommand creates the recurrence command.
func NewRecurrenceCommand(rootOpts *RootOptions) *cobra.Command {
	var bf boundFlags
	cmd := &cobra.Command{
		Use:   "recurrence <from> <to>",
		Short: "List recurring spans running from one point to the next occurrence of another",
		Example: `  chronoseq recurrence MH=12,DY=20 MH=1,DY=5 --start YR=2023 --end YR=2026`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			to, err := rootOpts.parsePoint(rootOpts.seq, args[1])
			if err != nil {
				return err
			}
			rec, err := chrono.NewRecurrence(from, to)
			if err != nil {
				return invalid("recurrence", err)
			}
			bound, err := rootOpts.parseBound(bf.start, bf.end)
			if err != nil {
				return err
			}

			spans, truncated := chrono.Take(rec.Within(bound), rootOpts.limit(bf.max))
			res := recurrenceResult{
				From:        model.NewPoint(from),
				To:          model.NewPoint(to),
				Occurrences: model.Occurrences(spans),
				Truncated:   truncated,
			}
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(res, func(w io.Writer) error { return writeRows(w, res.Occurrences, res.Truncated) })
		},
	}
	bf.register(cmd)
	return cmd
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	var seqB string
	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Order two anchored points and report their overlap",
		Long: `Compare the spans of two anchored points, possibly from different
sequences. <a> uses --seq; <b> uses --seq-b, defaulting to --seq.`,
		Example: `  chronoseq compare YR=2023,MH=8,DY=21 YR=2023,WK=34 --seq-b iso`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb := rootOpts.seq
			if seqB != "" {
				var err error
				if sb, err = calendar.ParseSequence(seqB); err != nil {
					return invalid("--seq-b", err)
				}
			}
			a, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			b, err := rootOpts.parsePoint(sb, args[1])
			if err != nil {
				return err
			}
			spanA, err := a.ToSpan()
			if err != nil {
				return invalid("compare a", err)
			}
			spanB, err := b.ToSpan()
			if err != nil {
				return invalid("compare b", err)
			}

			c := model.NewComparison(spanA, spanB)
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(c, func(w io.Writer) error { return writeComparison(w, c) })
		},
	}
	cmd.Flags().StringVar(&seqB, "seq-b", "", "sequence of <b> (gregorian|iso)")
	return cmd
}

func writeComparison(w io.Writer, c model.Comparison) error {
	if err := writeRow(w, c.A, "a"); err != nil {
		return err
	}
	if err := writeRow(w, c.B, "b"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "order\t%d\noverlaps\t%t\nrelation\t%s\n", c.Order, c.Overlaps, c.Relation); err != nil {
		return err
	}
	if c.Intersection != nil {
		return writeRow(w, *c.Intersection, "intersection")
	}
	return nil
}

// NewShiftCommand creates the shift command.
func NewShiftCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		unit string
		by   int
	)
	cmd := &cobra.Command{
		Use:   "shift <elements>",
		Short: "Move the span of an anchored point by a number of units",
		Long: `Move both ends of a point's span by --by units of --unit. Carries
propagate and never clamp: Jan 31 + 1 MH is Mar 3.`,
		Example: `  chronoseq shift YR=2023,MH=8 --unit MH --by 5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := chrono.ParseUnit(unit)
			if err != nil {
				return invalid("--unit", err)
			}
			tp, err := rootOpts.parsePoint(rootOpts.seq, args[0])
			if err != nil {
				return err
			}
			s, err := tp.ToSpan()
			if err != nil {
				return invalid("shift", err)
			}

			occ := model.NewOccurrence(s.Shift(tp.Sequence(), u, by))
			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Write(occ, func(w io.Writer) error { return writeRow(w, occ) })
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "DY", "unit to shift by (YR|MH|WK|DY|WY|HR|ME|SD)")
	cmd.Flags().IntVar(&by, "by", 1, "number of units; negative moves backwards")
	return cmd
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	"chronoseq/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // Runtime failure (config, I/O, network)
	ExitUsage   = 2 // Invalid input (bad flag, malformed or inconsistent point)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitUsage)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// invalid marks err as bad user input.
func invalid(message string, err error) error {
	return WrapExitError(ExitUsage, message, err)
}

// OutputFormatter renders command results as text, JSON or CBOR.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Write renders v. In text format, text writes the human-readable form.
func (f *OutputFormatter) Write(v any, text func(w io.Writer) error) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "cbor":
		data, err := cbor.Marshal(v)
		if err != nil {
			return err
		}
		_, err = f.Writer.Write(data)
		return err
	}
	return text(f.Writer)
}

// writeRow prints one occurrence as tab-separated start, end, date and ISO
// week, followed by any extra columns.
func writeRow(w io.Writer, o model.Occurrence, extra ...string) error {
	cols := []string{
		o.Start.Format(time.RFC3339),
		o.End.Format(time.RFC3339),
		o.Date,
		o.ISOWeek,
	}
	cols = append(cols, extra...)
	_, err := fmt.Fprintln(w, strings.Join(cols, "\t"))
	return err
}

func writeRows(w io.Writer, occs []model.Occurrence, truncated bool) error {
	for _, o := range occs {
		if err := writeRow(w, o); err != nil {
			return err
		}
	}
	if truncated {
		_, err := fmt.Fprintf(w, "# truncated after %d occurrences\n", len(occs))
		return err
	}
	return nil
}

func writePoint(w io.Writer, p model.Point) error {
	over := strings.Join(p.Over, ",")
	if over == "" {
		over = "-"
	}
	_, err := fmt.Fprintf(w, "sequence\t%s\nelements\t%s\nscope\t%s\nunder\t%s\nover\t%s\nanchored\t%t\ncomplete\t%t\n",
		p.Sequence, p.Elements, p.Scope, p.Under, over, p.Anchored, p.Complete)
	return err
}

// parsePoint parses an element-list argument in seq.
func (o *RootOptions) parsePoint(seq calendar.Sequence, arg string) (chrono.TimePoint, error) {
	tp, err := model.ParsePoint(o.rules, seq, arg)
	if err != nil {
		return chrono.TimePoint{}, invalid("invalid point", err)
	}
	return tp, nil
}

// parseBound parses --start/--end in the command's sequence.
func (o *RootOptions) parseBound(start, end string) (chrono.Span, error) {
	b, err := model.ParseBound(o.rules, o.seq, start, end)
	if err != nil {
		return chrono.Span{}, invalid("invalid bound", err)
	}
	return b, nil
}

// limit applies the configured cap to a --max value.
func (o *RootOptions) limit(max int) int {
	if max <= 0 || max > o.cfg.MaxOccurrences {
		return o.cfg.MaxOccurrences
	}
	return max
}

package cli

import (
	"github.com/spf13/cobra"

	appLog "chronoseq/internal/log"
	"chronoseq/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the HTTP API until interrupted:

  GET /health
  GET /api/point?elements=&seq=
  GET /api/span?elements=&seq=
  GET /api/occurrences?elements=&seq=&start=&end=&max=
  GET /api/recurrence?from=&to=&seq=&start=&end=&max=
  GET /api/compare?a=&b=&seq_a=&seq_b=`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			// --listen overrides the config file.
			if listen != "" {
				cfg.Listen = listen
			}
			appLog.Info("effective config",
				"listen", cfg.Listen,
				"year_min", cfg.YearRange.Min,
				"year_max", cfg.YearRange.Max,
				"default_sequence", cfg.DefaultSequence,
				"max_occurrences", cfg.MaxOccurrences,
				"basic_auth", cfg.BasicAuth != nil,
			)
			if err := web.StartServer(cmd.Context(), cfg); err != nil {
				return WrapExitError(ExitFailure, "serve", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

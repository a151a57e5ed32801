package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	"github.com/secureworks/taegis-magic/internal/errs"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Search the Taegis events service",
}

var eventsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run an events query and print the flattened results",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		in, err := searchInput(cmd, svc)
		if err != nil {
			return err
		}

		result, err := svc.Search.Events(ctx, in)
		if err != nil {
			logging.Error(ctx, "events search failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "search events")
		}

		logging.Info(ctx, "events search finished",
			slog.Int64("results_returned", result.ResultsReturned),
			slog.Bool("from_cache", result.FromCache))

		return writeJSON(cmd, result.Frame)
	}),
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsSearchCmd)
	addSearchFlags(eventsSearchCmd, 1000)
}

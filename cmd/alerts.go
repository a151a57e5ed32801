package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	"github.com/secureworks/taegis-magic/internal/errs"
	searchuc "github.com/secureworks/taegis-magic/internal/usecase/search"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Search the Taegis alerts service",
}

var alertsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run an alerts search and print the flattened results",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		in, err := searchInput(cmd, svc)
		if err != nil {
			return err
		}

		result, err := svc.Search.Alerts(ctx, in)
		if err != nil {
			logging.Error(ctx, "alerts search failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "search alerts")
		}

		logging.Info(ctx, "alerts search finished",
			slog.Int64("results_returned", result.ResultsReturned),
			slog.Int64("total_results", result.TotalResults),
			slog.Bool("from_cache", result.FromCache))

		return writeJSON(cmd, result.Frame)
	}),
}

// searchInput reads the shared search flags; --track falls back to the
// queries.track config default and the caller name comes from
// queries.caller_name.
func searchInput(cmd *cobra.Command, svc *appServices) (searchuc.Input, error) {
	query, _ := cmd.Flags().GetString("query")
	limit, _ := cmd.Flags().GetInt("limit")
	useCache, _ := cmd.Flags().GetBool("use-cache")

	track := svc.App.Config.Queries.Track
	if cmd.Flags().Changed("track") {
		track, _ = cmd.Flags().GetBool("track")
	}

	tenant, _ := cmd.Flags().GetString("tenant")
	if tenant == "" {
		tenant = svc.App.Config.Taegis.TenantID
	}

	return searchuc.Input{
		TenantID:   tenant,
		Query:      query,
		Limit:      limit,
		CallerName: svc.App.Config.Queries.CallerName,
		Track:      track,
		UseCache:   useCache,
	}, nil
}

func addSearchFlags(c *cobra.Command, defaultLimit int) {
	c.Flags().String("query", "", "Search query text")
	c.Flags().Int("limit", defaultLimit, "Maximum number of results to fetch")
	c.Flags().Bool("track", false, "Record this search in the executed-search log")
	c.Flags().Bool("use-cache", false, "Reuse locally cached results for identical searches")
	c.Flags().String("tenant", "", "Tenant id (defaults to taegis.tenant_id)")
	_ = c.MarkFlagRequired("query")
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsSearchCmd)
	addSearchFlags(alertsSearchCmd, 10000)
}

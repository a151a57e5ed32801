package cmd

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	"github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
)

var searchQueriesCmd = &cobra.Command{
	Use:   "search-queries",
	Short: "Manage the executed-search log",
}

var searchQueriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an executed search",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = uuid.NewString()
		}
		tenant, _ := cmd.Flags().GetString("tenant")
		query, _ := cmd.Flags().GetString("query")
		resultsReturned, _ := cmd.Flags().GetInt64("results-returned")
		totalResults, _ := cmd.Flags().GetInt64("total-results")

		inserted, err := svc.Evidence.InsertSearchQuery(ctx, evidence.SearchQuery{
			ID:              id,
			TenantID:        tenant,
			Query:           query,
			ResultsReturned: resultsReturned,
			TotalResults:    totalResults,
		})
		if err != nil {
			logging.Error(ctx, "record search query failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "record search query")
		}

		return writeJSON(cmd, inserted)
	}),
}

var searchQueriesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove one recorded search",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		if err := svc.Evidence.DeleteSearchQuery(ctx, id); err != nil {
			logging.Error(ctx, "remove search query failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "remove search query")
		}

		return listSearchQueries(cmd, svc)
	}),
}

var searchQueriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded searches",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		return listSearchQueries(cmd, svc)
	}),
}

var searchQueriesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the executed-search log",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := svc.Evidence.ClearSearchQueries(ctx); err != nil {
			logging.Error(ctx, "clear search queries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "clear search queries")
		}

		return listSearchQueries(cmd, svc)
	}),
}

var searchQueriesStageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage all recorded searches as investigation evidence",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		investigationID, _ := cmd.Flags().GetString("investigation-id")
		summary, err := svc.Evidence.StageSearchQueries(ctx, investigationID)
		if err != nil {
			logging.Error(ctx, "stage search queries failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "stage search queries")
		}

		return writeJSON(cmd, summary)
	}),
}

func listSearchQueries(cmd *cobra.Command, svc *appServices) error {
	ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

	queries, err := svc.Evidence.ListSearchQueries(ctx)
	if err != nil {
		logging.Error(ctx, "list search queries failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "list search queries")
	}

	return writeJSON(cmd, queries)
}

func init() {
	rootCmd.AddCommand(searchQueriesCmd)
	searchQueriesCmd.AddCommand(
		searchQueriesAddCmd,
		searchQueriesRemoveCmd,
		searchQueriesListCmd,
		searchQueriesClearCmd,
		searchQueriesStageCmd,
	)

	searchQueriesAddCmd.Flags().String("id", "", "Query identifier (generated when omitted)")
	searchQueriesAddCmd.Flags().String("tenant", "", "Tenant id")
	searchQueriesAddCmd.Flags().String("query", "", "Executed search text")
	searchQueriesAddCmd.Flags().Int64("results-returned", 0, "Number of results returned")
	searchQueriesAddCmd.Flags().Int64("total-results", 0, "Total results on the server")
	_ = searchQueriesAddCmd.MarkFlagRequired("tenant")
	_ = searchQueriesAddCmd.MarkFlagRequired("query")

	searchQueriesRemoveCmd.Flags().String("id", "", "Query identifier")
	_ = searchQueriesRemoveCmd.MarkFlagRequired("id")

	searchQueriesStageCmd.Flags().String("investigation-id", evidence.NewInvestigationID, "Target investigation id")
}

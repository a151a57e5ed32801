package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	"github.com/secureworks/taegis-magic/internal/errs"
	investigationsuc "github.com/secureworks/taegis-magic/internal/usecase/investigations"
)

var investigationsCmd = &cobra.Command{
	Use:   "investigations",
	Short: "Create investigations from staged evidence",
}

var investigationsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Bundle staged evidence into a new investigation",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		title, _ := cmd.Flags().GetString("title")
		keyFindingsPath, _ := cmd.Flags().GetString("key-findings")
		rawPriority, _ := cmd.Flags().GetString("priority")
		investigationType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")
		assigneeID, _ := cmd.Flags().GetString("assignee-id")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		tenant, _ := cmd.Flags().GetString("tenant")
		if tenant == "" {
			tenant = svc.App.Config.Taegis.TenantID
		}

		priority, err := investigationsuc.ParsePriority(rawPriority)
		if err != nil {
			return err
		}

		keyFindings, err := os.ReadFile(keyFindingsPath)
		if err != nil {
			return errs.Wrapf(err, "read key findings %q", keyFindingsPath)
		}

		result, err := svc.Investigations.Create(ctx, investigationsuc.CreateInput{
			TenantID:    tenant,
			Title:       title,
			KeyFindings: string(keyFindings),
			Priority:    priority,
			Type:        investigationType,
			Status:      status,
			AssigneeID:  assigneeID,
			DryRun:      dryRun,
		})
		if err != nil {
			logging.Error(ctx, "create investigation failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create investigation")
		}

		if result.DryRun {
			logging.Info(ctx, "dry run, payload not submitted", slog.String("title", title))
			return writeJSON(cmd, result.Payload)
		}
		return writeJSON(cmd, result.Created)
	}),
}

func init() {
	rootCmd.AddCommand(investigationsCmd)
	investigationsCmd.AddCommand(investigationsCreateCmd)

	investigationsCreateCmd.Flags().String("title", "", "Investigation title")
	investigationsCreateCmd.Flags().String("key-findings", "", "Path to a markdown key-findings file")
	investigationsCreateCmd.Flags().String("priority", "medium", "Priority: low, medium, high or critical")
	investigationsCreateCmd.Flags().String("type", "SECURITY_INVESTIGATION", "Investigation type")
	investigationsCreateCmd.Flags().String("status", "OPEN", "Investigation status")
	investigationsCreateCmd.Flags().String("assignee-id", "@customer", "Assignee id")
	investigationsCreateCmd.Flags().String("tenant", "", "Tenant id (defaults to taegis.tenant_id)")
	investigationsCreateCmd.Flags().Bool("dry-run", false, "Build and print the payload without submitting")
	_ = investigationsCreateCmd.MarkFlagRequired("title")
	_ = investigationsCreateCmd.MarkFlagRequired("key-findings")
}

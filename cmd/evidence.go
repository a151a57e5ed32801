package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/secureworks/taegis-magic/internal/bootstrap/logging"
	"github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Stage and inspect investigation evidence",
}

var evidenceStageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Stage resource identifiers against an investigation",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		evidenceType, file, investigationID, err := evidenceArgs(cmd)
		if err != nil {
			return err
		}

		frame, err := evidence.LoadFrame(file)
		if err != nil {
			return errs.Wrapf(err, "load frame %q", file)
		}

		summary, err := svc.Evidence.Stage(ctx, frame, evidenceType, investigationID)
		if err != nil {
			logging.Error(ctx, "stage evidence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "stage evidence")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), summary.Markdown()); err != nil {
			return errs.Wrap(err, "write stage output")
		}
		return nil
	}),
}

var evidenceUnstageCmd = &cobra.Command{
	Use:   "unstage",
	Short: "Remove staged resource identifiers from an investigation",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		evidenceType, file, investigationID, err := evidenceArgs(cmd)
		if err != nil {
			return err
		}

		frame, err := evidence.LoadFrame(file)
		if err != nil {
			return errs.Wrapf(err, "load frame %q", file)
		}

		summary, err := svc.Evidence.Unstage(ctx, frame, evidenceType, investigationID)
		if err != nil {
			logging.Error(ctx, "unstage evidence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "unstage evidence")
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), summary.Markdown()); err != nil {
			return errs.Wrap(err, "write unstage output")
		}
		return nil
	}),
}

var evidenceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List staged evidence, optionally filtered",
	RunE: withApp(func(cmd *cobra.Command, svc *appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		filter := ports.EvidenceFilter{}
		if raw, _ := cmd.Flags().GetString("type"); raw != "" {
			evidenceType, err := evidence.ParseType(raw)
			if err != nil {
				return err
			}
			filter.EvidenceType = &evidenceType
		}
		filter.TenantID, _ = cmd.Flags().GetString("tenant")
		filter.InvestigationID, _ = cmd.Flags().GetString("investigation-id")

		frame, err := svc.Evidence.Read(ctx, filter)
		if err != nil {
			logging.Error(ctx, "read evidence failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "read evidence")
		}

		return writeJSON(cmd, frame)
	}),
}

func evidenceArgs(cmd *cobra.Command) (evidence.Type, string, string, error) {
	raw, _ := cmd.Flags().GetString("type")
	evidenceType, err := evidence.ParseType(raw)
	if err != nil {
		return "", "", "", err
	}

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return "", "", "", fmt.Errorf("--file is required")
	}

	investigationID, _ := cmd.Flags().GetString("investigation-id")
	return evidenceType, file, investigationID, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Wrap(err, "encode output")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(encoded)); err != nil {
		return errs.Wrap(err, "write output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
	evidenceCmd.AddCommand(evidenceStageCmd, evidenceUnstageCmd, evidenceShowCmd)

	for _, c := range []*cobra.Command{evidenceStageCmd, evidenceUnstageCmd} {
		c.Flags().String("type", "", "Evidence type: alerts, events or search_queries")
		c.Flags().String("file", "", "JSON records file with candidate resource identifiers")
		c.Flags().String("investigation-id", evidence.NewInvestigationID, "Target investigation id")
		_ = c.MarkFlagRequired("type")
	}

	evidenceShowCmd.Flags().String("type", "", "Filter by evidence type")
	evidenceShowCmd.Flags().String("tenant", "", "Filter by tenant id")
	evidenceShowCmd.Flags().String("investigation-id", "", "Filter by investigation id")
}

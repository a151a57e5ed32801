package evidence

import (
	"context"
	"errors"
	"fmt"

	domainevidence "github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
)

// Stage appends one record per frame row for (evidenceType, row id, tenant,
// investigationID). Rows whose (evidence_type, id, investigation_id) triple
// is already staged are silently skipped; the returned summary counts rows
// matching the (evidenceType, investigationID) scope before and after.
func (s *Service) Stage(ctx context.Context, frame domainevidence.Frame, evidenceType domainevidence.Type, investigationID string) (domainevidence.ChangeSummary, error) {
	if ctx == nil {
		return domainevidence.ChangeSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainevidence.ChangeSummary{}, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return domainevidence.ChangeSummary{}, err
	}
	if investigationID == "" {
		investigationID = domainevidence.NewInvestigationID
	}

	tenantColumn, err := domainevidence.TenantIDColumn(frame)
	if err != nil {
		return domainevidence.ChangeSummary{}, err
	}

	idColumn := domainevidence.IDColumn(evidenceType)
	if !frame.Has(idColumn) {
		return domainevidence.ChangeSummary{}, fmt.Errorf("%w: %q", domainevidence.ErrMissingIDColumn, idColumn)
	}

	records := make([]domainevidence.Record, 0, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		row := frame.Row(i)
		records = append(records, domainevidence.Record{
			EvidenceType:    evidenceType,
			ID:              row[idColumn],
			TenantID:        row[tenantColumn],
			InvestigationID: investigationID,
		})
	}

	summary := domainevidence.ChangeSummary{
		Action:          "stage",
		EvidenceType:    evidenceType,
		InvestigationID: investigationID,
	}

	scope := ports.EvidenceFilter{
		EvidenceType:    &evidenceType,
		InvestigationID: investigationID,
	}

	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		before, err := s.repo.Count(txCtx, scope)
		if err != nil {
			return err
		}

		if err := s.repo.InsertIgnoreDuplicates(txCtx, records); err != nil {
			return err
		}

		after, err := s.repo.Count(txCtx, scope)
		if err != nil {
			return err
		}

		summary.Before = before
		summary.After = after
		summary.Difference = after - before
		return nil
	})
	if err != nil {
		return domainevidence.ChangeSummary{}, errs.Wrap(err, "stage investigation evidence")
	}

	return summary, nil
}

// Unstage removes exactly the staged records whose id appears in the frame
// AND whose evidence type and investigation id both match. Ids that are not
// currently staged are ignored.
func (s *Service) Unstage(ctx context.Context, frame domainevidence.Frame, evidenceType domainevidence.Type, investigationID string) (domainevidence.ChangeSummary, error) {
	if ctx == nil {
		return domainevidence.ChangeSummary{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainevidence.ChangeSummary{}, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return domainevidence.ChangeSummary{}, err
	}
	if investigationID == "" {
		investigationID = domainevidence.NewInvestigationID
	}

	// Staged frames round-trip with a generic id column; raw event search
	// output carries resource_id instead.
	idColumn := domainevidence.IDColumn(evidenceType)
	if !frame.Has(idColumn) && frame.Has("id") {
		idColumn = "id"
	}

	ids := frame.UniqueColumn(idColumn)

	summary := domainevidence.ChangeSummary{
		Action:          "unstage",
		EvidenceType:    evidenceType,
		InvestigationID: investigationID,
	}

	scope := ports.EvidenceFilter{
		EvidenceType:    &evidenceType,
		InvestigationID: investigationID,
	}

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		before, err := s.repo.Count(txCtx, scope)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteMatching(txCtx, ids, evidenceType, investigationID); err != nil {
			return err
		}

		after, err := s.repo.Count(txCtx, scope)
		if err != nil {
			return err
		}

		summary.Before = before
		summary.After = after
		summary.Difference = after - before
		return nil
	})
	if err != nil {
		return domainevidence.ChangeSummary{}, errs.Wrap(err, "unstage investigation evidence")
	}

	return summary, nil
}

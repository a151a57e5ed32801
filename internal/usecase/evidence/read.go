package evidence

import (
	"context"
	"errors"

	domainevidence "github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
)

// Read returns staged records matching the filter as a fresh frame.
// Omitted filter fields are unconstrained; present fields are ANDed.
func (s *Service) Read(ctx context.Context, filter ports.EvidenceFilter) (domainevidence.Frame, error) {
	if ctx == nil {
		return domainevidence.Frame{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainevidence.Frame{}, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return domainevidence.Frame{}, err
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return domainevidence.Frame{}, err
	}

	frame := domainevidence.NewFrame("evidence_type", "id", "tenant_id", "investigation_id")
	for _, record := range records {
		frame.Append(map[string]string{
			"evidence_type":    string(record.EvidenceType),
			"id":               record.ID,
			"tenant_id":        record.TenantID,
			"investigation_id": record.InvestigationID,
		})
	}
	return frame, nil
}

// InvestigationEvidence gathers the unique staged identifiers per evidence
// type for one tenant and investigation. An evidence type with no staged
// records yields a nil slice, which downstream payload building omits; an
// empty non-nil slice would be sent explicitly and is never produced here.
func (s *Service) InvestigationEvidence(ctx context.Context, tenantID string, investigationID string) (domainevidence.InvestigationEvidence, error) {
	if ctx == nil {
		return domainevidence.InvestigationEvidence{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainevidence.InvestigationEvidence{}, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return domainevidence.InvestigationEvidence{}, err
	}
	if investigationID == "" {
		investigationID = domainevidence.NewInvestigationID
	}

	result := domainevidence.InvestigationEvidence{
		TenantID:        tenantID,
		InvestigationID: investigationID,
	}

	for _, part := range []struct {
		evidenceType domainevidence.Type
		target       *[]string
	}{
		{domainevidence.TypeAlert, &result.Alerts},
		{domainevidence.TypeEvent, &result.Events},
		{domainevidence.TypeQuery, &result.SearchQueries},
	} {
		evidenceType := part.evidenceType
		ids, err := s.repo.DistinctIDs(ctx, ports.EvidenceFilter{
			EvidenceType:    &evidenceType,
			TenantID:        tenantID,
			InvestigationID: investigationID,
		})
		if err != nil {
			return domainevidence.InvestigationEvidence{}, err
		}
		if len(ids) > 0 {
			*part.target = ids
		}
	}

	return result, nil
}

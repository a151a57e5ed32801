package evidence

import (
	"context"
	"errors"

	domainevidence "github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
)

// InsertSearchQuery logs one executed search. InsertedTime is assigned
// here, UTC. A duplicate id fails with domain ErrDuplicateQueryID.
func (s *Service) InsertSearchQuery(ctx context.Context, query domainevidence.SearchQuery) (domainevidence.SearchQuery, error) {
	if ctx == nil {
		return domainevidence.SearchQuery{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return domainevidence.SearchQuery{}, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return domainevidence.SearchQuery{}, err
	}
	if query.ID == "" {
		return domainevidence.SearchQuery{}, errors.New("search query id is required")
	}

	query.InsertedTime = s.now().UTC().Format(domainevidence.InsertedTimeLayout)

	if err := s.queries.Insert(ctx, query); err != nil {
		return domainevidence.SearchQuery{}, err
	}
	return query, nil
}

// DeleteSearchQuery removes one logged query; absent ids are a no-op.
func (s *Service) DeleteSearchQuery(ctx context.Context, id string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return err
	}

	return s.queries.Delete(ctx, id)
}

// ClearSearchQueries empties the search-query log.
func (s *Service) ClearSearchQueries(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return err
	}

	return s.queries.Clear(ctx)
}

// ListSearchQueries returns the full log, insertion order.
func (s *Service) ListSearchQueries(ctx context.Context) ([]domainevidence.SearchQuery, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if err := s.check(); err != nil {
		return nil, err
	}

	return s.queries.List(ctx)
}

// StageSearchQueries stages every logged query as search_queries evidence
// against the given investigation, then clears the log, in one transaction.
func (s *Service) StageSearchQueries(ctx context.Context, investigationID string) (domainevidence.ChangeSummary, error) {
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

	evidenceType := domainevidence.TypeQuery
	summary := domainevidence.ChangeSummary{
		Action:          "stage",
		EvidenceType:    evidenceType,
		InvestigationID: investigationID,
	}

	scope := ports.EvidenceFilter{
		EvidenceType:    &evidenceType,
		InvestigationID: investigationID,
	}

	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		queries, err := s.queries.List(txCtx)
		if err != nil {
			return err
		}

		records := make([]domainevidence.Record, 0, len(queries))
		for _, query := range queries {
			records = append(records, domainevidence.Record{
				EvidenceType:    evidenceType,
				ID:              query.ID,
				TenantID:        query.TenantID,
				InvestigationID: investigationID,
			})
		}

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

		if err := s.queries.Clear(txCtx); err != nil {
			return err
		}

		summary.Before = before
		summary.After = after
		summary.Difference = after - before
		return nil
	})
	if err != nil {
		return domainevidence.ChangeSummary{}, errs.Wrap(err, "stage search queries")
	}

	return summary, nil
}

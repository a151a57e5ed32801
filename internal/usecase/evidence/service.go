package evidence

import (
	"errors"
	"time"

	"github.com/secureworks/taegis-magic/internal/ports"
)

// Service implements the evidence-staging store operations on top of the
// repository ports. It is safe for single-writer, single-process use only:
// stage and unstage wrap their count/mutate/count sequence in one unit of
// work, but concurrent writers against the same database file require
// external serialization.
type Service struct {
	repo    ports.EvidenceRepository
	queries ports.SearchQueryRepository
	uow     ports.UnitOfWork
	now     func() time.Time
}

func NewService(repo ports.EvidenceRepository, queries ports.SearchQueryRepository, uow ports.UnitOfWork) *Service {
	return &Service{
		repo:    repo,
		queries: queries,
		uow:     uow,
		now:     time.Now,
	}
}

func (s *Service) check() error {
	if s.repo == nil {
		return errors.New("evidence repository is required")
	}
	if s.queries == nil {
		return errors.New("search query repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

package investigations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/ports"
	evidenceuc "github.com/secureworks/taegis-magic/internal/usecase/evidence"
)

// Service builds investigation-creation payloads from staged evidence and
// submits them through the injected client port.
type Service struct {
	evidence *evidenceuc.Service
	client   ports.InvestigationsClient
}

func NewService(evidence *evidenceuc.Service, client ports.InvestigationsClient) *Service {
	return &Service{
		evidence: evidence,
		client:   client,
	}
}

var priorities = map[string]int{
	"low":      1,
	"medium":   2,
	"high":     3,
	"critical": 4,
}

func ParsePriority(raw string) (int, error) {
	priority, ok := priorities[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("invalid priority %q", raw)
	}
	return priority, nil
}

type CreateInput struct {
	TenantID    string
	Title       string
	KeyFindings string
	Priority    int
	Type        string
	Status      string
	AssigneeID  string
	DryRun      bool
}

type CreateResult struct {
	Payload ports.CreateInvestigationInput
	Created *ports.CreatedInvestigation
	DryRun  bool
}

// Create gathers the evidence staged under "NEW" for the tenant and bundles
// it into one creation call. Evidence types with nothing staged stay nil in
// the payload and are omitted on the wire; they are never sent as empty
// lists, which would overwrite server-side defaults.
func (s *Service) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	if ctx == nil {
		return CreateResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return CreateResult{}, errs.Wrap(err, "check context")
	}
	if s.evidence == nil {
		return CreateResult{}, errors.New("evidence service is required")
	}
	if in.Title == "" {
		return CreateResult{}, errors.New("title is required")
	}

	staged, err := s.evidence.InvestigationEvidence(ctx, in.TenantID, "")
	if err != nil {
		return CreateResult{}, errs.Wrap(err, "gather staged evidence")
	}

	payload := ports.CreateInvestigationInput{
		Title:         in.Title,
		KeyFindings:   in.KeyFindings,
		Priority:      in.Priority,
		Status:        in.Status,
		Type:          in.Type,
		AssigneeID:    in.AssigneeID,
		Alerts:        staged.Alerts,
		Events:        staged.Events,
		SearchQueries: staged.SearchQueries,
	}

	if in.DryRun {
		return CreateResult{Payload: payload, DryRun: true}, nil
	}

	if s.client == nil {
		return CreateResult{}, errors.New("investigations client is not configured")
	}

	created, err := s.client.CreateInvestigation(ctx, in.TenantID, payload)
	if err != nil {
		return CreateResult{}, errs.Wrap(err, "create investigation")
	}

	return CreateResult{Payload: payload, Created: &created}, nil
}

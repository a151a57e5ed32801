package ports

import "context"

// The Taegis GraphQL transport is an external collaborator. These ports
// describe the slices of it the commands consume; implementations are
// provided by the embedding application (or by fakes in tests).

// SearchRequest carries one remote search. CallerName identifies this
// client in the service-side query audit metadata.
type SearchRequest struct {
	TenantID   string
	Query      string
	Limit      int
	CallerName string
}

// AlertsPage is one page of an alerts service search.
type AlertsPage struct {
	SearchID     string
	PartID       int
	TotalParts   int
	TotalResults int64
	QueryID      string
	Rows         []map[string]any
}

// AlertsClient runs a Taegis alerts search: one Search call for the first
// page, then Poll per remaining part id.
type AlertsClient interface {
	Search(ctx context.Context, req SearchRequest) (AlertsPage, error)
	Poll(ctx context.Context, searchID string, partID int) (AlertsPage, error)
}

// EventsPage is one page of an events query; Next is the continuation
// token, empty when the result set is exhausted.
type EventsPage struct {
	QueryID      string
	Next         string
	TotalResults int64
	Rows         []map[string]any
}

type EventsClient interface {
	Query(ctx context.Context, req SearchRequest) (EventsPage, error)
	Page(ctx context.Context, next string) (EventsPage, error)
}

// CreateInvestigationInput is the creation payload. Nil evidence slices are
// omitted on the wire; empty non-nil slices are sent explicitly.
type CreateInvestigationInput struct {
	Title         string   `json:"title"`
	KeyFindings   string   `json:"keyFindings"`
	Priority      int      `json:"priority"`
	Status        string   `json:"status"`
	Type          string   `json:"type"`
	AssigneeID    string   `json:"assigneeId"`
	Alerts        []string `json:"alerts,omitempty"`
	Events        []string `json:"events,omitempty"`
	SearchQueries []string `json:"searchQueries,omitempty"`
}

// CreatedInvestigation is the server echo of a creation call.
type CreatedInvestigation struct {
	ID         string `json:"id"`
	ShortID    string `json:"shortId"`
	TenantID   string `json:"tenantId"`
	CreatedAt  string `json:"createdAt"`
	AssigneeID string `json:"assigneeId"`
}

type InvestigationsClient interface {
	CreateInvestigation(ctx context.Context, tenantID string, input CreateInvestigationInput) (CreatedInvestigation, error)
}

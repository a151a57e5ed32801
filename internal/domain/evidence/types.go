package evidence

import (
	"fmt"
	"strings"
)

// Type tags the kind of resource staged against an investigation.
// Coerce raw strings once at the CLI edge with ParseType; store and
// usecase logic only ever see the typed value.
type Type string

const (
	TypeAlert Type = "alerts"
	TypeEvent Type = "events"
	TypeQuery Type = "search_queries"
)

func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "alert", "alerts":
		return TypeAlert, nil
	case "event", "events":
		return TypeEvent, nil
	case "query", "queries", "search_query", "search_queries":
		return TypeQuery, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEvidenceType, raw)
	}
}

func (t Type) String() string { return string(t) }

// NewInvestigationID marks evidence staged for an investigation that has
// not been created yet.
const NewInvestigationID = "NEW"

// Record is one staged resource. The (ID, InvestigationID) pair is unique:
// re-staging the same resource against the same investigation is a no-op.
type Record struct {
	EvidenceType    Type   `json:"evidence_type"`
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	InvestigationID string `json:"investigation_id"`
}

// ChangeSummary reports the effect of a stage or unstage call, scoped to
// the (evidence type, investigation) pair the call targeted.
type ChangeSummary struct {
	Action          string `json:"action"`
	EvidenceType    Type   `json:"evidence_type"`
	InvestigationID string `json:"investigation_id"`
	Before          int64  `json:"before"`
	After           int64  `json:"after"`
	Difference      int64  `json:"difference"`
}

// Markdown renders the summary the way the notebook layer displays it.
func (c ChangeSummary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Investigation ID**: %s\n\n", c.InvestigationID)
	b.WriteString("| Action | Evidence Type | Staged Before Change | Staged After Change | Difference |\n")
	b.WriteString("| ------ | ------------- | -------------------- | ------------------- | ---------- |\n")
	fmt.Fprintf(&b, "| %s | %s | %d | %d | %d |\n", c.Action, c.EvidenceType, c.Before, c.After, c.Difference)
	return b.String()
}

// InvestigationEvidence aggregates the staged identifiers for one tenant
// and investigation. A nil slice means no evidence of that kind was staged
// and the field is omitted from the downstream creation payload; an empty
// non-nil slice would be sent explicitly and can overwrite server-side
// defaults, so the two must never be conflated.
type InvestigationEvidence struct {
	TenantID        string   `json:"tenant_id"`
	InvestigationID string   `json:"investigation_id"`
	Alerts          []string `json:"alerts,omitempty"`
	Events          []string `json:"events,omitempty"`
	SearchQueries   []string `json:"search_queries,omitempty"`
}

// SearchQuery is one logged search execution. InsertedTime is assigned by
// the store at insert, UTC, formatted as 2006-01-02T15:04:05Z.
type SearchQuery struct {
	ID              string `json:"id"`
	TenantID        string `json:"tenant_id"`
	Query           string `json:"query"`
	ResultsReturned int64  `json:"results_returned"`
	TotalResults    int64  `json:"total_results"`
	InsertedTime    string `json:"inserted_time"`
}

// InsertedTimeLayout is the storage format for SearchQuery.InsertedTime.
const InsertedTimeLayout = "2006-01-02T15:04:05Z"

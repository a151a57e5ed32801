package ports

import (
	"context"

	"github.com/secureworks/taegis-magic/internal/domain/evidence"
)

// EvidenceFilter narrows reads of the investigation_evidence table.
// A nil/empty field is unconstrained; populated fields are ANDed.
type EvidenceFilter struct {
	EvidenceType    *evidence.Type
	TenantID        string
	InvestigationID string
}

// EvidenceRepository persists staged investigation evidence. Uniqueness of
// (evidence_type, id, investigation_id) is enforced by the table's composite
// primary key, not by application-level duplicate checks.
type EvidenceRepository interface {
	// InsertIgnoreDuplicates appends records, silently skipping rows whose
	// (evidence_type, id, investigation_id) triple already exists.
	InsertIgnoreDuplicates(ctx context.Context, records []evidence.Record) error
	// DeleteMatching removes records whose id is in ids AND whose evidence
	// type and investigation id both match. Unknown ids are ignored.
	DeleteMatching(ctx context.Context, ids []string, evidenceType evidence.Type, investigationID string) error
	Count(ctx context.Context, filter EvidenceFilter) (int64, error)
	List(ctx context.Context, filter EvidenceFilter) ([]evidence.Record, error)
	// DistinctIDs returns the unique id values matching the filter,
	// ordered by id ascending.
	DistinctIDs(ctx context.Context, filter EvidenceFilter) ([]string, error)
}

// SearchQueryRepository persists the executed-search log. The id column is
// the primary key; inserting a duplicate id fails with
// evidence.ErrDuplicateQueryID rather than replacing the existing row.
type SearchQueryRepository interface {
	Insert(ctx context.Context, query evidence.SearchQuery) error
	// Delete removes the record with the given id; absent ids are a no-op.
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]evidence.SearchQuery, error)
}

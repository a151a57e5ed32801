package model

// Evidence rows are unique per (evidence_type, id, investigation_id): a
// resource can be staged at most once against a given investigation per
// evidence type, so the same id staged as an alert and as an event yields
// two independent rows.
type Evidence struct {
	EvidenceType    string `gorm:"column:evidence_type;type:text;primaryKey"`
	ID              string `gorm:"column:id;type:text;primaryKey"`
	TenantID        string `gorm:"column:tenant_id;type:text;not null"`
	InvestigationID string `gorm:"column:investigation_id;type:text;primaryKey"`
}

func (Evidence) TableName() string {
	return "investigation_evidence"
}

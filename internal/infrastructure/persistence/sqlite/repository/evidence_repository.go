package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/model"
	"github.com/secureworks/taegis-magic/internal/ports"
)

type EvidenceRepository struct {
	db *gorm.DB
}

var _ ports.EvidenceRepository = (*EvidenceRepository)(nil)

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

func (r *EvidenceRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *EvidenceRepository) InsertIgnoreDuplicates(ctx context.Context, records []evidence.Record) error {
	if len(records) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.Evidence, 0, len(records))
	for _, record := range records {
		rows = append(rows, model.Evidence{
			EvidenceType:    string(record.EvidenceType),
			ID:              record.ID,
			TenantID:        record.TenantID,
			InvestigationID: record.InvestigationID,
		})
	}

	// INSERT OR IGNORE: the composite primary key silently drops
	// re-staged (evidence_type, id, investigation_id) triples.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert evidence records")
	}
	return nil
}

func (r *EvidenceRepository) DeleteMatching(ctx context.Context, ids []string, evidenceType evidence.Type, investigationID string) error {
	if len(ids) == 0 {
		return nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.
		Where("id IN ?", ids).
		Where("evidence_type = ?", string(evidenceType)).
		Where("investigation_id = ?", investigationID).
		Delete(&model.Evidence{}).Error; err != nil {
		return errs.Wrap(err, "delete evidence records")
	}
	return nil
}

func (r *EvidenceRepository) Count(ctx context.Context, filter ports.EvidenceFilter) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := applyFilter(db.Model(&model.Evidence{}), filter).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count evidence records")
	}
	return count, nil
}

func (r *EvidenceRepository) List(ctx context.Context, filter ports.EvidenceFilter) ([]evidence.Record, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Evidence
	if err := applyFilter(db.Model(&model.Evidence{}), filter).
		Order("evidence_type asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query evidence records")
	}

	records := make([]evidence.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, evidence.Record{
			EvidenceType:    evidence.Type(row.EvidenceType),
			ID:              row.ID,
			TenantID:        row.TenantID,
			InvestigationID: row.InvestigationID,
		})
	}
	return records, nil
}

func (r *EvidenceRepository) DistinctIDs(ctx context.Context, filter ports.EvidenceFilter) ([]string, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := applyFilter(db.Model(&model.Evidence{}), filter).
		Distinct("id").
		Order("id asc").
		Pluck("id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query distinct evidence ids")
	}
	return ids, nil
}

func applyFilter(query *gorm.DB, filter ports.EvidenceFilter) *gorm.DB {
	if filter.EvidenceType != nil {
		query = query.Where("evidence_type = ?", string(*filter.EvidenceType))
	}
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.InvestigationID != "" {
		query = query.Where("investigation_id = ?", filter.InvestigationID)
	}
	return query
}

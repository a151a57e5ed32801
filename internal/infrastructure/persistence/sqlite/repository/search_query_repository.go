package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/secureworks/taegis-magic/internal/domain/evidence"
	"github.com/secureworks/taegis-magic/internal/errs"
	"github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/model"
	"github.com/secureworks/taegis-magic/internal/ports"
)

type SearchQueryRepository struct {
	db *gorm.DB
}

var _ ports.SearchQueryRepository = (*SearchQueryRepository)(nil)

func NewSearchQueryRepository(db *gorm.DB) *SearchQueryRepository {
	return &SearchQueryRepository{db: db}
}

func (r *SearchQueryRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *SearchQueryRepository) Insert(ctx context.Context, query evidence.SearchQuery) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.SearchQuery{
		ID:              query.ID,
		TenantID:        query.TenantID,
		Query:           query.Query,
		ResultsReturned: query.ResultsReturned,
		TotalResults:    query.TotalResults,
		InsertedTime:    query.InsertedTime,
	}

	if err := db.Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %q", evidence.ErrDuplicateQueryID, query.ID)
		}
		return errs.Wrap(err, "insert search query")
	}
	return nil
}

func (r *SearchQueryRepository) Delete(ctx context.Context, id string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("id = ?", id).Delete(&model.SearchQuery{}).Error; err != nil {
		return errs.Wrap(err, "delete search query")
	}
	return nil
}

func (r *SearchQueryRepository) Clear(ctx context.Context) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("1 = 1").Delete(&model.SearchQuery{}).Error; err != nil {
		return errs.Wrap(err, "clear search queries")
	}
	return nil
}

func (r *SearchQueryRepository) List(ctx context.Context) ([]evidence.SearchQuery, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.SearchQuery
	if err := db.Model(&model.SearchQuery{}).Order("inserted_time asc, id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query search queries")
	}

	queries := make([]evidence.SearchQuery, 0, len(rows))
	for _, row := range rows {
		queries = append(queries, evidence.SearchQuery{
			ID:              row.ID,
			TenantID:        row.TenantID,
			Query:           row.Query,
			ResultsReturned: row.ResultsReturned,
			TotalResults:    row.TotalResults,
			InsertedTime:    row.InsertedTime,
		})
	}
	return queries, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// The pure-Go sqlite driver reports primary key violations as a
	// constraint error without a typed wrapper.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/agoodis/product-management-system/internal/model"
)

// ImportLogRepository persists the append-only import history. A log row is
// created once when the run starts and finalized exactly once at run end;
// nothing ever mutates it afterwards.
type ImportLogRepository interface {
	Create(ctx context.Context, l *model.ImportLog) error
	Finalize(ctx context.Context, l *model.ImportLog) error
	ListRecent(ctx context.Context, limit int) ([]model.ImportLog, error)
}

type importLogRepo struct{ db *gorm.DB }

func NewImportLogRepository(db *gorm.DB) ImportLogRepository {
	return &importLogRepo{db: db}
}

func (r *importLogRepo) Create(ctx context.Context, l *model.ImportLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *importLogRepo) Finalize(ctx context.Context, l *model.ImportLog) error {
	return r.db.WithContext(ctx).Model(&model.ImportLog{}).
		Where("id = ?", l.ID).
		Updates(map[string]interface{}{
			"status":            l.Status,
			"records_processed": l.RecordsProcessed,
			"records_added":     l.RecordsAdded,
			"records_updated":   l.RecordsUpdated,
			"records_failed":    l.RecordsFailed,
			"error_message":     l.ErrorMessage,
		}).Error
}

func (r *importLogRepo) ListRecent(ctx context.Context, limit int) ([]model.ImportLog, error) {
	var logs []model.ImportLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

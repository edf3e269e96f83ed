package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mims/backend/internal/domain/bulk"
	"github.com/mims/backend/internal/domain/shared"
)

// GormUploadLogRepository implements UploadLogRepository using GORM
type GormUploadLogRepository struct {
	db *gorm.DB
}

// NewGormUploadLogRepository creates a new GormUploadLogRepository
func NewGormUploadLogRepository(db *gorm.DB) *GormUploadLogRepository {
	return &GormUploadLogRepository{db: db}
}

// FindByID finds an upload log by its ID
func (r *GormUploadLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.UploadLog, error) {
	var log bulk.UploadLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindAll finds upload logs matching the filter, newest first
func (r *GormUploadLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]bulk.UploadLog, error) {
	var logs []bulk.UploadLog
	query := r.db.WithContext(ctx).Model(&bulk.UploadLog{})
	if filter.OrderBy == "" {
		filter.OrderBy = "uploaded_at"
	}
	if err := applyFilter(query, filter, UploadLogSortFields).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByType finds upload logs of the given type
func (r *GormUploadLogRepository) FindByType(ctx context.Context, uploadType bulk.UploadType, filter shared.Filter) ([]bulk.UploadLog, error) {
	var logs []bulk.UploadLog
	query := r.db.WithContext(ctx).Model(&bulk.UploadLog{}).
		Where("type = ?", uploadType)
	if filter.OrderBy == "" {
		filter.OrderBy = "uploaded_at"
	}
	if err := applyFilter(query, filter, UploadLogSortFields).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Create appends an upload log
func (r *GormUploadLogRepository) Create(ctx context.Context, log *bulk.UploadLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Count counts upload logs matching the filter
func (r *GormUploadLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&bulk.UploadLog{})
	if uploadType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", uploadType)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

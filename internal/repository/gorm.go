package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/covergen/pkg/errors"
)

// GormRunRepository implements RunRepository using GORM.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun records a finished generation run.
func (r *GormRunRepository) SaveRun(ctx context.Context, run *GenerationRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Wrap(errors.CodeDatabaseError, "failed to save run", err)
	}
	return nil
}

// GetRunByUUID retrieves a run by its UUID.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, uuid string) (*GenerationRun, error) {
	var run GenerationRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", uuid).First(&run).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(errors.CodeDatabaseError,
				fmt.Sprintf("run not found: %s", uuid), err)
		}
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get run", err)
	}
	return &run, nil
}

// ListRecentRuns retrieves the most recent runs, newest first.
func (r *GormRunRepository) ListRecentRuns(ctx context.Context, limit int) ([]*GenerationRun, error) {
	var runs []*GenerationRun
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to list runs", err)
	}
	return runs, nil
}

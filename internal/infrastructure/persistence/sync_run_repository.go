package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backend/internal/domain/shared"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// GormSyncRunRepository implements SyncRunRepository using GORM. The
// in-memory aggregates are serialized to jsonb columns on save and hydrated
// back on load.
type GormSyncRunRepository struct {
	db *gorm.DB
}

var _ syncdomain.SyncRunRepository = (*GormSyncRunRepository)(nil)

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Save inserts or updates a run row
func (r *GormSyncRunRepository) Save(ctx context.Context, run *syncdomain.SyncRun) error {
	if err := marshalRun(run); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(run).Error
}

// FindLatest returns the most recently started run
func (r *GormSyncRunRepository) FindLatest(ctx context.Context) (*syncdomain.SyncRun, error) {
	var run syncdomain.SyncRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := unmarshalRun(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

// FindRecent returns the most recent runs, newest first
func (r *GormSyncRunRepository) FindRecent(ctx context.Context, limit int) ([]syncdomain.SyncRun, error) {
	var runs []syncdomain.SyncRun
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	for i := range runs {
		if err := unmarshalRun(&runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func marshalRun(run *syncdomain.SyncRun) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return err
	}
	run.CountsJSON = string(counts)

	itemErrors, err := json.Marshal(run.ItemErrors)
	if err != nil {
		return err
	}
	run.ItemErrorsJSON = string(itemErrors)

	manualReview, err := json.Marshal(run.ManualReview)
	if err != nil {
		return err
	}
	run.ManualReviewJSON = string(manualReview)
	return nil
}

func unmarshalRun(run *syncdomain.SyncRun) error {
	run.Counts = make(map[syncdomain.RecordKind]*syncdomain.KindCounts)
	if run.CountsJSON != "" {
		if err := json.Unmarshal([]byte(run.CountsJSON), &run.Counts); err != nil {
			return err
		}
	}
	if run.ItemErrorsJSON != "" {
		if err := json.Unmarshal([]byte(run.ItemErrorsJSON), &run.ItemErrors); err != nil {
			return err
		}
	}
	if run.ManualReviewJSON != "" {
		if err := json.Unmarshal([]byte(run.ManualReviewJSON), &run.ManualReview); err != nil {
			return err
		}
	}
	return nil
}

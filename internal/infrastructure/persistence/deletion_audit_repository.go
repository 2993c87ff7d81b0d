package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/estatedesk/backend/internal/domain/shared"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// GormDeletionAuditRepository implements DeletionAuditRepository using GORM
type GormDeletionAuditRepository struct {
	db *gorm.DB
}

var _ syncdomain.DeletionAuditRepository = (*GormDeletionAuditRepository)(nil)

// NewGormDeletionAuditRepository creates a new GormDeletionAuditRepository
func NewGormDeletionAuditRepository(db *gorm.DB) *GormDeletionAuditRepository {
	return &GormDeletionAuditRepository{db: db}
}

// Create persists a new audit row
func (r *GormDeletionAuditRepository) Create(ctx context.Context, audit *syncdomain.DeletionAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

// LatestEligible returns the most recent recoverable audit row for the key
func (r *GormDeletionAuditRepository) LatestEligible(ctx context.Context, kind syncdomain.RecordKind, businessKey string) (*syncdomain.DeletionAudit, error) {
	var audit syncdomain.DeletionAudit
	if err := r.db.WithContext(ctx).
		Where("record_kind = ? AND business_key = ? AND can_recover = ? AND recovered_at IS NULL",
			kind, businessKey, true).
		Order("deleted_at DESC").
		First(&audit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &audit, nil
}

// Update persists changes to an audit row
func (r *GormDeletionAuditRepository) Update(ctx context.Context, audit *syncdomain.DeletionAudit) error {
	return r.db.WithContext(ctx).Save(audit).Error
}

// FindByKey returns all audit rows for a business key, newest first
func (r *GormDeletionAuditRepository) FindByKey(ctx context.Context, kind syncdomain.RecordKind, businessKey string) ([]syncdomain.DeletionAudit, error) {
	var audits []syncdomain.DeletionAudit
	if err := r.db.WithContext(ctx).
		Where("record_kind = ? AND business_key = ?", kind, businessKey).
		Order("deleted_at DESC").
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

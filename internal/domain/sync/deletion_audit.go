package sync

import (
	"context"
	"time"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// RecordKind identifies which record family an audit or sync phase refers to
type RecordKind string

const (
	KindSeller RecordKind = "seller"
	KindBuyer  RecordKind = "buyer"
)

// DeletionAudit is one immutable row per soft-delete event. The full record
// snapshot is written before the live row is mutated, so a crash between the
// two steps never loses recoverability.
type DeletionAudit struct {
	shared.BaseEntity
	RecordKind  RecordKind `gorm:"type:varchar(20);not null;index:idx_deletion_audits_kind_key,priority:1"`
	BusinessKey string     `gorm:"type:varchar(50);not null;index:idx_deletion_audits_kind_key,priority:2"`
	Snapshot    string     `gorm:"type:jsonb;not null"`
	DeletedBy   string     `gorm:"type:varchar(100);not null"`
	DeletedAt   time.Time  `gorm:"not null"`
	CanRecover  bool       `gorm:"not null;default:true"`
	RecoveredAt *time.Time
	RecoveredBy string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (DeletionAudit) TableName() string {
	return "deletion_audits"
}

// NewDeletionAudit creates an audit row for a soft delete about to happen
func NewDeletionAudit(kind RecordKind, businessKey, snapshot, actor string) *DeletionAudit {
	return &DeletionAudit{
		BaseEntity:  shared.NewBaseEntity(),
		RecordKind:  kind,
		BusinessKey: businessKey,
		Snapshot:    snapshot,
		DeletedBy:   actor,
		DeletedAt:   time.Now(),
		CanRecover:  true,
	}
}

// Eligible reports whether this audit row permits recovery
func (a *DeletionAudit) Eligible() bool {
	return a.CanRecover && a.RecoveredAt == nil
}

// MarkRecovered stamps the audit row; a stamped row is never eligible again
func (a *DeletionAudit) MarkRecovered(actor string) {
	now := time.Now()
	a.RecoveredAt = &now
	a.RecoveredBy = actor
	a.Touch()
}

// DeletionAuditRepository persists deletion audit rows
type DeletionAuditRepository interface {
	Create(ctx context.Context, audit *DeletionAudit) error

	// LatestEligible returns the most recent non-recovered audit row with
	// can_recover = true for the key, or shared.ErrNotFound
	LatestEligible(ctx context.Context, kind RecordKind, businessKey string) (*DeletionAudit, error)

	Update(ctx context.Context, audit *DeletionAudit) error

	FindByKey(ctx context.Context, kind RecordKind, businessKey string) ([]DeletionAudit, error)
}

package sync

import (
	"context"
	"time"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// Trigger identifies what started a pass
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// RunStatus is the lifecycle state of one orchestration pass
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusPartial RunStatus = "PARTIAL"
	RunStatusFailed  RunStatus = "FAILED"
)

// KindCounts aggregates per-phase outcomes for one record kind
type KindCounts struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// ItemError is one record-level failure; item errors never abort a pass
type ItemError struct {
	Kind    RecordKind `json:"kind"`
	Key     string     `json:"key"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
}

// ManualReviewItem is a key whose deletion was blocked and needs a human
type ManualReviewItem struct {
	Kind   RecordKind `json:"kind"`
	Key    string     `json:"key"`
	Reason string     `json:"reason"`
}

// SyncRun records one orchestration pass. Created at run start, finalized
// at run end, never mutated after finalization.
type SyncRun struct {
	shared.BaseEntity
	Trigger      Trigger   `gorm:"type:varchar(20);not null"`
	Status       RunStatus `gorm:"type:varchar(20);not null"`
	StartedAt    time.Time `gorm:"not null;index"`
	FinishedAt   *time.Time
	Counts       map[RecordKind]*KindCounts `gorm:"-"`
	ItemErrors   []ItemError                `gorm:"-"`
	ManualReview []ManualReviewItem         `gorm:"-"`
	// serialized forms of the maps above, for persistence
	CountsJSON       string `gorm:"column:counts;type:jsonb"`
	ItemErrorsJSON   string `gorm:"column:item_errors;type:jsonb"`
	ManualReviewJSON string `gorm:"column:manual_review;type:jsonb"`
}

// TableName returns the table name for GORM
func (SyncRun) TableName() string {
	return "sync_runs"
}

// NewSyncRun starts a new pass record
func NewSyncRun(trigger Trigger) *SyncRun {
	return &SyncRun{
		BaseEntity: shared.NewBaseEntity(),
		Trigger:    trigger,
		Status:     RunStatusRunning,
		StartedAt:  time.Now(),
		Counts:     make(map[RecordKind]*KindCounts),
	}
}

func (r *SyncRun) counts(kind RecordKind) *KindCounts {
	c, ok := r.Counts[kind]
	if !ok {
		c = &KindCounts{}
		r.Counts[kind] = c
	}
	return c
}

// InitCounts ensures a zero counter row exists for a kind so a pass that
// records no mutations still reports explicit zeros
func (r *SyncRun) InitCounts(kind RecordKind) { r.counts(kind) }

// RecordAdded bumps the added counter for a kind
func (r *SyncRun) RecordAdded(kind RecordKind) { r.counts(kind).Added++ }

// RecordUpdated bumps the updated counter for a kind
func (r *SyncRun) RecordUpdated(kind RecordKind) { r.counts(kind).Updated++ }

// RecordDeleted bumps the deleted counter for a kind
func (r *SyncRun) RecordDeleted(kind RecordKind) { r.counts(kind).Deleted++ }

// RecordFailure appends an item-level error and bumps the failed counter
func (r *SyncRun) RecordFailure(kind RecordKind, key, code, message string) {
	r.counts(kind).Failed++
	r.ItemErrors = append(r.ItemErrors, ItemError{
		Kind:    kind,
		Key:     key,
		Code:    code,
		Message: message,
	})
}

// RecordManualReview surfaces a deletion that was blocked by the safety gate
func (r *SyncRun) RecordManualReview(kind RecordKind, key, reason string) {
	r.ManualReview = append(r.ManualReview, ManualReviewItem{
		Kind:   kind,
		Key:    key,
		Reason: reason,
	})
}

// TotalFailed returns the failure count across all kinds
func (r *SyncRun) TotalFailed() int {
	n := 0
	for _, c := range r.Counts {
		n += c.Failed
	}
	return n
}

// TotalMutations returns added+updated+deleted across all kinds
func (r *SyncRun) TotalMutations() int {
	n := 0
	for _, c := range r.Counts {
		n += c.Added + c.Updated + c.Deleted
	}
	return n
}

// Finalize stamps the end of the pass and derives its status
func (r *SyncRun) Finalize() {
	now := time.Now()
	r.FinishedAt = &now

	switch {
	case r.TotalFailed() == 0:
		r.Status = RunStatusSuccess
	case r.TotalMutations() > 0:
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusFailed
	}
}

// Fail marks the whole pass failed (initialization-level error)
func (r *SyncRun) Fail() {
	now := time.Now()
	r.FinishedAt = &now
	r.Status = RunStatusFailed
}

// SyncRunRepository persists pass results so the status query survives restarts
type SyncRunRepository interface {
	Save(ctx context.Context, run *SyncRun) error
	FindLatest(ctx context.Context) (*SyncRun, error)
	FindRecent(ctx context.Context, limit int) ([]SyncRun, error)
}

package syncapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/buyer"
	"github.com/estatedesk/backend/internal/domain/shared"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// BuyerExecutor applies detected buyer drift to the relational store.
// Buyers have no dependent entity, so the insert and delete paths are the
// seller paths minus the property handling.
type BuyerExecutor struct {
	source syncdomain.TabularSource
	mapper *BuyerMapper
	buyers buyer.BuyerRepository
	audits syncdomain.DeletionAuditRepository
	logger *zap.Logger
}

// NewBuyerExecutor creates a BuyerExecutor
func NewBuyerExecutor(
	source syncdomain.TabularSource,
	mapper *BuyerMapper,
	buyers buyer.BuyerRepository,
	audits syncdomain.DeletionAuditRepository,
	logger *zap.Logger,
) *BuyerExecutor {
	return &BuyerExecutor{
		source: source,
		mapper: mapper,
		buyers: buyers,
		audits: audits,
		logger: logger,
	}
}

// SyncMissing upserts every externally-present key the store lacks
func (e *BuyerExecutor) SyncMissing(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
	for _, key := range diff.Missing {
		row, ok := diff.External[key]
		if !ok {
			continue
		}
		b, err := e.mapper.MapToDomain(row)
		if err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		if err := e.buyers.Upsert(ctx, b); err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		run.RecordAdded(syncdomain.KindBuyer)
	}
}

// SyncChanged patches every key whose compared fields drifted
func (e *BuyerExecutor) SyncChanged(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
	for _, key := range diff.Changed {
		row, ok := diff.External[key]
		if !ok {
			continue
		}
		if err := e.buyers.Patch(ctx, key, e.mapper.MapToPatch(row)); err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		run.RecordUpdated(syncdomain.KindBuyer)
	}
}

// SyncVanished soft-deletes keys that disappeared from the sheet after the
// fresh re-read confirms they are really gone
func (e *BuyerExecutor) SyncVanished(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
	if len(diff.Vanished) == 0 {
		return
	}

	fresh, err := e.freshKeys(ctx)
	if err != nil {
		for _, key := range diff.Vanished {
			e.recordFailure(run, key, err)
		}
		return
	}

	for _, key := range diff.Vanished {
		if _, stillPresent := fresh[key]; stillPresent {
			e.logger.Info("skipping deletion, key reappeared on fresh read",
				zap.String("code", key))
			continue
		}
		e.deleteOne(ctx, run, key)
	}
}

func (e *BuyerExecutor) deleteOne(ctx context.Context, run *syncdomain.SyncRun, key string) {
	b, err := e.buyers.FindByCode(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return
		}
		e.recordFailure(run, key, err)
		return
	}

	// A buyer mid-transaction is still operationally active even if a staff
	// member pruned the row; surface instead of deleting.
	if b.ContractDate != nil && b.SettlementDate != nil && b.SettlementDate.After(time.Now()) {
		run.RecordManualReview(syncdomain.KindBuyer, key,
			"contract signed with settlement pending")
		return
	}

	snapshot, err := e.mapper.Snapshot(b)
	if err != nil {
		e.recordFailure(run, key, err)
		return
	}
	audit := syncdomain.NewDeletionAudit(syncdomain.KindBuyer, key, snapshot, deletedByAutomation)
	if err := e.audits.Create(ctx, audit); err != nil {
		e.recordFailure(run, key, err)
		return
	}

	if err := e.buyers.MarkDeleted(ctx, key, time.Now()); err != nil {
		e.recordFailure(run, key, err)
		return
	}
	run.RecordDeleted(syncdomain.KindBuyer)
}

// Recover restores the latest recoverable deletion for the key
func (e *BuyerExecutor) Recover(ctx context.Context, key, actor string) error {
	audit, err := e.audits.LatestEligible(ctx, syncdomain.KindBuyer, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return syncdomain.ErrNotRecoverable
		}
		return err
	}

	b, err := e.buyers.FindByCodeIncludingDeleted(ctx, key)
	if err != nil {
		return err
	}
	if err := e.buyers.ClearDeleted(ctx, key); err != nil {
		return err
	}

	audit.MarkRecovered(actor)
	if err := e.audits.Update(ctx, audit); err != nil {
		return err
	}

	e.restoreSheetRow(ctx, b)
	return nil
}

func (e *BuyerExecutor) restoreSheetRow(ctx context.Context, b *buyer.Buyer) {
	_, found, err := e.source.FindRowByColumn(ctx, e.mapper.KeyColumn(), b.Code)
	if err != nil {
		e.logger.Warn("could not check sheet for recovered buyer",
			zap.String("code", b.Code), zap.Error(err))
		return
	}
	if found {
		return
	}
	if err := e.source.AppendRow(ctx, e.mapper.MapToExternal(b)); err != nil {
		e.logger.Warn("could not restore recovered buyer to sheet",
			zap.String("code", b.Code), zap.Error(err))
	}
}

func (e *BuyerExecutor) freshKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := e.source.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if key := e.mapper.Key(row); key != "" {
			keys[key] = struct{}{}
		}
	}
	return keys, nil
}

func (e *BuyerExecutor) recordFailure(run *syncdomain.SyncRun, key string, err error) {
	code := "INTERNAL"
	var de *shared.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	run.RecordFailure(syncdomain.KindBuyer, key, code, err.Error())
	e.logger.Error("buyer sync item failed",
		zap.String("code", key), zap.Error(err))
}

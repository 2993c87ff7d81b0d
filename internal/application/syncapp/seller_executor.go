package syncapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/listing"
	"github.com/estatedesk/backend/internal/domain/shared"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// deletedByAutomation is the actor recorded on audit rows written by the
// reconciliation pass itself
const deletedByAutomation = "sync"

// SellerExecutor applies detected seller drift to the relational store.
// Every mutation is item-scoped: one bad record is recorded on the run and
// the pass moves on.
type SellerExecutor struct {
	source     syncdomain.TabularSource
	mapper     *SellerMapper
	sellers    listing.SellerRepository
	properties listing.PropertyRepository
	audits     syncdomain.DeletionAuditRepository
	logger     *zap.Logger
}

// NewSellerExecutor creates a SellerExecutor
func NewSellerExecutor(
	source syncdomain.TabularSource,
	mapper *SellerMapper,
	sellers listing.SellerRepository,
	properties listing.PropertyRepository,
	audits syncdomain.DeletionAuditRepository,
	logger *zap.Logger,
) *SellerExecutor {
	return &SellerExecutor{
		source:     source,
		mapper:     mapper,
		sellers:    sellers,
		properties: properties,
		audits:     audits,
		logger:     logger,
	}
}

// SyncMissing inserts every externally-present key the store lacks. The
// upsert absorbs the race where another path created the row after
// detection, so a duplicate key never fails the item.
func (e *SellerExecutor) SyncMissing(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
	for _, key := range diff.Missing {
		row, ok := diff.External[key]
		if !ok {
			continue
		}
		seller, err := e.mapper.MapToDomain(row)
		if err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		if err := e.sellers.Upsert(ctx, seller); err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		run.RecordAdded(syncdomain.KindSeller)
		e.ensureProperty(ctx, seller.Code)
	}
}

// SyncChanged patches every key whose compared fields drifted
func (e *SellerExecutor) SyncChanged(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
	for _, key := range diff.Changed {
		row, ok := diff.External[key]
		if !ok {
			continue
		}
		if err := e.sellers.Patch(ctx, key, e.mapper.MapToPatch(row)); err != nil {
			e.recordFailure(run, key, err)
			continue
		}
		run.RecordUpdated(syncdomain.KindSeller)
		e.ensureProperty(ctx, key)
	}
}

// SyncVanished soft-deletes keys that disappeared from the sheet, behind
// the safety gate: a fresh external re-read (the cache may be stale against
// a concurrent manual edit), then the exclusive-contract hard block, then
// audit-before-delete, then the dependent cascade as a warning only.
func (e *SellerExecutor) SyncVanished(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult) {
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

func (e *SellerExecutor) deleteOne(ctx context.Context, run *syncdomain.SyncRun, key string) {
	seller, err := e.sellers.FindByCode(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return
		}
		e.recordFailure(run, key, err)
		return
	}

	if seller.MediationStatus.UnderExclusiveContract() {
		run.RecordManualReview(syncdomain.KindSeller, key,
			"active exclusive mediation contract blocks automated deletion")
		return
	}

	snapshot, err := e.mapper.Snapshot(seller)
	if err != nil {
		e.recordFailure(run, key, err)
		return
	}
	audit := syncdomain.NewDeletionAudit(syncdomain.KindSeller, key, snapshot, deletedByAutomation)
	if err := e.audits.Create(ctx, audit); err != nil {
		e.recordFailure(run, key, err)
		return
	}

	if err := e.sellers.MarkDeleted(ctx, key, time.Now()); err != nil {
		e.recordFailure(run, key, err)
		return
	}
	run.RecordDeleted(syncdomain.KindSeller)

	if err := e.properties.SoftDeleteBySeller(ctx, seller.ID, time.Now()); err != nil {
		e.logger.Warn("property cascade failed after seller deletion",
			zap.String("code", key), zap.Error(err))
	}
}

// Recover restores the latest recoverable deletion for the key: live row,
// dependent properties, audit stamp, and the sheet row if it is still gone.
func (e *SellerExecutor) Recover(ctx context.Context, key, actor string) error {
	audit, err := e.audits.LatestEligible(ctx, syncdomain.KindSeller, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return syncdomain.ErrNotRecoverable
		}
		return err
	}

	seller, err := e.sellers.FindByCodeIncludingDeleted(ctx, key)
	if err != nil {
		return err
	}
	if err := e.sellers.ClearDeleted(ctx, key); err != nil {
		return err
	}
	if err := e.properties.RestoreBySeller(ctx, seller.ID); err != nil {
		e.logger.Warn("property restore failed after seller recovery",
			zap.String("code", key), zap.Error(err))
	}

	audit.MarkRecovered(actor)
	if err := e.audits.Update(ctx, audit); err != nil {
		return err
	}

	e.restoreSheetRow(ctx, seller)
	return nil
}

// restoreSheetRow puts a recovered record back into the sheet so the next
// pass does not flag it vanished again. Failure here is a warning; the
// internal recovery already stands.
func (e *SellerExecutor) restoreSheetRow(ctx context.Context, seller *listing.Seller) {
	_, found, err := e.source.FindRowByColumn(ctx, e.mapper.KeyColumn(), seller.Code)
	if err != nil {
		e.logger.Warn("could not check sheet for recovered seller",
			zap.String("code", seller.Code), zap.Error(err))
		return
	}
	if found {
		return
	}
	if err := e.source.AppendRow(ctx, e.mapper.MapToExternal(seller)); err != nil {
		e.logger.Warn("could not restore recovered seller to sheet",
			zap.String("code", seller.Code), zap.Error(err))
	}
}

// ensureProperty lazily creates the seller's property record. A seller
// without one gets a skeleton built from the seller's own address and type;
// a seller with several gets the duplicates flagged. Failure in either path
// is logged but never fails the parent sync.
func (e *SellerExecutor) ensureProperty(ctx context.Context, code string) {
	seller, err := e.sellers.FindByCode(ctx, code)
	if err != nil {
		e.logger.Warn("could not load seller for property creation",
			zap.String("code", code), zap.Error(err))
		return
	}
	existing, err := e.properties.FindActiveBySeller(ctx, seller.ID)
	if err != nil {
		e.logger.Warn("could not check properties for seller",
			zap.String("code", code), zap.Error(err))
		return
	}
	if len(existing) == 0 {
		if err := e.properties.Create(ctx, listing.NewProperty(seller)); err != nil {
			e.logger.Warn("property creation failed",
				zap.String("code", code), zap.Error(err))
		}
		return
	}
	e.flagDuplicateProperties(ctx, code, existing)
}

// flagDuplicateProperties marks every active property beyond the canonical
// (newest) one as an anomaly. Flagged rows stay on the seller detail for a
// human to resolve; nothing is deleted here.
func (e *SellerExecutor) flagDuplicateProperties(ctx context.Context, code string, active []listing.Property) {
	for i := 1; i < len(active); i++ {
		p := &active[i]
		if p.Anomaly {
			continue
		}
		p.Anomaly = true
		if err := e.properties.Update(ctx, p); err != nil {
			e.logger.Warn("could not flag duplicate property",
				zap.String("code", code), zap.Error(err))
			continue
		}
		e.logger.Info("flagged duplicate property",
			zap.String("code", code), zap.String("property_id", p.ID.String()))
	}
}

// freshKeys re-reads the sheet directly, bypassing the snapshot cache
func (e *SellerExecutor) freshKeys(ctx context.Context) (map[string]struct{}, error) {
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

func (e *SellerExecutor) recordFailure(run *syncdomain.SyncRun, key string, err error) {
	code := "INTERNAL"
	var de *shared.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	run.RecordFailure(syncdomain.KindSeller, key, code, err.Error())
	e.logger.Error("seller sync item failed",
		zap.String("code", key), zap.Error(err))
}

package syncapp

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/infrastructure/cache"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// KindExecutor is one record kind's mutation surface as the orchestrator
// drives it
type KindExecutor interface {
	SyncMissing(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult)
	SyncChanged(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult)
	SyncVanished(ctx context.Context, run *syncdomain.SyncRun, diff *DiffResult)
	Recover(ctx context.Context, key, actor string) error
}

// kindPipeline bundles everything one record kind needs for a pass
type kindPipeline struct {
	kind     syncdomain.RecordKind
	source   syncdomain.TabularSource
	detector *DiffDetector
	executor KindExecutor
}

// Orchestrator drives full reconciliation passes. Exactly one pass runs at
// a time; a trigger that lands during an active pass is rejected, not
// queued.
type Orchestrator struct {
	pipelines       []kindPipeline
	snapshots       *cache.SnapshotCache
	runs            syncdomain.SyncRunRepository
	deletionEnabled bool
	logger          *zap.Logger

	mu         sync.Mutex
	inProgress bool
}

// NewOrchestrator creates an Orchestrator over the given record kinds
func NewOrchestrator(
	snapshots *cache.SnapshotCache,
	runs syncdomain.SyncRunRepository,
	deletionEnabled bool,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		snapshots:       snapshots,
		runs:            runs,
		deletionEnabled: deletionEnabled,
		logger:          logger,
	}
}

// AddKind registers one record kind's pipeline. Kinds run in registration
// order, never interleaved.
func (o *Orchestrator) AddKind(kind syncdomain.RecordKind, source syncdomain.TabularSource, detector *DiffDetector, executor KindExecutor) {
	o.pipelines = append(o.pipelines, kindPipeline{
		kind:     kind,
		source:   source,
		detector: detector,
		executor: executor,
	})
}

// RunFull executes one pass: authenticate, then per kind detect and apply
// missing, changed, and (when enabled) vanished. A manual trigger drops the
// snapshot cache first so the pass sees the sheet as of now.
func (o *Orchestrator) RunFull(ctx context.Context, trigger syncdomain.Trigger) (*syncdomain.SyncRun, error) {
	o.mu.Lock()
	if o.inProgress {
		o.mu.Unlock()
		return nil, syncdomain.ErrSyncInProgress
	}
	o.inProgress = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inProgress = false
		o.mu.Unlock()
	}()

	if trigger == syncdomain.TriggerManual {
		o.snapshots.InvalidateAll()
	}

	run := syncdomain.NewSyncRun(trigger)
	for _, pipeline := range o.pipelines {
		run.InitCounts(pipeline.kind)
	}
	if err := o.runs.Save(ctx, run); err != nil {
		return nil, err
	}

	o.logger.Info("sync pass started", zap.String("trigger", string(trigger)))

	for _, pipeline := range o.pipelines {
		if err := pipeline.source.Authenticate(ctx); err != nil {
			run.Fail()
			if saveErr := o.runs.Save(ctx, run); saveErr != nil {
				o.logger.Error("could not persist failed run", zap.Error(saveErr))
			}
			o.logger.Error("sync pass aborted, source authentication failed",
				zap.String("kind", string(pipeline.kind)), zap.Error(err))
			return run, err
		}
	}

	for _, pipeline := range o.pipelines {
		o.runKind(ctx, run, pipeline)
	}

	run.Finalize()
	if err := o.runs.Save(ctx, run); err != nil {
		o.logger.Error("could not persist finished run", zap.Error(err))
	}

	o.logger.Info("sync pass finished",
		zap.String("status", string(run.Status)),
		zap.Int("mutations", run.TotalMutations()),
		zap.Int("failed", run.TotalFailed()),
		zap.Int("manual_review", len(run.ManualReview)),
	)
	return run, nil
}

// runKind runs detection once and the three mutation phases in order.
// Detection must complete before mutation so the phases work from one
// stable snapshot.
func (o *Orchestrator) runKind(ctx context.Context, run *syncdomain.SyncRun, pipeline kindPipeline) {
	diff, err := pipeline.detector.Detect(ctx)
	if err != nil {
		run.RecordFailure(pipeline.kind, "", errorCode(err), err.Error())
		o.logger.Error("drift detection failed",
			zap.String("kind", string(pipeline.kind)), zap.Error(err))
		return
	}

	pipeline.executor.SyncMissing(ctx, run, diff)
	pipeline.executor.SyncChanged(ctx, run, diff)
	if o.deletionEnabled {
		pipeline.executor.SyncVanished(ctx, run, diff)
	}
}

// Recover restores the latest recoverable deletion for a key of the given
// kind
func (o *Orchestrator) Recover(ctx context.Context, kind syncdomain.RecordKind, key, actor string) error {
	for _, pipeline := range o.pipelines {
		if pipeline.kind == kind {
			return o.recoverOne(ctx, pipeline, key, actor)
		}
	}
	return syncdomain.NewValidationError("unknown record kind: " + string(kind))
}

func (o *Orchestrator) recoverOne(ctx context.Context, pipeline kindPipeline, key, actor string) error {
	if err := pipeline.source.Authenticate(ctx); err != nil {
		return err
	}
	return pipeline.executor.Recover(ctx, key, actor)
}

// Status reports whether a pass is active plus the last finished run
func (o *Orchestrator) Status(ctx context.Context) (bool, *syncdomain.SyncRun, error) {
	o.mu.Lock()
	inProgress := o.inProgress
	o.mu.Unlock()

	last, err := o.runs.FindLatest(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return inProgress, nil, nil
		}
		return inProgress, nil, err
	}
	return inProgress, last, nil
}

// History returns recent runs, newest first
func (o *Orchestrator) History(ctx context.Context, limit int) ([]syncdomain.SyncRun, error) {
	return o.runs.FindRecent(ctx, limit)
}

func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

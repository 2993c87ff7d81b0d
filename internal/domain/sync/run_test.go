package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunCounters(t *testing.T) {
	run := NewSyncRun(TriggerManual)

	run.RecordAdded(KindSeller)
	run.RecordAdded(KindSeller)
	run.RecordUpdated(KindBuyer)
	run.RecordDeleted(KindSeller)
	run.RecordFailure(KindBuyer, "105", CodeTransientExternal, "timeout")

	assert.Equal(t, 2, run.Counts[KindSeller].Added)
	assert.Equal(t, 1, run.Counts[KindSeller].Deleted)
	assert.Equal(t, 1, run.Counts[KindBuyer].Updated)
	assert.Equal(t, 1, run.TotalFailed())
	assert.Equal(t, 4, run.TotalMutations())
	require.Len(t, run.ItemErrors, 1)
	assert.Equal(t, "105", run.ItemErrors[0].Key)
}

func TestSyncRunFinalize(t *testing.T) {
	t.Run("success when no failures", func(t *testing.T) {
		run := NewSyncRun(TriggerScheduled)
		run.RecordAdded(KindSeller)
		run.Finalize()

		assert.Equal(t, RunStatusSuccess, run.Status)
		assert.NotNil(t, run.FinishedAt)
	})

	t.Run("partial when mixed", func(t *testing.T) {
		run := NewSyncRun(TriggerScheduled)
		run.RecordAdded(KindSeller)
		run.RecordFailure(KindSeller, "AA1", CodeDataShape, "bad cell")
		run.Finalize()

		assert.Equal(t, RunStatusPartial, run.Status)
	})

	t.Run("failed when only failures", func(t *testing.T) {
		run := NewSyncRun(TriggerScheduled)
		run.RecordFailure(KindSeller, "AA1", CodeDataShape, "bad cell")
		run.Finalize()

		assert.Equal(t, RunStatusFailed, run.Status)
	})
}

func TestDeletionAuditEligibility(t *testing.T) {
	audit := NewDeletionAudit(KindSeller, "AA13528", `{"code":"AA13528"}`, "sync")

	assert.True(t, audit.Eligible())

	audit.MarkRecovered("operator")
	assert.False(t, audit.Eligible())
	assert.Equal(t, "operator", audit.RecoveredBy)
	assert.NotNil(t, audit.RecoveredAt)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransientExternal))
	assert.False(t, IsTransient(ErrNotRecoverable))
	assert.False(t, IsTransient(nil))
}

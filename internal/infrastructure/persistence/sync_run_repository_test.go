package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

func TestSyncRunSerialization(t *testing.T) {
	run := syncdomain.NewSyncRun(syncdomain.TriggerManual)
	run.RecordAdded(syncdomain.KindSeller)
	run.RecordUpdated(syncdomain.KindBuyer)
	run.RecordFailure(syncdomain.KindBuyer, "42", syncdomain.CodeTransientExternal, "timeout")
	run.RecordManualReview(syncdomain.KindSeller, "AA13528", "active exclusive mediation contract")
	run.Finalize()

	require.NoError(t, marshalRun(run))
	assert.NotEmpty(t, run.CountsJSON)

	restored := &syncdomain.SyncRun{
		CountsJSON:       run.CountsJSON,
		ItemErrorsJSON:   run.ItemErrorsJSON,
		ManualReviewJSON: run.ManualReviewJSON,
	}
	require.NoError(t, unmarshalRun(restored))

	assert.Equal(t, 1, restored.Counts[syncdomain.KindSeller].Added)
	assert.Equal(t, 1, restored.Counts[syncdomain.KindBuyer].Updated)
	assert.Equal(t, 1, restored.Counts[syncdomain.KindBuyer].Failed)
	require.Len(t, restored.ItemErrors, 1)
	assert.Equal(t, "42", restored.ItemErrors[0].Key)
	require.Len(t, restored.ManualReview, 1)
	assert.Equal(t, "AA13528", restored.ManualReview[0].Key)
}

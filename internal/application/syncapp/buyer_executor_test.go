package syncapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

type buyerFixture struct {
	source   *fakeTabularSource
	buyers   *fakeBuyerRepository
	audits   *fakeAuditRepository
	executor *BuyerExecutor
}

func newBuyerFixture(rows ...syncdomain.Row) *buyerFixture {
	source := &fakeTabularSource{rows: rows}
	buyers := newFakeBuyerRepository()
	audits := &fakeAuditRepository{}
	executor := NewBuyerExecutor(source, NewBuyerMapper(), buyers, audits, zap.NewNop())
	return &buyerFixture{
		source:   source,
		buyers:   buyers,
		audits:   audits,
		executor: executor,
	}
}

func TestBuyerExecutor_Recover(t *testing.T) {
	fx := newBuyerFixture()
	run := syncdomain.NewSyncRun(syncdomain.TriggerManual)
	diff := &DiffResult{
		Missing: []string{"42"},
		External: map[string]syncdomain.Row{
			"42": {buyerColCode: "42", buyerColName: "佐藤"},
		},
	}
	fx.executor.SyncMissing(context.Background(), run, diff)

	fx.source.rows = nil
	fx.executor.SyncVanished(context.Background(), run, &DiffResult{Vanished: []string{"42"}})
	_, err := fx.buyers.FindByCode(context.Background(), "42")
	require.Error(t, err, "buyer soft-deleted before recovery")

	require.NoError(t, fx.executor.Recover(context.Background(), "42", "tanaka"))

	b, err := fx.buyers.FindByCode(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "佐藤", b.Name)

	// the sheet row is restored so the next pass will not re-delete
	_, found, err := fx.source.FindRowByColumn(context.Background(), buyerColCode, "42")
	require.NoError(t, err)
	assert.True(t, found)

	// second recover finds no eligible audit row
	err = fx.executor.Recover(context.Background(), "42", "tanaka")
	assert.ErrorIs(t, err, syncdomain.ErrNotRecoverable)
}

func TestBuyerExecutor_RecoverUnknownKey(t *testing.T) {
	fx := newBuyerFixture()
	err := fx.executor.Recover(context.Background(), "404", "tanaka")
	assert.ErrorIs(t, err, syncdomain.ErrNotRecoverable)
}

package syncapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/infrastructure/cache"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

var sellerCompareFields = []string{
	"name", "address", "phone", "property_type",
	"inquired_on", "assessment_amount", "mediation_status",
}

func newSellerDetector(t *testing.T, source *fakeTabularSource, repo *fakeSellerRepository, pageSize int) *DiffDetector {
	snapshots := cache.NewSnapshotCache(time.Hour, zap.NewNop())
	snapshots.Register("sellers", source.ReadAll)
	return NewDiffDetector(
		syncdomain.KindSeller,
		snapshots,
		"sellers",
		NewSellerMapper(),
		repo,
		sellerCompareFields,
		pageSize,
		zap.NewNop(),
	)
}

func sellerRow(code, name string) syncdomain.Row {
	return syncdomain.Row{
		sellerColCode: code,
		sellerColName: name,
	}
}

func seedSeller(t *testing.T, repo *fakeSellerRepository, code, name string) {
	t.Helper()
	mapper := NewSellerMapper()
	seller, err := mapper.MapToDomain(syncdomain.Row{sellerColCode: code, sellerColName: name})
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), seller))
}

func TestDiffDetector_Missing(t *testing.T) {
	source := &fakeTabularSource{rows: []syncdomain.Row{
		sellerRow("AA2", "乙"),
		sellerRow("AA10", "甲"),
	}}
	repo := newFakeSellerRepository()

	diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
	require.NoError(t, err)
	// ordered by the key's numeric component, not sheet order
	assert.Equal(t, []string{"AA2", "AA10"}, diff.Missing)
	assert.Empty(t, diff.Changed)
	assert.Empty(t, diff.Vanished)
}

func TestDiffDetector_Vanished(t *testing.T) {
	source := &fakeTabularSource{rows: []syncdomain.Row{sellerRow("AA1", "甲")}}
	repo := newFakeSellerRepository()
	seedSeller(t, repo, "AA1", "甲")
	seedSeller(t, repo, "AA2", "乙")

	diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AA2"}, diff.Vanished)
}

func TestDiffDetector_DeletedRowNeverReflagged(t *testing.T) {
	source := &fakeTabularSource{rows: nil}
	repo := newFakeSellerRepository()
	seedSeller(t, repo, "AA1", "甲")
	require.NoError(t, repo.MarkDeleted(context.Background(), "AA1", time.Now()))

	diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, diff.Vanished)
}

func TestDiffDetector_Changed(t *testing.T) {
	t.Run("value drift", func(t *testing.T) {
		source := &fakeTabularSource{rows: []syncdomain.Row{sellerRow("AA1", "新しい名前")}}
		repo := newFakeSellerRepository()
		seedSeller(t, repo, "AA1", "古い名前")

		diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"AA1"}, diff.Changed)
	})

	t.Run("value going blank externally counts as changed", func(t *testing.T) {
		source := &fakeTabularSource{rows: []syncdomain.Row{sellerRow("AA1", "")}}
		repo := newFakeSellerRepository()
		seedSeller(t, repo, "AA1", "山田")

		diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"AA1"}, diff.Changed)
	})

	t.Run("identical rows are not changed", func(t *testing.T) {
		source := &fakeTabularSource{rows: []syncdomain.Row{sellerRow("AA1", "山田")}}
		repo := newFakeSellerRepository()
		seedSeller(t, repo, "AA1", "山田")

		diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
		require.NoError(t, err)
		assert.Empty(t, diff.Changed)
	})
}

func TestDiffDetector_PaginatesInternalReads(t *testing.T) {
	source := &fakeTabularSource{rows: nil}
	repo := newFakeSellerRepository()
	for _, code := range []string{"AA1", "AA2", "AA3", "AA4", "AA5"} {
		seedSeller(t, repo, code, "名前")
	}

	// page size 2 forces three pages; all five must still be seen
	diff, err := newSellerDetector(t, source, repo, 2).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AA1", "AA2", "AA3", "AA4", "AA5"}, diff.Vanished)
}

func TestDiffDetector_SkipsBlankKeyRows(t *testing.T) {
	source := &fakeTabularSource{rows: []syncdomain.Row{
		{sellerColName: "鍵なし"},
		sellerRow("AA1", "甲"),
	}}
	repo := newFakeSellerRepository()

	diff, err := newSellerDetector(t, source, repo, 1000).Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AA1"}, diff.Missing)
}

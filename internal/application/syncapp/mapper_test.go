package syncapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/backend/internal/domain/buyer"
	"github.com/estatedesk/backend/internal/domain/listing"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

func TestSellerMapper_MapToDomain(t *testing.T) {
	mapper := NewSellerMapper()

	t.Run("maps a full row", func(t *testing.T) {
		seller, err := mapper.MapToDomain(syncdomain.Row{
			sellerColCode:             "aa13528",
			sellerColName:             "山田太郎",
			sellerColPropertyType:     "M",
			sellerColInquiredOn:       "2026/3/15",
			sellerColAssessmentAmount: "12,500,000",
			sellerColMediationStatus:  "専任媒介",
		})
		require.NoError(t, err)
		assert.Equal(t, "AA13528", seller.Code)
		assert.Equal(t, "山田太郎", seller.Name)
		assert.Equal(t, "マンション", seller.PropertyType)
		require.NotNil(t, seller.InquiredOn)
		assert.Equal(t, "2026-03-15", seller.InquiredOn.Format(dateLayout))
		require.NotNil(t, seller.AssessmentAmount)
		assert.Equal(t, "12500000", seller.AssessmentAmount.String())
		assert.Equal(t, listing.MediationExclusive, seller.MediationStatus)
	})

	t.Run("blank key fails the row", func(t *testing.T) {
		_, err := mapper.MapToDomain(syncdomain.Row{sellerColName: "名無し"})
		require.Error(t, err)
	})

	t.Run("malformed cells degrade to absent fields", func(t *testing.T) {
		seller, err := mapper.MapToDomain(syncdomain.Row{
			sellerColCode:             "AA1",
			sellerColInquiredOn:       "未定",
			sellerColAssessmentAmount: "応相談",
		})
		require.NoError(t, err)
		assert.Nil(t, seller.InquiredOn)
		assert.Nil(t, seller.AssessmentAmount)
	})
}

func TestSellerMapper_NormalizeRowMatchesDomainShape(t *testing.T) {
	mapper := NewSellerMapper()
	row := syncdomain.Row{
		sellerColCode:             "AA13528",
		sellerColName:             " 山田太郎 ",
		sellerColPropertyType:     "T",
		sellerColInquiredOn:       "45000",
		sellerColAssessmentAmount: "3,000",
	}

	normalized := mapper.NormalizeRow(row)
	assert.Equal(t, "山田太郎", normalized["name"])
	assert.Equal(t, "土地", normalized["property_type"])
	assert.Equal(t, "2023-03-15", normalized["inquired_on"])
	assert.Equal(t, "3000", normalized["assessment_amount"])
}

func TestSellerMapper_ExternalRoundTrip(t *testing.T) {
	mapper := NewSellerMapper()
	seller, err := mapper.MapToDomain(syncdomain.Row{
		sellerColCode:            "AA13528",
		sellerColName:            "山田太郎",
		sellerColInquiredOn:      "2026-03-15",
		sellerColMediationStatus: "一般媒介",
	})
	require.NoError(t, err)

	row := mapper.MapToExternal(seller)
	restored, err := mapper.MapToDomain(row)
	require.NoError(t, err)
	assert.Equal(t, seller.Code, restored.Code)
	assert.Equal(t, seller.Name, restored.Name)
	assert.Equal(t, seller.MediationStatus, restored.MediationStatus)
	require.NotNil(t, restored.InquiredOn)
	assert.Equal(t, "2026-03-15", restored.InquiredOn.Format(dateLayout))
}

func TestBuyerMapper_MapToDomain(t *testing.T) {
	mapper := NewBuyerMapper()

	t.Run("maps composite contract date", func(t *testing.T) {
		b, err := mapper.MapToDomain(syncdomain.Row{
			buyerColCode:         "42",
			buyerColContractYear: "2026",
			buyerColContractDay:  "3/15",
		})
		require.NoError(t, err)
		require.NotNil(t, b.ContractDate)
		assert.Equal(t, "2026-03-15", b.ContractDate.Format(dateLayout))
	})

	t.Run("year-only contract date defaults to january first", func(t *testing.T) {
		b, err := mapper.MapToDomain(syncdomain.Row{
			buyerColCode:         "42",
			buyerColContractYear: "2026",
		})
		require.NoError(t, err)
		require.NotNil(t, b.ContractDate)
		assert.Equal(t, "2026-01-01", b.ContractDate.Format(dateLayout))
	})

	t.Run("maps outcome and opt-out", func(t *testing.T) {
		b, err := mapper.MapToDomain(syncdomain.Row{
			buyerColCode:       "7",
			buyerColOutcome:    "他決",
			buyerColMailOptOut: "TRUE",
			buyerColBudget:     "45,000,000",
		})
		require.NoError(t, err)
		assert.Equal(t, buyer.OutcomeLostToRival, b.Outcome)
		assert.True(t, b.MailOptOut)
		require.NotNil(t, b.Budget)
		assert.Equal(t, "45000000", b.Budget.String())
	})

	t.Run("blank key fails the row", func(t *testing.T) {
		_, err := mapper.MapToDomain(syncdomain.Row{buyerColName: "名無し"})
		require.Error(t, err)
	})
}

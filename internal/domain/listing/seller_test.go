package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeller(t *testing.T) {
	t.Run("creates seller with uppercased code", func(t *testing.T) {
		s, err := NewSeller("aa13528")

		require.NoError(t, err)
		assert.Equal(t, "AA13528", s.Code)
		assert.True(t, s.IsActive())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		s, err := NewSeller("   ")

		assert.Error(t, err)
		assert.Nil(t, s)
	})
}

func TestSellerSoftDelete(t *testing.T) {
	s, err := NewSeller("AA13528")
	require.NoError(t, err)

	at := time.Now()
	s.SoftDelete(at)

	assert.False(t, s.IsActive())
	require.NotNil(t, s.DeletedAt)
	assert.Equal(t, at, *s.DeletedAt)

	s.Recover()
	assert.True(t, s.IsActive())
	assert.Nil(t, s.DeletedAt)
}

func TestMediationStatusUnderExclusiveContract(t *testing.T) {
	assert.True(t, MediationExclusive.UnderExclusiveContract())
	assert.True(t, MediationFullExclusive.UnderExclusiveContract())
	assert.False(t, MediationGeneral.UnderExclusiveContract())
	assert.False(t, MediationNone.UnderExclusiveContract())
}

func TestKeyNumber(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"AA13528", 13528},
		{"AA9", 9},
		{"42", 42},
		{"ZZ", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyNumber(tt.key), "key %q", tt.key)
	}
}

func TestNewProperty(t *testing.T) {
	s, err := NewSeller("AA100")
	require.NoError(t, err)
	s.Address = "東京都杉並区1-2-3"
	s.PropertyType = "mansion"

	p := NewProperty(s)

	assert.Equal(t, s.ID, p.SellerID)
	assert.Equal(t, "AA100", p.SellerCode)
	assert.Equal(t, s.Address, p.Address)
	assert.Equal(t, "mansion", p.PropertyType)
	assert.False(t, p.Anomaly)
	assert.True(t, p.IsActive())
}

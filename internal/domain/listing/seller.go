package listing

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// MediationStatus is the brokerage agreement state as recorded in the sheet
type MediationStatus string

const (
	MediationNone          MediationStatus = ""
	MediationGeneral       MediationStatus = "一般媒介"
	MediationExclusive     MediationStatus = "専任媒介"
	MediationFullExclusive MediationStatus = "専属専任媒介"
)

// UnderExclusiveContract reports whether the status means an active
// exclusive agreement. Such records are hard-blocked from automated
// deletion with no manual override.
func (m MediationStatus) UnderExclusiveContract() bool {
	return m == MediationExclusive || m == MediationFullExclusive
}

// Seller is a property-seller record mirrored from the field staff's
// spreadsheet. The business key (Code, e.g. "AA13528") is human-assigned in
// the sheet and is the only identifier the external source ever emits.
type Seller struct {
	shared.BaseEntity
	Code             string `gorm:"type:varchar(20);not null;index:idx_sellers_code"`
	Name             string `gorm:"type:text"` // encrypted at rest
	Address          string `gorm:"type:text"` // encrypted at rest
	Phone            string `gorm:"type:text"` // encrypted at rest
	Email            string `gorm:"type:text"` // encrypted at rest
	PropertyType     string `gorm:"type:varchar(30)"`
	InquiredOn       *time.Time
	AssessmentAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	MediationStatus  MediationStatus  `gorm:"type:varchar(30)"`
	VisitDate        *time.Time
	Memo             string     `gorm:"type:text"`
	DeletedAt        *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (Seller) TableName() string {
	return "sellers"
}

// NewSeller creates a seller with the given business key
func NewSeller(code string) (*Seller, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Seller code cannot be empty")
	}
	return &Seller{
		BaseEntity: shared.NewBaseEntity(),
		Code:       strings.ToUpper(code),
	}, nil
}

// IsActive reports whether the record is not soft-deleted
func (s *Seller) IsActive() bool {
	return s.DeletedAt == nil
}

// SoftDelete marks the record inactive
func (s *Seller) SoftDelete(at time.Time) {
	s.DeletedAt = &at
	s.Touch()
}

// Recover clears the soft-delete marker
func (s *Seller) Recover() {
	s.DeletedAt = nil
	s.Touch()
}

var keyDigits = regexp.MustCompile(`\d+`)

// KeyNumber extracts the numeric component embedded in a business key, used
// to keep operator-facing diff output stably ordered across runs. Keys
// without digits sort first.
func KeyNumber(key string) int {
	m := keyDigits.FindString(key)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

package buyer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// Outcome is the terminal disposition recorded by field staff in the sheet.
// Empty means the buyer is still in play.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeLostToRival Outcome = "他決"
	OutcomeDropped     Outcome = "追客終了"
)

// Buyer is a purchase-inquiry record mirrored from the field staff's
// spreadsheet, keyed by the sheet's numeric No column. The workflow status
// shown to operators is derived by the rule engine on read and never
// persisted as the source of truth.
type Buyer struct {
	shared.BaseEntity
	Code        string           `gorm:"type:varchar(20);not null;index:idx_buyers_code"`
	Name        string           `gorm:"type:text"` // encrypted at rest
	Phone       string           `gorm:"type:text"` // encrypted at rest
	Email       string           `gorm:"type:text"` // encrypted at rest
	DesiredArea string           `gorm:"type:varchar(200)"`
	Budget      *decimal.Decimal `gorm:"type:decimal(18,2)"`

	InquiredOn       *time.Time
	SurveyResult     string `gorm:"type:text"`
	SurveyConfirmed  string `gorm:"type:varchar(50)"`
	ViewingDate      *time.Time
	OfferDate        *time.Time
	LoanApprovalDate *time.Time
	ContractDate     *time.Time
	SettlementDate   *time.Time
	FollowUpDate     *time.Time
	LastContactedOn  *time.Time
	MailOptOut       bool    `gorm:"not null;default:false"`
	Outcome          Outcome `gorm:"type:varchar(30)"`
	Memo             string  `gorm:"type:text"`

	DeletedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (Buyer) TableName() string {
	return "buyers"
}

// NewBuyer creates a buyer with the given business key
func NewBuyer(code string) (*Buyer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Buyer code cannot be empty")
	}
	return &Buyer{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
	}, nil
}

// IsActive reports whether the record is not soft-deleted
func (b *Buyer) IsActive() bool {
	return b.DeletedAt == nil
}

// SoftDelete marks the record inactive
func (b *Buyer) SoftDelete(at time.Time) {
	b.DeletedAt = &at
	b.Touch()
}

// Recover clears the soft-delete marker
func (b *Buyer) Recover() {
	b.DeletedAt = nil
	b.Touch()
}

// HasContact reports whether any reachable contact detail is present
func (b *Buyer) HasContact() bool {
	return b.Phone != "" || b.Email != ""
}

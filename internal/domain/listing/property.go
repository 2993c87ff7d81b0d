package listing

import (
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backend/internal/domain/shared"
)

// Property is the dependent entity owned by exactly one seller. It is
// created lazily on the owner's first sync. When more than one active
// property exists for a seller (a data-quality anomaly), the most recently
// created one is canonical and the rest are flagged, never silently deleted.
type Property struct {
	shared.BaseEntity
	SellerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerCode   string     `gorm:"type:varchar(20);not null;index"`
	Address      string     `gorm:"type:text"`
	PropertyType string     `gorm:"type:varchar(30)"`
	Anomaly      bool       `gorm:"not null;default:false"`
	DeletedAt    *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// NewProperty creates a property owned by the given seller
func NewProperty(seller *Seller) *Property {
	return &Property{
		BaseEntity:   shared.NewBaseEntity(),
		SellerID:     seller.ID,
		SellerCode:   seller.Code,
		Address:      seller.Address,
		PropertyType: seller.PropertyType,
	}
}

// IsActive reports whether the property is not soft-deleted
func (p *Property) IsActive() bool {
	return p.DeletedAt == nil
}

// SoftDelete marks the property inactive
func (p *Property) SoftDelete(at time.Time) {
	p.DeletedAt = &at
	p.Touch()
}

// Recover clears the soft-delete marker
func (p *Property) Recover() {
	p.DeletedAt = nil
	p.Touch()
}

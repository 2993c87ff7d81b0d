package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/estatedesk/backend/internal/domain/listing"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

var _ listing.PropertyRepository = (*GormPropertyRepository)(nil)

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindActiveBySeller returns active properties for a seller, newest first
func (r *GormPropertyRepository) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]listing.Property, error) {
	var properties []listing.Property
	if err := r.db.WithContext(ctx).
		Where("seller_id = ? AND deleted_at IS NULL", sellerID).
		Order("created_at DESC").
		Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}

// Create persists a new property
func (r *GormPropertyRepository) Create(ctx context.Context, property *listing.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// Update persists changes to an existing property
func (r *GormPropertyRepository) Update(ctx context.Context, property *listing.Property) error {
	property.Touch()
	return r.db.WithContext(ctx).Save(property).Error
}

// SoftDeleteBySeller cascades a soft delete to the seller's active properties
func (r *GormPropertyRepository) SoftDeleteBySeller(ctx context.Context, sellerID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&listing.Property{}).
		Where("seller_id = ? AND deleted_at IS NULL", sellerID).
		Updates(map[string]any{"deleted_at": at, "updated_at": time.Now()}).Error
}

// RestoreBySeller clears deleted_at on the seller's properties
func (r *GormPropertyRepository) RestoreBySeller(ctx context.Context, sellerID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&listing.Property{}).
		Where("seller_id = ? AND deleted_at IS NOT NULL", sellerID).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()}).Error
}

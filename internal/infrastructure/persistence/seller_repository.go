package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estatedesk/backend/internal/domain/listing"
	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/infrastructure/crypto"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// GormSellerRepository implements SellerRepository using GORM. Personal
// contact fields are encrypted before they reach the database and decrypted
// on the way out; everything else is stored as-is.
type GormSellerRepository struct {
	db  *gorm.DB
	enc *crypto.FieldEncryptor
}

var _ listing.SellerRepository = (*GormSellerRepository)(nil)

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB, enc *crypto.FieldEncryptor) *GormSellerRepository {
	return &GormSellerRepository{db: db, enc: enc}
}

// FindByCode finds the active seller with the given business key
func (r *GormSellerRepository) FindByCode(ctx context.Context, code string) (*listing.Seller, error) {
	var seller listing.Seller
	if err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", strings.ToUpper(code)).
		First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.decrypt(&seller); err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindByCodeIncludingDeleted finds the most recent seller row for the key
// regardless of the soft-delete marker
func (r *GormSellerRepository) FindByCodeIncludingDeleted(ctx context.Context, code string) (*listing.Seller, error) {
	var seller listing.Seller
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		Order("created_at DESC").
		First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.decrypt(&seller); err != nil {
		return nil, err
	}
	return &seller, nil
}

// Upsert inserts the seller or updates the active row with the same
// business key in one statement
func (r *GormSellerRepository) Upsert(ctx context.Context, seller *listing.Seller) error {
	encrypted := *seller
	if err := r.encrypt(&encrypted); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "code"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("deleted_at IS NULL")}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "phone", "email", "property_type",
			"inquired_on", "assessment_amount", "mediation_status",
			"visit_date", "memo", "updated_at",
		}),
	}).Create(&encrypted).Error
}

// Patch applies a partial field update to the active row for the key
func (r *GormSellerRepository) Patch(ctx context.Context, code string, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for column, value := range fields {
		switch column {
		case "name", "address", "phone", "email":
			text, _ := value.(string)
			ciphertext, err := r.enc.Encrypt(text)
			if err != nil {
				return err
			}
			updates[column] = ciphertext
		default:
			updates[column] = value
		}
	}
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&listing.Seller{}).
		Where("code = ? AND deleted_at IS NULL", strings.ToUpper(code)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkDeleted sets deleted_at on the active row for the key
func (r *GormSellerRepository) MarkDeleted(ctx context.Context, code string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&listing.Seller{}).
		Where("code = ? AND deleted_at IS NULL", strings.ToUpper(code)).
		Updates(map[string]any{"deleted_at": at, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearDeleted clears deleted_at on the latest row for the key
func (r *GormSellerRepository) ClearDeleted(ctx context.Context, code string) error {
	var seller listing.Seller
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		Order("created_at DESC").
		First(&seller).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&listing.Seller{}).
		Where("id = ?", seller.ID).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()}).Error
}

// ActiveCodesPage returns one page of active business keys ordered by code
func (r *GormSellerRepository) ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&listing.Seller{}).
		Where("deleted_at IS NULL").
		Order("code ASC").
		Offset(offset).Limit(limit).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// ActiveRecordsPage returns one page of active records in compare form
func (r *GormSellerRepository) ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error) {
	var sellers []listing.Seller
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("code ASC").
		Offset(offset).Limit(limit).
		Find(&sellers).Error; err != nil {
		return nil, err
	}

	records := make([]syncdomain.CompareRecord, 0, len(sellers))
	for i := range sellers {
		if err := r.decrypt(&sellers[i]); err != nil {
			return nil, err
		}
		records = append(records, sellerCompareRecord(&sellers[i]))
	}
	return records, nil
}

// List returns active sellers for read surfaces
func (r *GormSellerRepository) List(ctx context.Context, filter shared.Filter) ([]listing.Seller, int64, error) {
	query := r.db.WithContext(ctx).Model(&listing.Seller{}).Where("deleted_at IS NULL")
	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sellers []listing.Seller
	if err := query.
		Order(orderClause(filter, "code")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&sellers).Error; err != nil {
		return nil, 0, err
	}
	for i := range sellers {
		if err := r.decrypt(&sellers[i]); err != nil {
			return nil, 0, err
		}
	}
	return sellers, total, nil
}

func (r *GormSellerRepository) encrypt(s *listing.Seller) error {
	var err error
	if s.Name, err = r.enc.Encrypt(s.Name); err != nil {
		return err
	}
	if s.Address, err = r.enc.Encrypt(s.Address); err != nil {
		return err
	}
	if s.Phone, err = r.enc.Encrypt(s.Phone); err != nil {
		return err
	}
	if s.Email, err = r.enc.Encrypt(s.Email); err != nil {
		return err
	}
	return nil
}

func (r *GormSellerRepository) decrypt(s *listing.Seller) error {
	var err error
	if s.Name, err = r.enc.Decrypt(s.Name); err != nil {
		return err
	}
	if s.Address, err = r.enc.Decrypt(s.Address); err != nil {
		return err
	}
	if s.Phone, err = r.enc.Decrypt(s.Phone); err != nil {
		return err
	}
	if s.Email, err = r.enc.Decrypt(s.Email); err != nil {
		return err
	}
	return nil
}

// sellerCompareRecord flattens a seller into the normalized key/value view
// used by change detection. Values here must match what the field mapper
// produces for the same sheet columns.
func sellerCompareRecord(s *listing.Seller) syncdomain.CompareRecord {
	return syncdomain.CompareRecord{
		Key: s.Code,
		Fields: map[string]string{
			"name":              s.Name,
			"address":           s.Address,
			"phone":             s.Phone,
			"email":             s.Email,
			"property_type":     s.PropertyType,
			"inquired_on":       formatDate(s.InquiredOn),
			"assessment_amount": formatDecimal(s.AssessmentAmount),
			"mediation_status":  string(s.MediationStatus),
			"visit_date":        formatDate(s.VisitDate),
			"memo":              s.Memo,
		},
	}
}

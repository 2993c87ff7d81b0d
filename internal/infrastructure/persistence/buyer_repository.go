package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estatedesk/backend/internal/domain/buyer"
	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/infrastructure/crypto"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// GormBuyerRepository implements BuyerRepository using GORM
type GormBuyerRepository struct {
	db  *gorm.DB
	enc *crypto.FieldEncryptor
}

var _ buyer.BuyerRepository = (*GormBuyerRepository)(nil)

// NewGormBuyerRepository creates a new GormBuyerRepository
func NewGormBuyerRepository(db *gorm.DB, enc *crypto.FieldEncryptor) *GormBuyerRepository {
	return &GormBuyerRepository{db: db, enc: enc}
}

// FindByCode finds the active buyer with the given business key
func (r *GormBuyerRepository) FindByCode(ctx context.Context, code string) (*buyer.Buyer, error) {
	var b buyer.Buyer
	if err := r.db.WithContext(ctx).
		Where("code = ? AND deleted_at IS NULL", strings.TrimSpace(code)).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.decrypt(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// FindByCodeIncludingDeleted finds the most recent buyer row for the key
// regardless of the soft-delete marker
func (r *GormBuyerRepository) FindByCodeIncludingDeleted(ctx context.Context, code string) (*buyer.Buyer, error) {
	var b buyer.Buyer
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		Order("created_at DESC").
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.decrypt(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Upsert inserts the buyer or updates the existing active row with the same
// business key in one statement
func (r *GormBuyerRepository) Upsert(ctx context.Context, b *buyer.Buyer) error {
	encrypted := *b
	if err := r.encrypt(&encrypted); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "code"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("deleted_at IS NULL")}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "phone", "email", "desired_area", "budget",
			"inquired_on", "survey_result", "survey_confirmed",
			"viewing_date", "offer_date", "loan_approval_date",
			"contract_date", "settlement_date", "follow_up_date",
			"last_contacted_on", "mail_opt_out", "outcome", "memo",
			"updated_at",
		}),
	}).Create(&encrypted).Error
}

// Patch applies a partial field update to the active row for the key
func (r *GormBuyerRepository) Patch(ctx context.Context, code string, fields map[string]any) error {
	updates := make(map[string]any, len(fields)+1)
	for column, value := range fields {
		switch column {
		case "name", "phone", "email":
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

	result := r.db.WithContext(ctx).Model(&buyer.Buyer{}).
		Where("code = ? AND deleted_at IS NULL", strings.TrimSpace(code)).
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
func (r *GormBuyerRepository) MarkDeleted(ctx context.Context, code string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&buyer.Buyer{}).
		Where("code = ? AND deleted_at IS NULL", strings.TrimSpace(code)).
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
func (r *GormBuyerRepository) ClearDeleted(ctx context.Context, code string) error {
	var b buyer.Buyer
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		Order("created_at DESC").
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Model(&buyer.Buyer{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()}).Error
}

// ActiveCodesPage returns one page of active business keys. Buyer codes are
// numeric in the sheet, so ordering casts through length first to keep
// "2" before "10".
func (r *GormBuyerRepository) ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&buyer.Buyer{}).
		Where("deleted_at IS NULL").
		Order("length(code) ASC, code ASC").
		Offset(offset).Limit(limit).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// ActiveRecordsPage returns one page of active records in compare form
func (r *GormBuyerRepository) ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error) {
	var buyers []buyer.Buyer
	if err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("length(code) ASC, code ASC").
		Offset(offset).Limit(limit).
		Find(&buyers).Error; err != nil {
		return nil, err
	}

	records := make([]syncdomain.CompareRecord, 0, len(buyers))
	for i := range buyers {
		if err := r.decrypt(&buyers[i]); err != nil {
			return nil, err
		}
		records = append(records, buyerCompareRecord(&buyers[i]))
	}
	return records, nil
}

// List returns active buyers for read surfaces
func (r *GormBuyerRepository) List(ctx context.Context, filter shared.Filter) ([]buyer.Buyer, int64, error) {
	query := r.db.WithContext(ctx).Model(&buyer.Buyer{}).Where("deleted_at IS NULL")
	if filter.Search != "" {
		query = query.Where("code ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var buyers []buyer.Buyer
	if err := query.
		Order(orderClause(filter, "created_at")).
		Offset(filter.Offset()).Limit(filter.PageSize).
		Find(&buyers).Error; err != nil {
		return nil, 0, err
	}
	for i := range buyers {
		if err := r.decrypt(&buyers[i]); err != nil {
			return nil, 0, err
		}
	}
	return buyers, total, nil
}

func (r *GormBuyerRepository) encrypt(b *buyer.Buyer) error {
	var err error
	if b.Name, err = r.enc.Encrypt(b.Name); err != nil {
		return err
	}
	if b.Phone, err = r.enc.Encrypt(b.Phone); err != nil {
		return err
	}
	if b.Email, err = r.enc.Encrypt(b.Email); err != nil {
		return err
	}
	return nil
}

func (r *GormBuyerRepository) decrypt(b *buyer.Buyer) error {
	var err error
	if b.Name, err = r.enc.Decrypt(b.Name); err != nil {
		return err
	}
	if b.Phone, err = r.enc.Decrypt(b.Phone); err != nil {
		return err
	}
	if b.Email, err = r.enc.Decrypt(b.Email); err != nil {
		return err
	}
	return nil
}

// buyerCompareRecord flattens a buyer into the normalized key/value view
// used by change detection
func buyerCompareRecord(b *buyer.Buyer) syncdomain.CompareRecord {
	return syncdomain.CompareRecord{
		Key: b.Code,
		Fields: map[string]string{
			"name":               b.Name,
			"phone":              b.Phone,
			"email":              b.Email,
			"desired_area":       b.DesiredArea,
			"budget":             formatDecimal(b.Budget),
			"inquired_on":        formatDate(b.InquiredOn),
			"survey_result":      b.SurveyResult,
			"survey_confirmed":   b.SurveyConfirmed,
			"viewing_date":       formatDate(b.ViewingDate),
			"offer_date":         formatDate(b.OfferDate),
			"loan_approval_date": formatDate(b.LoanApprovalDate),
			"contract_date":      formatDate(b.ContractDate),
			"settlement_date":    formatDate(b.SettlementDate),
			"follow_up_date":     formatDate(b.FollowUpDate),
			"last_contacted_on":  formatDate(b.LastContactedOn),
			"mail_opt_out":       strconv.FormatBool(b.MailOptOut),
			"outcome":            string(b.Outcome),
			"memo":               b.Memo,
		},
	}
}

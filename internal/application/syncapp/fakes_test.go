package syncapp

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estatedesk/backend/internal/domain/buyer"
	"github.com/estatedesk/backend/internal/domain/listing"
	"github.com/estatedesk/backend/internal/domain/shared"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// fakeTabularSource is an in-memory sheet
type fakeTabularSource struct {
	keyColumn string
	rows      []syncdomain.Row
	authErr   error
	readCount int
}

func (f *fakeTabularSource) Authenticate(ctx context.Context) error {
	return f.authErr
}

func (f *fakeTabularSource) Headers(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeTabularSource) ReadAll(ctx context.Context) ([]syncdomain.Row, error) {
	f.readCount++
	out := make([]syncdomain.Row, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeTabularSource) AppendRow(ctx context.Context, row syncdomain.Row) error {
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTabularSource) UpdateRow(ctx context.Context, rowIndex int, row syncdomain.Row) error {
	f.rows[rowIndex-2] = row
	return nil
}

func (f *fakeTabularSource) DeleteRow(ctx context.Context, rowIndex int) error {
	f.rows = append(f.rows[:rowIndex-2], f.rows[rowIndex-1:]...)
	return nil
}

func (f *fakeTabularSource) FindRowByColumn(ctx context.Context, column, value string) (int, bool, error) {
	for i, row := range f.rows {
		if row.Get(column) == value {
			return i + 2, true, nil
		}
	}
	return 0, false, nil
}

// fakeSellerRepository is an in-memory SellerRepository
type fakeSellerRepository struct {
	sellers map[string]*listing.Seller
}

func newFakeSellerRepository() *fakeSellerRepository {
	return &fakeSellerRepository{sellers: make(map[string]*listing.Seller)}
}

func (f *fakeSellerRepository) FindByCode(ctx context.Context, code string) (*listing.Seller, error) {
	s, ok := f.sellers[strings.ToUpper(code)]
	if !ok || !s.IsActive() {
		return nil, shared.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSellerRepository) FindByCodeIncludingDeleted(ctx context.Context, code string) (*listing.Seller, error) {
	s, ok := f.sellers[strings.ToUpper(code)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSellerRepository) Upsert(ctx context.Context, seller *listing.Seller) error {
	if existing, ok := f.sellers[seller.Code]; ok && existing.IsActive() {
		seller.ID = existing.ID
	}
	clone := *seller
	f.sellers[seller.Code] = &clone
	return nil
}

func (f *fakeSellerRepository) Patch(ctx context.Context, code string, fields map[string]any) error {
	s, ok := f.sellers[strings.ToUpper(code)]
	if !ok || !s.IsActive() {
		return shared.ErrNotFound
	}
	applySellerPatch(s, fields)
	s.Touch()
	return nil
}

func (f *fakeSellerRepository) MarkDeleted(ctx context.Context, code string, at time.Time) error {
	s, ok := f.sellers[strings.ToUpper(code)]
	if !ok || !s.IsActive() {
		return shared.ErrNotFound
	}
	s.SoftDelete(at)
	return nil
}

func (f *fakeSellerRepository) ClearDeleted(ctx context.Context, code string) error {
	s, ok := f.sellers[strings.ToUpper(code)]
	if !ok {
		return shared.ErrNotFound
	}
	s.Recover()
	return nil
}

func (f *fakeSellerRepository) ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error) {
	codes := f.activeCodes()
	return pageOf(codes, offset, limit), nil
}

func (f *fakeSellerRepository) ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error) {
	codes := pageOf(f.activeCodes(), offset, limit)
	records := make([]syncdomain.CompareRecord, 0, len(codes))
	for _, code := range codes {
		records = append(records, sellerCompareView(f.sellers[code]))
	}
	return records, nil
}

func (f *fakeSellerRepository) List(ctx context.Context, filter shared.Filter) ([]listing.Seller, int64, error) {
	var out []listing.Seller
	for _, code := range f.activeCodes() {
		out = append(out, *f.sellers[code])
	}
	return out, int64(len(out)), nil
}

func (f *fakeSellerRepository) activeCodes() []string {
	var codes []string
	for code, s := range f.sellers {
		if s.IsActive() {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

func applySellerPatch(s *listing.Seller, fields map[string]any) {
	for column, value := range fields {
		switch column {
		case "name":
			s.Name, _ = value.(string)
		case "address":
			s.Address, _ = value.(string)
		case "phone":
			s.Phone, _ = value.(string)
		case "email":
			s.Email, _ = value.(string)
		case "property_type":
			s.PropertyType, _ = value.(string)
		case "mediation_status":
			status, _ := value.(string)
			s.MediationStatus = listing.MediationStatus(status)
		case "memo":
			s.Memo, _ = value.(string)
		case "inquired_on":
			s.InquiredOn, _ = value.(*time.Time)
		case "visit_date":
			s.VisitDate, _ = value.(*time.Time)
		case "assessment_amount":
			s.AssessmentAmount, _ = value.(*decimal.Decimal)
		}
	}
}

func sellerCompareView(s *listing.Seller) syncdomain.CompareRecord {
	amount := ""
	if s.AssessmentAmount != nil {
		amount = s.AssessmentAmount.String()
	}
	return syncdomain.CompareRecord{
		Key: s.Code,
		Fields: map[string]string{
			"name":              s.Name,
			"address":           s.Address,
			"phone":             s.Phone,
			"email":             s.Email,
			"property_type":     s.PropertyType,
			"inquired_on":       formatDatePtr(s.InquiredOn),
			"assessment_amount": amount,
			"mediation_status":  string(s.MediationStatus),
			"visit_date":        formatDatePtr(s.VisitDate),
			"memo":              s.Memo,
		},
	}
}

// fakePropertyRepository is an in-memory PropertyRepository
type fakePropertyRepository struct {
	properties []*listing.Property
}

func (f *fakePropertyRepository) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]listing.Property, error) {
	var out []listing.Property
	for _, p := range f.properties {
		if p.SellerID == sellerID && p.IsActive() {
			out = append(out, *p)
		}
	}
	// newest first, matching the repository contract
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakePropertyRepository) Create(ctx context.Context, property *listing.Property) error {
	clone := *property
	f.properties = append(f.properties, &clone)
	return nil
}

func (f *fakePropertyRepository) Update(ctx context.Context, property *listing.Property) error {
	for i, p := range f.properties {
		if p.ID == property.ID {
			clone := *property
			f.properties[i] = &clone
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakePropertyRepository) SoftDeleteBySeller(ctx context.Context, sellerID uuid.UUID, at time.Time) error {
	for _, p := range f.properties {
		if p.SellerID == sellerID && p.IsActive() {
			p.SoftDelete(at)
		}
	}
	return nil
}

func (f *fakePropertyRepository) RestoreBySeller(ctx context.Context, sellerID uuid.UUID) error {
	for _, p := range f.properties {
		if p.SellerID == sellerID && !p.IsActive() {
			p.Recover()
		}
	}
	return nil
}

// fakeBuyerRepository is an in-memory BuyerRepository
type fakeBuyerRepository struct {
	buyers map[string]*buyer.Buyer
}

func newFakeBuyerRepository() *fakeBuyerRepository {
	return &fakeBuyerRepository{buyers: make(map[string]*buyer.Buyer)}
}

func (f *fakeBuyerRepository) FindByCode(ctx context.Context, code string) (*buyer.Buyer, error) {
	b, ok := f.buyers[strings.TrimSpace(code)]
	if !ok || !b.IsActive() {
		return nil, shared.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBuyerRepository) FindByCodeIncludingDeleted(ctx context.Context, code string) (*buyer.Buyer, error) {
	b, ok := f.buyers[strings.TrimSpace(code)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBuyerRepository) Upsert(ctx context.Context, b *buyer.Buyer) error {
	if existing, ok := f.buyers[b.Code]; ok && existing.IsActive() {
		b.ID = existing.ID
	}
	clone := *b
	f.buyers[b.Code] = &clone
	return nil
}

func (f *fakeBuyerRepository) Patch(ctx context.Context, code string, fields map[string]any) error {
	b, ok := f.buyers[strings.TrimSpace(code)]
	if !ok || !b.IsActive() {
		return shared.ErrNotFound
	}
	if name, ok := fields["name"].(string); ok {
		b.Name = name
	}
	if memo, ok := fields["memo"].(string); ok {
		b.Memo = memo
	}
	if d, ok := fields["viewing_date"].(*time.Time); ok {
		b.ViewingDate = d
	}
	b.Touch()
	return nil
}

func (f *fakeBuyerRepository) MarkDeleted(ctx context.Context, code string, at time.Time) error {
	b, ok := f.buyers[strings.TrimSpace(code)]
	if !ok || !b.IsActive() {
		return shared.ErrNotFound
	}
	b.SoftDelete(at)
	return nil
}

func (f *fakeBuyerRepository) ClearDeleted(ctx context.Context, code string) error {
	b, ok := f.buyers[strings.TrimSpace(code)]
	if !ok {
		return shared.ErrNotFound
	}
	b.Recover()
	return nil
}

func (f *fakeBuyerRepository) ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error) {
	return pageOf(f.activeCodes(), offset, limit), nil
}

func (f *fakeBuyerRepository) ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error) {
	codes := pageOf(f.activeCodes(), offset, limit)
	records := make([]syncdomain.CompareRecord, 0, len(codes))
	for _, code := range codes {
		b := f.buyers[code]
		records = append(records, syncdomain.CompareRecord{
			Key: b.Code,
			Fields: map[string]string{
				"name":          b.Name,
				"phone":         b.Phone,
				"email":         b.Email,
				"memo":          b.Memo,
				"inquired_on":   formatDatePtr(b.InquiredOn),
				"viewing_date":  formatDatePtr(b.ViewingDate),
				"survey_result": b.SurveyResult,
			},
		})
	}
	return records, nil
}

func (f *fakeBuyerRepository) List(ctx context.Context, filter shared.Filter) ([]buyer.Buyer, int64, error) {
	var out []buyer.Buyer
	for _, code := range f.activeCodes() {
		out = append(out, *f.buyers[code])
	}
	return out, int64(len(out)), nil
}

func (f *fakeBuyerRepository) activeCodes() []string {
	var codes []string
	for code, b := range f.buyers {
		if b.IsActive() {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// fakeAuditRepository is an in-memory DeletionAuditRepository
type fakeAuditRepository struct {
	audits []*syncdomain.DeletionAudit
}

func (f *fakeAuditRepository) Create(ctx context.Context, audit *syncdomain.DeletionAudit) error {
	clone := *audit
	f.audits = append(f.audits, &clone)
	return nil
}

func (f *fakeAuditRepository) LatestEligible(ctx context.Context, kind syncdomain.RecordKind, businessKey string) (*syncdomain.DeletionAudit, error) {
	for i := len(f.audits) - 1; i >= 0; i-- {
		a := f.audits[i]
		if a.RecordKind == kind && a.BusinessKey == businessKey && a.Eligible() {
			clone := *a
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAuditRepository) Update(ctx context.Context, audit *syncdomain.DeletionAudit) error {
	for i, a := range f.audits {
		if a.ID == audit.ID {
			clone := *audit
			f.audits[i] = &clone
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeAuditRepository) FindByKey(ctx context.Context, kind syncdomain.RecordKind, businessKey string) ([]syncdomain.DeletionAudit, error) {
	var out []syncdomain.DeletionAudit
	for _, a := range f.audits {
		if a.RecordKind == kind && a.BusinessKey == businessKey {
			out = append(out, *a)
		}
	}
	return out, nil
}

// fakeRunRepository is an in-memory SyncRunRepository
type fakeRunRepository struct {
	runs []*syncdomain.SyncRun
}

func (f *fakeRunRepository) Save(ctx context.Context, run *syncdomain.SyncRun) error {
	for i, r := range f.runs {
		if r.ID == run.ID {
			clone := *run
			f.runs[i] = &clone
			return nil
		}
	}
	clone := *run
	f.runs = append(f.runs, &clone)
	return nil
}

func (f *fakeRunRepository) FindLatest(ctx context.Context) (*syncdomain.SyncRun, error) {
	if len(f.runs) == 0 {
		return nil, shared.ErrNotFound
	}
	clone := *f.runs[len(f.runs)-1]
	return &clone, nil
}

func (f *fakeRunRepository) FindRecent(ctx context.Context, limit int) ([]syncdomain.SyncRun, error) {
	var out []syncdomain.SyncRun
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *f.runs[i])
	}
	return out, nil
}

func pageOf(items []string, offset, limit int) []string {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

package syncapp

import (
	"encoding/json"
	"strings"

	"github.com/estatedesk/backend/internal/domain/listing"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// Seller sheet column headers as field staff maintain them
const (
	sellerColCode             = "売主番号"
	sellerColName             = "氏名"
	sellerColAddress          = "住所"
	sellerColPhone            = "電話番号"
	sellerColEmail            = "メール"
	sellerColPropertyType     = "物件種別"
	sellerColInquiredOn       = "問合日"
	sellerColAssessmentAmount = "査定金額"
	sellerColMediationStatus  = "媒介状況"
	sellerColVisitDate        = "訪問日"
	sellerColMemo             = "備考"
)

// propertyTypeLabels expands the single-letter abbreviations staff use in
// the 物件種別 column. Unlisted codes pass through as typed.
var propertyTypeLabels = map[string]string{
	"M": "マンション",
	"K": "戸建",
	"T": "土地",
	"A": "アパート",
	"B": "ビル",
}

// SellerMapper converts raw seller sheet rows to and from the domain shape
type SellerMapper struct{}

// NewSellerMapper creates a SellerMapper
func NewSellerMapper() *SellerMapper {
	return &SellerMapper{}
}

// KeyColumn returns the business-key column header
func (m *SellerMapper) KeyColumn() string {
	return sellerColCode
}

// MapToDomain builds a seller entity from a raw sheet row. Only a blank
// business key fails the row; every other malformed cell degrades to an
// absent field.
func (m *SellerMapper) MapToDomain(row syncdomain.Row) (*listing.Seller, error) {
	code := strings.TrimSpace(row.Get(sellerColCode))
	if code == "" {
		return nil, syncdomain.NewDataShapeError("seller row has a blank business key")
	}

	seller, err := listing.NewSeller(code)
	if err != nil {
		return nil, err
	}
	seller.Name = strings.TrimSpace(row.Get(sellerColName))
	seller.Address = strings.TrimSpace(row.Get(sellerColAddress))
	seller.Phone = strings.TrimSpace(row.Get(sellerColPhone))
	seller.Email = strings.TrimSpace(row.Get(sellerColEmail))
	seller.PropertyType = recode(propertyTypeLabels, row.Get(sellerColPropertyType))
	seller.InquiredOn = parseDateCell(row.Get(sellerColInquiredOn))
	seller.AssessmentAmount = parseNumberCell(row.Get(sellerColAssessmentAmount))
	seller.MediationStatus = listing.MediationStatus(strings.TrimSpace(row.Get(sellerColMediationStatus)))
	seller.VisitDate = parseDateCell(row.Get(sellerColVisitDate))
	seller.Memo = strings.TrimSpace(row.Get(sellerColMemo))
	return seller, nil
}

// MapToPatch builds the column/value map for the update path. The full
// fixed field list is patched rather than only the changed subset, so a
// patch is always a faithful projection of the row.
func (m *SellerMapper) MapToPatch(row syncdomain.Row) map[string]any {
	return map[string]any{
		"name":              strings.TrimSpace(row.Get(sellerColName)),
		"address":           strings.TrimSpace(row.Get(sellerColAddress)),
		"phone":             strings.TrimSpace(row.Get(sellerColPhone)),
		"email":             strings.TrimSpace(row.Get(sellerColEmail)),
		"property_type":     recode(propertyTypeLabels, row.Get(sellerColPropertyType)),
		"inquired_on":       parseDateCell(row.Get(sellerColInquiredOn)),
		"assessment_amount": parseNumberCell(row.Get(sellerColAssessmentAmount)),
		"mediation_status":  strings.TrimSpace(row.Get(sellerColMediationStatus)),
		"visit_date":        parseDateCell(row.Get(sellerColVisitDate)),
		"memo":              strings.TrimSpace(row.Get(sellerColMemo)),
	}
}

// MapToExternal builds a sheet row from a seller entity, used when a
// recovered record has to be restored into the sheet
func (m *SellerMapper) MapToExternal(s *listing.Seller) syncdomain.Row {
	amount := ""
	if s.AssessmentAmount != nil {
		amount = s.AssessmentAmount.String()
	}
	return syncdomain.Row{
		sellerColCode:             s.Code,
		sellerColName:             s.Name,
		sellerColAddress:          s.Address,
		sellerColPhone:            s.Phone,
		sellerColEmail:            s.Email,
		sellerColPropertyType:     s.PropertyType,
		sellerColInquiredOn:       formatDatePtr(s.InquiredOn),
		sellerColAssessmentAmount: amount,
		sellerColMediationStatus:  string(s.MediationStatus),
		sellerColVisitDate:        formatDatePtr(s.VisitDate),
		sellerColMemo:             s.Memo,
	}
}

// NormalizeRow projects a raw row onto the normalized compare fields, using
// the same coercions MapToDomain applies, so change detection compares like
// with like.
func (m *SellerMapper) NormalizeRow(row syncdomain.Row) map[string]string {
	return map[string]string{
		"name":              strings.TrimSpace(row.Get(sellerColName)),
		"address":           strings.TrimSpace(row.Get(sellerColAddress)),
		"phone":             strings.TrimSpace(row.Get(sellerColPhone)),
		"email":             strings.TrimSpace(row.Get(sellerColEmail)),
		"property_type":     recode(propertyTypeLabels, row.Get(sellerColPropertyType)),
		"inquired_on":       formatDatePtr(parseDateCell(row.Get(sellerColInquiredOn))),
		"assessment_amount": formatDecimalPtr(parseNumberCell(row.Get(sellerColAssessmentAmount))),
		"mediation_status":  strings.TrimSpace(row.Get(sellerColMediationStatus)),
		"visit_date":        formatDatePtr(parseDateCell(row.Get(sellerColVisitDate))),
		"memo":              strings.TrimSpace(row.Get(sellerColMemo)),
	}
}

// Key returns the trimmed business key of a raw row
func (m *SellerMapper) Key(row syncdomain.Row) string {
	return strings.ToUpper(strings.TrimSpace(row.Get(sellerColCode)))
}

// Snapshot renders the entity as the audit snapshot payload
func (m *SellerMapper) Snapshot(s *listing.Seller) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"code":              s.Code,
		"name":              s.Name,
		"address":           s.Address,
		"phone":             s.Phone,
		"email":             s.Email,
		"property_type":     s.PropertyType,
		"inquired_on":       formatDatePtr(s.InquiredOn),
		"assessment_amount": formatDecimalPtr(s.AssessmentAmount),
		"mediation_status":  string(s.MediationStatus),
		"visit_date":        formatDatePtr(s.VisitDate),
		"memo":              s.Memo,
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

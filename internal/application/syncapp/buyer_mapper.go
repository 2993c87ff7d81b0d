package syncapp

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/estatedesk/backend/internal/domain/buyer"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// Buyer sheet column headers. The contract date is split across a year
// column and a month/day column in the sheet and combined on the way in.
const (
	buyerColCode            = "No"
	buyerColName            = "氏名"
	buyerColPhone           = "電話番号"
	buyerColEmail           = "メール"
	buyerColDesiredArea     = "希望エリア"
	buyerColBudget          = "予算"
	buyerColInquiredOn      = "反響日"
	buyerColSurveyResult    = "アンケート"
	buyerColSurveyConfirmed = "アンケート確認"
	buyerColViewingDate     = "見学日"
	buyerColOfferDate       = "買付日"
	buyerColLoanApproval    = "ローン承認日"
	buyerColContractYear    = "契約年"
	buyerColContractDay     = "契約月日"
	buyerColSettlementDate  = "決済日"
	buyerColFollowUpDate    = "次回フォロー日"
	buyerColLastContactedOn = "最終接触日"
	buyerColMailOptOut      = "配信停止"
	buyerColOutcome         = "結果"
	buyerColMemo            = "備考"
)

// BuyerMapper converts raw buyer sheet rows to and from the domain shape
type BuyerMapper struct{}

// NewBuyerMapper creates a BuyerMapper
func NewBuyerMapper() *BuyerMapper {
	return &BuyerMapper{}
}

// KeyColumn returns the business-key column header
func (m *BuyerMapper) KeyColumn() string {
	return buyerColCode
}

// MapToDomain builds a buyer entity from a raw sheet row
func (m *BuyerMapper) MapToDomain(row syncdomain.Row) (*buyer.Buyer, error) {
	code := strings.TrimSpace(row.Get(buyerColCode))
	if code == "" {
		return nil, syncdomain.NewDataShapeError("buyer row has a blank business key")
	}

	b, err := buyer.NewBuyer(code)
	if err != nil {
		return nil, err
	}
	b.Name = strings.TrimSpace(row.Get(buyerColName))
	b.Phone = strings.TrimSpace(row.Get(buyerColPhone))
	b.Email = strings.TrimSpace(row.Get(buyerColEmail))
	b.DesiredArea = strings.TrimSpace(row.Get(buyerColDesiredArea))
	b.Budget = parseNumberCell(row.Get(buyerColBudget))
	b.InquiredOn = parseDateCell(row.Get(buyerColInquiredOn))
	b.SurveyResult = strings.TrimSpace(row.Get(buyerColSurveyResult))
	b.SurveyConfirmed = strings.TrimSpace(row.Get(buyerColSurveyConfirmed))
	b.ViewingDate = parseDateCell(row.Get(buyerColViewingDate))
	b.OfferDate = parseDateCell(row.Get(buyerColOfferDate))
	b.LoanApprovalDate = parseDateCell(row.Get(buyerColLoanApproval))
	b.ContractDate = parseCompositeDate(row.Get(buyerColContractYear), row.Get(buyerColContractDay))
	b.SettlementDate = parseDateCell(row.Get(buyerColSettlementDate))
	b.FollowUpDate = parseDateCell(row.Get(buyerColFollowUpDate))
	b.LastContactedOn = parseDateCell(row.Get(buyerColLastContactedOn))
	b.MailOptOut = parseBoolCell(row.Get(buyerColMailOptOut))
	b.Outcome = buyer.Outcome(strings.TrimSpace(row.Get(buyerColOutcome)))
	b.Memo = strings.TrimSpace(row.Get(buyerColMemo))
	return b, nil
}

// MapToPatch builds the column/value map for the update path
func (m *BuyerMapper) MapToPatch(row syncdomain.Row) map[string]any {
	return map[string]any{
		"name":               strings.TrimSpace(row.Get(buyerColName)),
		"phone":              strings.TrimSpace(row.Get(buyerColPhone)),
		"email":              strings.TrimSpace(row.Get(buyerColEmail)),
		"desired_area":       strings.TrimSpace(row.Get(buyerColDesiredArea)),
		"budget":             parseNumberCell(row.Get(buyerColBudget)),
		"inquired_on":        parseDateCell(row.Get(buyerColInquiredOn)),
		"survey_result":      strings.TrimSpace(row.Get(buyerColSurveyResult)),
		"survey_confirmed":   strings.TrimSpace(row.Get(buyerColSurveyConfirmed)),
		"viewing_date":       parseDateCell(row.Get(buyerColViewingDate)),
		"offer_date":         parseDateCell(row.Get(buyerColOfferDate)),
		"loan_approval_date": parseDateCell(row.Get(buyerColLoanApproval)),
		"contract_date":      parseCompositeDate(row.Get(buyerColContractYear), row.Get(buyerColContractDay)),
		"settlement_date":    parseDateCell(row.Get(buyerColSettlementDate)),
		"follow_up_date":     parseDateCell(row.Get(buyerColFollowUpDate)),
		"last_contacted_on":  parseDateCell(row.Get(buyerColLastContactedOn)),
		"mail_opt_out":       parseBoolCell(row.Get(buyerColMailOptOut)),
		"outcome":            strings.TrimSpace(row.Get(buyerColOutcome)),
		"memo":               strings.TrimSpace(row.Get(buyerColMemo)),
	}
}

// MapToExternal builds a sheet row from a buyer entity, used when a
// recovered record has to be restored into the sheet
func (m *BuyerMapper) MapToExternal(b *buyer.Buyer) syncdomain.Row {
	contractYear, contractDay := "", ""
	if b.ContractDate != nil {
		contractYear = strconv.Itoa(b.ContractDate.Year())
		contractDay = strconv.Itoa(int(b.ContractDate.Month())) + "/" + strconv.Itoa(b.ContractDate.Day())
	}
	optOut := ""
	if b.MailOptOut {
		optOut = "TRUE"
	}
	return syncdomain.Row{
		buyerColCode:            b.Code,
		buyerColName:            b.Name,
		buyerColPhone:           b.Phone,
		buyerColEmail:           b.Email,
		buyerColDesiredArea:     b.DesiredArea,
		buyerColBudget:          formatDecimalPtr(b.Budget),
		buyerColInquiredOn:      formatDatePtr(b.InquiredOn),
		buyerColSurveyResult:    b.SurveyResult,
		buyerColSurveyConfirmed: b.SurveyConfirmed,
		buyerColViewingDate:     formatDatePtr(b.ViewingDate),
		buyerColOfferDate:       formatDatePtr(b.OfferDate),
		buyerColLoanApproval:    formatDatePtr(b.LoanApprovalDate),
		buyerColContractYear:    contractYear,
		buyerColContractDay:     contractDay,
		buyerColSettlementDate:  formatDatePtr(b.SettlementDate),
		buyerColFollowUpDate:    formatDatePtr(b.FollowUpDate),
		buyerColLastContactedOn: formatDatePtr(b.LastContactedOn),
		buyerColMailOptOut:      optOut,
		buyerColOutcome:         string(b.Outcome),
		buyerColMemo:            b.Memo,
	}
}

// NormalizeRow projects a raw row onto the normalized compare fields
func (m *BuyerMapper) NormalizeRow(row syncdomain.Row) map[string]string {
	return map[string]string{
		"name":               strings.TrimSpace(row.Get(buyerColName)),
		"phone":              strings.TrimSpace(row.Get(buyerColPhone)),
		"email":              strings.TrimSpace(row.Get(buyerColEmail)),
		"desired_area":       strings.TrimSpace(row.Get(buyerColDesiredArea)),
		"budget":             formatDecimalPtr(parseNumberCell(row.Get(buyerColBudget))),
		"inquired_on":        formatDatePtr(parseDateCell(row.Get(buyerColInquiredOn))),
		"survey_result":      strings.TrimSpace(row.Get(buyerColSurveyResult)),
		"survey_confirmed":   strings.TrimSpace(row.Get(buyerColSurveyConfirmed)),
		"viewing_date":       formatDatePtr(parseDateCell(row.Get(buyerColViewingDate))),
		"offer_date":         formatDatePtr(parseDateCell(row.Get(buyerColOfferDate))),
		"loan_approval_date": formatDatePtr(parseDateCell(row.Get(buyerColLoanApproval))),
		"contract_date":      formatDatePtr(parseCompositeDate(row.Get(buyerColContractYear), row.Get(buyerColContractDay))),
		"settlement_date":    formatDatePtr(parseDateCell(row.Get(buyerColSettlementDate))),
		"follow_up_date":     formatDatePtr(parseDateCell(row.Get(buyerColFollowUpDate))),
		"last_contacted_on":  formatDatePtr(parseDateCell(row.Get(buyerColLastContactedOn))),
		"mail_opt_out":       strconv.FormatBool(parseBoolCell(row.Get(buyerColMailOptOut))),
		"outcome":            strings.TrimSpace(row.Get(buyerColOutcome)),
		"memo":               strings.TrimSpace(row.Get(buyerColMemo)),
	}
}

// Key returns the trimmed business key of a raw row
func (m *BuyerMapper) Key(row syncdomain.Row) string {
	return strings.TrimSpace(row.Get(buyerColCode))
}

// Snapshot renders the entity as the audit snapshot payload
func (m *BuyerMapper) Snapshot(b *buyer.Buyer) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"code":               b.Code,
		"name":               b.Name,
		"phone":              b.Phone,
		"email":              b.Email,
		"desired_area":       b.DesiredArea,
		"budget":             formatDecimalPtr(b.Budget),
		"inquired_on":        formatDatePtr(b.InquiredOn),
		"survey_result":      b.SurveyResult,
		"survey_confirmed":   b.SurveyConfirmed,
		"viewing_date":       formatDatePtr(b.ViewingDate),
		"offer_date":         formatDatePtr(b.OfferDate),
		"loan_approval_date": formatDatePtr(b.LoanApprovalDate),
		"contract_date":      formatDatePtr(b.ContractDate),
		"settlement_date":    formatDatePtr(b.SettlementDate),
		"follow_up_date":     formatDatePtr(b.FollowUpDate),
		"last_contacted_on":  formatDatePtr(b.LastContactedOn),
		"mail_opt_out":       strconv.FormatBool(b.MailOptOut),
		"outcome":            string(b.Outcome),
		"memo":               b.Memo,
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

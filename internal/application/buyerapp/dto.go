package buyerapp

import (
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backend/internal/application/status"
	"github.com/estatedesk/backend/internal/domain/buyer"
)

// BuyerResponse is the read model for one buyer, including the workflow
// status derived by the rule engine at read time.
type BuyerResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	DesiredArea string     `json:"desired_area"`
	Budget      string     `json:"budget,omitempty"`
	InquiredOn  *time.Time `json:"inquired_on"`

	SurveyResult     string     `json:"survey_result,omitempty"`
	SurveyConfirmed  string     `json:"survey_confirmed,omitempty"`
	ViewingDate      *time.Time `json:"viewing_date"`
	OfferDate        *time.Time `json:"offer_date"`
	LoanApprovalDate *time.Time `json:"loan_approval_date"`
	ContractDate     *time.Time `json:"contract_date"`
	SettlementDate   *time.Time `json:"settlement_date"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
	LastContactedOn  *time.Time `json:"last_contacted_on"`
	MailOptOut       bool       `json:"mail_opt_out"`
	Outcome          string     `json:"outcome,omitempty"`
	Memo             string     `json:"memo,omitempty"`

	Status status.RuleResult `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toBuyerResponse(b *buyer.Buyer, result status.RuleResult) BuyerResponse {
	resp := BuyerResponse{
		ID:               b.ID,
		Code:             b.Code,
		Name:             b.Name,
		Phone:            b.Phone,
		Email:            b.Email,
		DesiredArea:      b.DesiredArea,
		InquiredOn:       b.InquiredOn,
		SurveyResult:     b.SurveyResult,
		SurveyConfirmed:  b.SurveyConfirmed,
		ViewingDate:      b.ViewingDate,
		OfferDate:        b.OfferDate,
		LoanApprovalDate: b.LoanApprovalDate,
		ContractDate:     b.ContractDate,
		SettlementDate:   b.SettlementDate,
		FollowUpDate:     b.FollowUpDate,
		LastContactedOn:  b.LastContactedOn,
		MailOptOut:       b.MailOptOut,
		Outcome:          string(b.Outcome),
		Memo:             b.Memo,
		Status:           result,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
	if b.Budget != nil {
		resp.Budget = b.Budget.String()
	}
	return resp
}

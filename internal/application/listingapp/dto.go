package listingapp

import (
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backend/internal/domain/listing"
)

// SellerResponse is the read model for one seller
type SellerResponse struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Address          string     `json:"address"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	PropertyType     string     `json:"property_type"`
	InquiredOn       *time.Time `json:"inquired_on"`
	AssessmentAmount string     `json:"assessment_amount,omitempty"`
	MediationStatus  string     `json:"mediation_status"`
	VisitDate        *time.Time `json:"visit_date"`
	Memo             string     `json:"memo,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// SellerDetailResponse is a seller plus its properties
type SellerDetailResponse struct {
	SellerResponse
	Properties []PropertyResponse `json:"properties"`
}

// PropertyResponse is the read model for one property
type PropertyResponse struct {
	ID           uuid.UUID `json:"id"`
	Address      string    `json:"address"`
	PropertyType string    `json:"property_type"`
	Anomaly      bool      `json:"anomaly"`
	CreatedAt    time.Time `json:"created_at"`
}

func toSellerResponse(s *listing.Seller) SellerResponse {
	resp := SellerResponse{
		ID:              s.ID,
		Code:            s.Code,
		Name:            s.Name,
		Address:         s.Address,
		Phone:           s.Phone,
		Email:           s.Email,
		PropertyType:    s.PropertyType,
		InquiredOn:      s.InquiredOn,
		MediationStatus: string(s.MediationStatus),
		VisitDate:       s.VisitDate,
		Memo:            s.Memo,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.AssessmentAmount != nil {
		resp.AssessmentAmount = s.AssessmentAmount.String()
	}
	return resp
}

func toPropertyResponse(p *listing.Property) PropertyResponse {
	return PropertyResponse{
		ID:           p.ID,
		Address:      p.Address,
		PropertyType: p.PropertyType,
		Anomaly:      p.Anomaly,
		CreatedAt:    p.CreatedAt,
	}
}

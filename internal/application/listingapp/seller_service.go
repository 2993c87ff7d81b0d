package listingapp

import (
	"context"

	"github.com/estatedesk/backend/internal/domain/listing"
	"github.com/estatedesk/backend/internal/domain/shared"
)

// SellerService serves the operator-facing read side of the seller mirror.
// Writes go through the sync pipeline only; the HTTP surface never mutates
// seller rows directly.
type SellerService struct {
	sellers    listing.SellerRepository
	properties listing.PropertyRepository
}

// NewSellerService creates a new SellerService
func NewSellerService(sellers listing.SellerRepository, properties listing.PropertyRepository) *SellerService {
	return &SellerService{
		sellers:    sellers,
		properties: properties,
	}
}

// List returns one page of active sellers
func (s *SellerService) List(ctx context.Context, filter shared.Filter) ([]SellerResponse, int64, error) {
	sellers, total, err := s.sellers.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]SellerResponse, 0, len(sellers))
	for i := range sellers {
		responses = append(responses, toSellerResponse(&sellers[i]))
	}
	return responses, total, nil
}

// Get returns a single seller with its properties, or shared.ErrNotFound
func (s *SellerService) Get(ctx context.Context, code string) (*SellerDetailResponse, error) {
	seller, err := s.sellers.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	properties, err := s.properties.FindActiveBySeller(ctx, seller.ID)
	if err != nil {
		return nil, err
	}

	detail := &SellerDetailResponse{
		SellerResponse: toSellerResponse(seller),
		Properties:     make([]PropertyResponse, 0, len(properties)),
	}
	for i := range properties {
		detail.Properties = append(detail.Properties, toPropertyResponse(&properties[i]))
	}
	return detail, nil
}

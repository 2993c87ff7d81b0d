package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/estatedesk/backend/internal/domain/shared"
	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// SellerRepository is the persistence contract for sellers. "Active" means
// deleted_at IS NULL throughout.
type SellerRepository interface {
	// FindByCode returns the active seller with the given business key,
	// or shared.ErrNotFound
	FindByCode(ctx context.Context, code string) (*Seller, error)

	// FindByCodeIncludingDeleted returns the most recent seller row for
	// the key regardless of the soft-delete marker
	FindByCodeIncludingDeleted(ctx context.Context, code string) (*Seller, error)

	// Upsert inserts the seller or, when an active row with the same
	// business key already exists, updates it in one atomic statement
	Upsert(ctx context.Context, seller *Seller) error

	// Patch applies a partial field update to the active row for the key
	// and stamps updated_at
	Patch(ctx context.Context, code string, fields map[string]any) error

	// MarkDeleted sets deleted_at on the active row for the key
	MarkDeleted(ctx context.Context, code string, at time.Time) error

	// ClearDeleted clears deleted_at on the latest row for the key
	ClearDeleted(ctx context.Context, code string) error

	// ActiveCodesPage returns one page of active business keys; callers
	// loop until a short page is returned
	ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error)

	// ActiveRecordsPage returns one page of active records in compare form
	ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error)

	// List returns active sellers for read surfaces
	List(ctx context.Context, filter shared.Filter) ([]Seller, int64, error)
}

// PropertyRepository is the persistence contract for seller-owned properties
type PropertyRepository interface {
	// FindActiveBySeller returns active properties for a seller ordered
	// by created_at descending (newest, i.e. canonical, first)
	FindActiveBySeller(ctx context.Context, sellerID uuid.UUID) ([]Property, error)

	Create(ctx context.Context, property *Property) error

	Update(ctx context.Context, property *Property) error

	// SoftDeleteBySeller cascades a soft delete to the seller's properties
	SoftDeleteBySeller(ctx context.Context, sellerID uuid.UUID, at time.Time) error

	// RestoreBySeller clears deleted_at on the seller's properties that
	// were cascaded at or after the seller's own deletion
	RestoreBySeller(ctx context.Context, sellerID uuid.UUID) error
}

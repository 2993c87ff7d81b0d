package buyer

import (
	"context"
	"time"

	"github.com/estatedesk/backend/internal/domain/shared"
	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// BuyerRepository is the persistence contract for buyers. "Active" means
// deleted_at IS NULL throughout.
type BuyerRepository interface {
	FindByCode(ctx context.Context, code string) (*Buyer, error)

	FindByCodeIncludingDeleted(ctx context.Context, code string) (*Buyer, error)

	// Upsert inserts the buyer or updates the existing active row with the
	// same business key in one atomic statement
	Upsert(ctx context.Context, b *Buyer) error

	// Patch applies a partial field update to the active row for the key
	// and stamps updated_at
	Patch(ctx context.Context, code string, fields map[string]any) error

	MarkDeleted(ctx context.Context, code string, at time.Time) error

	ClearDeleted(ctx context.Context, code string) error

	// ActiveCodesPage returns one page of active business keys; callers
	// loop until a short page is returned
	ActiveCodesPage(ctx context.Context, offset, limit int) ([]string, error)

	ActiveRecordsPage(ctx context.Context, offset, limit int) ([]syncdomain.CompareRecord, error)

	List(ctx context.Context, filter shared.Filter) ([]Buyer, int64, error)
}

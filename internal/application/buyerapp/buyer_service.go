package buyerapp

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/application/status"
	"github.com/estatedesk/backend/internal/domain/buyer"
	"github.com/estatedesk/backend/internal/domain/shared"
	"github.com/estatedesk/backend/internal/infrastructure/cache"
)

// BuyerService serves the operator-facing read side of the buyer mirror.
// The workflow status is evaluated on read and cached in redis; the cache
// is purely an accelerator and a miss or redis outage never fails a request.
type BuyerService struct {
	buyers   buyer.BuyerRepository
	engine   *status.Engine
	statuses *cache.StatusCache
	logger   *zap.Logger
}

// NewBuyerService creates a new BuyerService. The status cache may be nil,
// in which case every read evaluates the rule set.
func NewBuyerService(
	buyers buyer.BuyerRepository,
	engine *status.Engine,
	statuses *cache.StatusCache,
	logger *zap.Logger,
) *BuyerService {
	return &BuyerService{
		buyers:   buyers,
		engine:   engine,
		statuses: statuses,
		logger:   logger,
	}
}

// List returns one page of active buyers with derived statuses
func (s *BuyerService) List(ctx context.Context, filter shared.Filter) ([]BuyerResponse, int64, error) {
	buyers, total, err := s.buyers.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now()
	responses := make([]BuyerResponse, 0, len(buyers))
	for i := range buyers {
		b := &buyers[i]
		responses = append(responses, toBuyerResponse(b, s.statusFor(ctx, b, now)))
	}
	return responses, total, nil
}

// Get returns a single buyer with derived status, or shared.ErrNotFound
func (s *BuyerService) Get(ctx context.Context, code string) (*BuyerResponse, error) {
	b, err := s.buyers.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := toBuyerResponse(b, s.statusFor(ctx, b, time.Now()))
	return &resp, nil
}

// statusFor returns the cached status for a buyer, evaluating and caching
// on a miss. Cache failures degrade to a fresh evaluation.
func (s *BuyerService) statusFor(ctx context.Context, b *buyer.Buyer, now time.Time) status.RuleResult {
	if s.statuses != nil {
		cached, ok, err := s.statuses.Get(ctx, b.Code)
		if err != nil {
			s.logger.Warn("status cache read failed",
				zap.String("code", b.Code),
				zap.Error(err),
			)
		} else if ok {
			return status.RuleResult{
				Label:       cached.Label,
				Priority:    cached.Priority,
				Description: cached.Description,
			}
		}
	}

	result := s.engine.Evaluate(b, now)

	if s.statuses != nil {
		err := s.statuses.Set(ctx, b.Code, cache.StatusResult{
			Label:       result.Label,
			Priority:    result.Priority,
			Description: result.Description,
		})
		if err != nil {
			s.logger.Warn("status cache write failed",
				zap.String("code", b.Code),
				zap.Error(err),
			)
		}
	}
	return result
}

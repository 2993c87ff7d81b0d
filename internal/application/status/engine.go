package status

import (
	"time"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/buyer"
)

// RuleResult is the derived workflow status of one buyer record. A zero
// result (empty label, priority 0) means no rule applied. Never persisted
// as the source of truth, only cached for display.
type RuleResult struct {
	Label       string `json:"label"`
	Priority    int    `json:"priority"`
	Description string `json:"description"`
}

// Engine evaluates the ordered decision table over a buyer record and
// returns the first matching rule. The table is split into two segments
// for readability; evaluation order is identical to one flat list.
type Engine struct {
	segments [][]Rule
	logger   *zap.Logger
}

// NewEngine creates an engine with the production rule set
func NewEngine(logger *zap.Logger) *Engine {
	return NewEngineWithRules([][]Rule{pipelineRules(), prospectRules()}, logger)
}

// NewEngineWithRules creates an engine over custom segments
func NewEngineWithRules(segments [][]Rule, logger *zap.Logger) *Engine {
	return &Engine{segments: segments, logger: logger}
}

// Evaluate returns the first matching rule's result, or the zero result
// when nothing matches. A panicking predicate is converted to the zero
// result and logged; a status bug must never take down the caller.
func (e *Engine) Evaluate(b *buyer.Buyer, now time.Time) (result RuleResult) {
	defer func() {
		if r := recover(); r != nil {
			result = RuleResult{}
			e.logger.Error("status evaluation panicked",
				zap.String("code", b.Code),
				zap.Any("panic", r),
			)
		}
	}()

	for _, segment := range e.segments {
		for _, rule := range segment {
			if rule.Predicate(b, now) {
				return RuleResult{
					Label:       rule.Label,
					Priority:    rule.Priority,
					Description: rule.Description,
				}
			}
		}
	}
	return RuleResult{}
}

// RuleCount returns the total number of rules across all segments
func (e *Engine) RuleCount() int {
	n := 0
	for _, segment := range e.segments {
		n += len(segment)
	}
	return n
}

package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/buyer"
)

var evalNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func newBuyer(t *testing.T) *buyer.Buyer {
	t.Helper()
	b, err := buyer.NewBuyer("42")
	require.NoError(t, err)
	b.Name = "佐藤"
	return b
}

func daysFromNow(n int) *time.Time {
	d := evalNow.AddDate(0, 0, n)
	return &d
}

func TestEngine_FirstMatchWins(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// outcome beats every pipeline date even when those also match
	b := newBuyer(t)
	b.Outcome = buyer.OutcomeLostToRival
	b.SettlementDate = daysFromNow(-10)
	b.ContractDate = daysFromNow(-30)

	result := engine.Evaluate(b, evalNow)
	assert.Equal(t, "他決", result.Label)
	assert.Equal(t, 40, result.Priority)
}

func TestEngine_NoMatchIsZeroResult(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// phone present so 連絡先なし cannot fire, name blank so the final
	// catch-all cannot either
	b := newBuyer(t)
	b.Name = ""
	b.Phone = "090-0000-0000"

	result := engine.Evaluate(b, evalNow)
	assert.Equal(t, RuleResult{}, result)
	assert.Empty(t, result.Label)
	assert.Zero(t, result.Priority)
}

func TestEngine_SurveyConfirmationScenario(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// survey answered but unconfirmed must win over every lower-priority
	// rule that also matches (email, budget, name all set here)
	b := newBuyer(t)
	b.SurveyResult = "回答あり"
	b.Email = "sato@example.com"
	b.DesiredArea = "世田谷区"

	result := engine.Evaluate(b, evalNow)
	assert.Equal(t, "アンケート確認待ち", result.Label)
	assert.Equal(t, 20, result.Priority)

	b.SurveyConfirmed = "確認済"
	result = engine.Evaluate(b, evalNow)
	assert.Equal(t, "アンケート確認済", result.Label)
}

func TestEngine_PipelineProgression(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	tests := []struct {
		name  string
		setup func(b *buyer.Buyer)
		want  string
	}{
		{"settlement passed", func(b *buyer.Buyer) { b.SettlementDate = daysFromNow(-1) }, "取引完了"},
		{"settlement today", func(b *buyer.Buyer) { b.SettlementDate = daysFromNow(0) }, "決済日当日"},
		{"settlement tomorrow", func(b *buyer.Buyer) { b.SettlementDate = daysFromNow(1) }, "決済前日"},
		{"settlement ahead", func(b *buyer.Buyer) { b.SettlementDate = daysFromNow(14) }, "決済待ち"},
		{"contracted awaiting loan", func(b *buyer.Buyer) { b.ContractDate = daysFromNow(-5) }, "ローン審査中"},
		{"contracted loan approved", func(b *buyer.Buyer) {
			b.ContractDate = daysFromNow(-5)
			b.LoanApprovalDate = daysFromNow(-1)
		}, "契約済・決済準備"},
		{"offer without contract", func(b *buyer.Buyer) { b.OfferDate = daysFromNow(-3) }, "買付提出済"},
		{"viewing tomorrow", func(b *buyer.Buyer) { b.ViewingDate = daysFromNow(1) }, "見学前日"},
		{"viewing yesterday", func(b *buyer.Buyer) { b.ViewingDate = daysFromNow(-1) }, "見学翌日フォロー"},
		{"viewing 5 days ago", func(b *buyer.Buyer) { b.ViewingDate = daysFromNow(-5) }, "見学後追客"},
		{"viewing 20 days ago", func(b *buyer.Buyer) { b.ViewingDate = daysFromNow(-20) }, "見学後経過観察"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuyer(t)
			tt.setup(b)
			assert.Equal(t, tt.want, engine.Evaluate(b, evalNow).Label)
		})
	}
}

func TestEngine_ProspectRules(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	tests := []struct {
		name  string
		setup func(b *buyer.Buyer)
		want  string
	}{
		{"inquiry today", func(b *buyer.Buyer) { b.InquiredOn = daysFromNow(0) }, "反響当日"},
		{"inquiry 2 days ago", func(b *buyer.Buyer) { b.InquiredOn = daysFromNow(-2) }, "新規反響"},
		{"inquiry 6 days ago", func(b *buyer.Buyer) { b.InquiredOn = daysFromNow(-6) }, "反響一週間以内"},
		{"follow-up overdue", func(b *buyer.Buyer) { b.FollowUpDate = daysFromNow(-2) }, "フォロー期限超過"},
		{"contacted this week", func(b *buyer.Buyer) { b.LastContactedOn = daysFromNow(-3) }, "追客中"},
		{"contacted last month", func(b *buyer.Buyer) { b.LastContactedOn = daysFromNow(-20) }, "追客継続"},
		{"dormant", func(b *buyer.Buyer) { b.LastContactedOn = daysFromNow(-120) }, "休眠"},
		{"opted out", func(b *buyer.Buyer) { b.MailOptOut = true }, "配信停止"},
		{"no contact details falls through to name", func(b *buyer.Buyer) {}, "連絡先なし"},
		{"mail reachable", func(b *buyer.Buyer) { b.Email = "a@example.com" }, "メール配信中"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuyer(t)
			tt.setup(b)
			assert.Equal(t, tt.want, engine.Evaluate(b, evalNow).Label)
		})
	}
}

func TestEngine_WithinDaysAgoBoundaries(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// viewing window [2,7] days ago is inclusive on both ends
	for _, days := range []int{-2, -7} {
		b := newBuyer(t)
		b.ViewingDate = daysFromNow(days)
		assert.Equal(t, "見学後追客", engine.Evaluate(b, evalNow).Label, "days=%d", days)
	}

	b := newBuyer(t)
	b.ViewingDate = daysFromNow(-8)
	assert.Equal(t, "見学後経過観察", engine.Evaluate(b, evalNow).Label)
}

func TestEngine_FieldDatesReadAsUTCDaysInLocalZone(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	jst := time.FixedZone("JST", 9*60*60)
	nowJST := time.Date(2026, 8, 30, 10, 0, 0, 0, jst)

	// stored dates are UTC midnights; rendered in JST they are 09:00 the
	// same day, so naive truncation reads yesterday's settlement as today
	utcDay := func(day int) *time.Time {
		d := time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	b := newBuyer(t)
	b.SettlementDate = utcDay(29)
	result := engine.Evaluate(b, nowJST)
	assert.Equal(t, "取引完了", result.Label, "yesterday's settlement is past")

	b.SettlementDate = utcDay(30)
	result = engine.Evaluate(b, nowJST)
	assert.Equal(t, "決済日当日", result.Label, "today's settlement is today")

	b.SettlementDate = utcDay(31)
	result = engine.Evaluate(b, nowJST)
	assert.Equal(t, "決済前日", result.Label, "tomorrow's settlement is tomorrow")
}

func TestEngine_MissingDatesNeverMatch(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	b := newBuyer(t)
	b.Phone = "090-0000-0000"
	// only catch-alls can fire without dates: phone set, so contact rule
	// is skipped and the fiscal-year rule has no inquiry date
	result := engine.Evaluate(b, evalNow)
	assert.Equal(t, "未分類・要対応", result.Label)
	assert.Equal(t, 1, result.Priority)
}

func TestEngine_PanicBecomesZeroResult(t *testing.T) {
	exploding := []Rule{{
		Predicate: func(b *buyer.Buyer, now time.Time) bool {
			panic("unexpected field shape")
		},
		Label:    "should never surface",
		Priority: 99,
	}}
	engine := NewEngineWithRules([][]Rule{exploding}, zap.NewNop())

	result := engine.Evaluate(newBuyer(t), evalNow)
	assert.Equal(t, RuleResult{}, result)
}

func TestEngine_SegmentFallthroughPreservesOrdering(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// matches nothing in the pipeline segment, then the highest-priority
	// prospect rule that applies
	b := newBuyer(t)
	b.SurveyResult = "回答あり"
	b.InquiredOn = daysFromNow(0)

	result := engine.Evaluate(b, evalNow)
	assert.Equal(t, "アンケート確認待ち", result.Label, "survey rule precedes inquiry recency")
}

func TestEngine_RuleCount(t *testing.T) {
	assert.Equal(t, 40, NewEngine(zap.NewNop()).RuleCount())
}

package status

import (
	"time"

	"github.com/estatedesk/backend/internal/domain/buyer"
)

// Rule is one (predicate, label, priority) triple in the decision table
type Rule struct {
	Predicate   Predicate
	Label       string
	Priority    int
	Description string
}

// Field selectors, named once so the rule table below stays readable.
var (
	settlement  = func(b *buyer.Buyer) *time.Time { return b.SettlementDate }
	contract    = func(b *buyer.Buyer) *time.Time { return b.ContractDate }
	loan        = func(b *buyer.Buyer) *time.Time { return b.LoanApprovalDate }
	offer       = func(b *buyer.Buyer) *time.Time { return b.OfferDate }
	viewing     = func(b *buyer.Buyer) *time.Time { return b.ViewingDate }
	inquiry     = func(b *buyer.Buyer) *time.Time { return b.InquiredOn }
	followUp    = func(b *buyer.Buyer) *time.Time { return b.FollowUpDate }
	lastContact = func(b *buyer.Buyer) *time.Time { return b.LastContactedOn }

	outcome         = func(b *buyer.Buyer) string { return string(b.Outcome) }
	surveyResult    = func(b *buyer.Buyer) string { return b.SurveyResult }
	surveyConfirmed = func(b *buyer.Buyer) string { return b.SurveyConfirmed }
	email           = func(b *buyer.Buyer) string { return b.Email }
	desiredArea     = func(b *buyer.Buyer) string { return b.DesiredArea }
	name            = func(b *buyer.Buyer) string { return b.Name }
)

// fiscalYearStart returns April 1st of the fiscal year containing now
func fiscalYearStart(now time.Time) time.Time {
	year := now.Year()
	if now.Month() < time.April {
		year--
	}
	return time.Date(year, time.April, 1, 0, 0, 0, 0, now.Location())
}

// pipelineRules is the first segment: terminal outcomes and the
// transaction pipeline from settlement back to viewing. Order is the
// contract; two rules can both match and the earlier one wins.
func pipelineRules() []Rule {
	return []Rule{
		{equals(outcome, string(buyer.OutcomeLostToRival)), "他決", 40, "outcome recorded as lost to another broker"},
		{equals(outcome, string(buyer.OutcomeDropped)), "追客終了", 39, "outcome recorded as follow-up ended"},

		{isPast(settlement), "取引完了", 38, "settlement date has passed"},
		{isToday(settlement), "決済日当日", 37, "settlement is today"},
		{isTomorrow(settlement), "決済前日", 36, "settlement is tomorrow"},
		{isFuture(settlement), "決済待ち", 35, "settlement scheduled ahead"},

		{and(isPast(contract), isUnset(loan)), "ローン審査中", 34, "contracted, loan approval still pending"},
		{and(isPast(contract), isSet(loan)), "契約済・決済準備", 33, "contracted and loan approved"},
		{isToday(contract), "契約日当日", 32, "contract signing is today"},
		{isTomorrow(contract), "契約前日", 31, "contract signing is tomorrow"},
		{isFuture(contract), "契約予定", 30, "contract signing scheduled ahead"},

		{and(isPast(offer), isUnset(contract)), "買付提出済", 29, "offer submitted, no contract yet"},
		{isToday(offer), "買付日当日", 28, "offer submission is today"},
		{isFuture(offer), "買付予定", 27, "offer submission scheduled ahead"},

		{isToday(viewing), "見学日当日", 26, "viewing is today"},
		{isTomorrow(viewing), "見学前日", 25, "viewing is tomorrow"},
		{isFuture(viewing), "見学予定", 24, "viewing scheduled ahead"},
		{isDaysFromToday(viewing, -1), "見学翌日フォロー", 23, "viewing was yesterday"},
		{isWithinDaysAgo(viewing, 7, 2), "見学後追客", 22, "viewing 2 to 7 days ago"},
		{isWithinDaysAgo(viewing, 30, 8), "見学後経過観察", 21, "viewing 8 to 30 days ago"},
	}
}

// prospectRules is the second segment: survey handling, inquiry recency,
// follow-up scheduling, and the catch-alls. Evaluated only when no
// pipeline rule matched.
func prospectRules() []Rule {
	return []Rule{
		{and(isNotBlank(surveyResult), isBlank(surveyConfirmed)), "アンケート確認待ち", 20, "survey answered but not yet confirmed"},
		{and(isNotBlank(surveyResult), isNotBlank(surveyConfirmed)), "アンケート確認済", 19, "survey answered and confirmed"},

		{isToday(inquiry), "反響当日", 18, "inquiry arrived today"},
		{isWithinDaysAgo(inquiry, 3, 1), "新規反響", 17, "inquiry 1 to 3 days ago"},
		{isWithinDaysAgo(inquiry, 7, 4), "反響一週間以内", 16, "inquiry 4 to 7 days ago"},

		{isToday(followUp), "本日フォロー予定", 15, "follow-up scheduled today"},
		{isTomorrow(followUp), "明日フォロー予定", 14, "follow-up scheduled tomorrow"},
		{isPast(followUp), "フォロー期限超過", 13, "follow-up date has slipped"},
		{isFuture(followUp), "フォロー予定あり", 12, "follow-up scheduled ahead"},

		{isWithinDaysAgo(lastContact, 7, 0), "追客中", 11, "contacted within the last week"},
		{isWithinDaysAgo(lastContact, 30, 8), "追客継続", 10, "contacted 8 to 30 days ago"},
		{isWithinDaysAgo(lastContact, 90, 31), "長期追客", 9, "contacted 31 to 90 days ago"},
		{isSet(lastContact), "休眠", 8, "no contact for over 90 days"},

		{func(b *buyer.Buyer, now time.Time) bool { return b.MailOptOut }, "配信停止", 7, "opted out of mail"},
		{func(b *buyer.Buyer, now time.Time) bool { return !b.HasContact() }, "連絡先なし", 6, "no reachable contact details"},
		{isNotBlank(email), "メール配信中", 5, "reachable by mail campaigns"},
		{func(b *buyer.Buyer, now time.Time) bool { return b.Budget != nil }, "予算把握済", 4, "budget is known"},
		{isNotBlank(desiredArea), "希望エリアあり", 3, "desired area is known"},
		{isAfterOrEqual(inquiry, fiscalYearStart), "今期反響", 2, "inquiry within the current fiscal year"},
		{isNotBlank(name), "未分類・要対応", 1, "record exists but no rule applies"},
	}
}

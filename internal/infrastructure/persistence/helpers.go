package persistence

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatedesk/backend/internal/domain/shared"
)

const compareDateLayout = "2006-01-02"

// formatDate renders the stored UTC-midnight date. Formatting in the
// session's zone would shift the day west of UTC and flag every dated row
// as changed on every pass.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(time.UTC).Format(compareDateLayout)
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// orderClause builds a safe ORDER BY from the filter, falling back to the
// given column. Only known directions are honored.
func orderClause(filter shared.Filter, fallback string) string {
	column := filter.OrderBy
	if column == "" {
		column = fallback
	}
	direction := "ASC"
	if filter.OrderDir == "desc" || filter.OrderDir == "DESC" {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

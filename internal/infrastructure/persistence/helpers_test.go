package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/estatedesk/backend/internal/domain/shared"
)

func TestFormatDate(t *testing.T) {
	utc := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-29", formatDate(&utc))
	assert.Equal(t, "", formatDate(nil))

	// the same instant scanned back in a session zone west of UTC renders
	// as the 28th locally; the compare string must stay on the UTC day
	west := utc.In(time.FixedZone("EST", -5*60*60))
	assert.Equal(t, "2026-08-29", formatDate(&west))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "code ASC", orderClause(shared.Filter{}, "code"))
	assert.Equal(t, "name DESC", orderClause(shared.Filter{OrderBy: "name", OrderDir: "desc"}, "code"))
	assert.Equal(t, "name ASC", orderClause(shared.Filter{OrderBy: "name", OrderDir: "sideways"}, "code"))
}

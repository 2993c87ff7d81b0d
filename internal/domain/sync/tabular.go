package sync

import "context"

// Row is one data row of the external sheet, keyed by column header.
// Cell values are the sheet's formatted strings; numeric cells (including
// day-count dates) arrive as numeric strings and are coerced downstream.
type Row map[string]string

// Get returns the trimmed-as-stored value for a column, "" when absent
func (r Row) Get(column string) string {
	return r[column]
}

// IsEmpty returns true if the row has no non-empty values
func (r Row) IsEmpty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// TabularSource is the read/append contract over the external spreadsheet.
// Addressing is 1-indexed and the header occupies row 1, so the first data
// row is row 2.
type TabularSource interface {
	// Authenticate verifies credentials against the external service.
	// A failure here aborts the whole pass.
	Authenticate(ctx context.Context) error

	// Headers returns the header row
	Headers(ctx context.Context) ([]string, error)

	// ReadAll returns every data row keyed by header
	ReadAll(ctx context.Context) ([]Row, error)

	// AppendRow appends a row after the last data row
	AppendRow(ctx context.Context, row Row) error

	// UpdateRow overwrites the row at the given 1-indexed position
	UpdateRow(ctx context.Context, rowIndex int, row Row) error

	// DeleteRow removes the row at the given 1-indexed position
	DeleteRow(ctx context.Context, rowIndex int) error

	// FindRowByColumn returns the 1-indexed row whose column equals value,
	// or (0, false) when no row matches
	FindRowByColumn(ctx context.Context, column, value string) (int, bool, error)
}

// CompareRecord is the minimal internal-side view of an active record used
// for change detection: its business key plus the already-normalized values
// of the compared fields.
type CompareRecord struct {
	Key    string
	Fields map[string]string
}

// RecordSource pages through active internal records. Implementations must
// exclude soft-deleted rows so an already-deleted record is never re-flagged
// as vanished.
type RecordSource interface {
	ActiveRecordsPage(ctx context.Context, offset, limit int) ([]CompareRecord, error)
}

package syncapp

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Cell coercion primitives shared by the seller and buyer mappers. All of
// them are pure and treat unparseable input as absent rather than failing;
// the only cell whose shape can fail a row is the business key, and that is
// enforced by the mappers themselves.

// sheetEpoch is the day-count origin used by common spreadsheet tools.
var sheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serial day-counts are only trusted inside this window (circa 1982-2064).
// Anything outside is some other number that happens to sit in a date
// column, not a date.
const (
	serialMin = 30000
	serialMax = 60000
)

const dateLayout = "2006-01-02"

// serialToDate converts a day-count to the date it encodes
func serialToDate(n int) time.Time {
	return sheetEpoch.AddDate(0, 0, n)
}

// dateToSerial converts a date to its day-count form
func dateToSerial(t time.Time) int {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(sheetEpoch).Hours() / 24)
}

// parseDateCell interprets a raw cell as a date. Accepted shapes are ISO
// strings, slash-delimited strings, and numeric day-counts within the
// accepted serial window. Blank or unrecognized input yields nil.
func parseDateCell(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range []string{dateLayout, "2006/01/02", "2006/1/2"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}

	if n, err := strconv.ParseFloat(value, 64); err == nil {
		serial := int(n)
		if serial >= serialMin && serial <= serialMax {
			t := serialToDate(serial)
			return &t
		}
	}
	return nil
}

// parseCompositeDate combines a year cell and a month/day cell ("3/15")
// into one date. Only the year present defaults to January 1st of that
// year; neither present means the field is absent.
func parseCompositeDate(yearCell, monthDayCell string) *time.Time {
	yearCell = strings.TrimSpace(yearCell)
	if yearCell == "" {
		return nil
	}
	year, err := strconv.Atoi(yearCell)
	if err != nil || year < 1900 || year > 2200 {
		return nil
	}

	monthDayCell = strings.TrimSpace(monthDayCell)
	if monthDayCell == "" {
		t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	parts := strings.Split(monthDayCell, "/")
	if len(parts) != 2 {
		return nil
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return nil
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// parseNumberCell interprets a raw cell as a decimal amount, stripping
// thousands separators first. Blank or non-numeric input yields nil, never
// zero.
func parseNumberCell(value string) *decimal.Decimal {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, ",", "")
	value = strings.ReplaceAll(value, "，", "")
	if value == "" {
		return nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}

// parseBoolCell interprets the checkbox-ish values field staff actually
// type. Anything unrecognized is false.
func parseBoolCell(value string) bool {
	switch strings.TrimSpace(strings.ToUpper(value)) {
	case "TRUE", "1", "○", "はい", "YES":
		return true
	}
	return false
}

// recode expands a category abbreviation via the lookup table; codes not in
// the table pass through unchanged
func recode(table map[string]string, value string) string {
	value = strings.TrimSpace(value)
	if expanded, ok := table[value]; ok {
		return expanded
	}
	return value
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDecimalPtr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

package syncapp

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/domain/listing"
	"github.com/estatedesk/backend/internal/infrastructure/cache"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// RowNormalizer projects a raw external row onto normalized compare fields
type RowNormalizer interface {
	Key(row syncdomain.Row) string
	NormalizeRow(row syncdomain.Row) map[string]string
}

// DiffResult is one detection pass over a record kind. The external
// snapshot is carried along keyed by business key so the executor mutates
// from exactly the rows detection saw.
type DiffResult struct {
	Missing  []string
	Changed  []string
	Vanished []string
	External map[string]syncdomain.Row
}

// DiffDetector computes the three drift classes between the external
// snapshot and the active internal records for one record kind.
type DiffDetector struct {
	kind          syncdomain.RecordKind
	snapshots     *cache.SnapshotCache
	cacheKey      string
	normalizer    RowNormalizer
	records       syncdomain.RecordSource
	compareFields []string
	pageSize      int
	logger        *zap.Logger
}

// NewDiffDetector creates a detector for one record kind
func NewDiffDetector(
	kind syncdomain.RecordKind,
	snapshots *cache.SnapshotCache,
	cacheKey string,
	normalizer RowNormalizer,
	records syncdomain.RecordSource,
	compareFields []string,
	pageSize int,
	logger *zap.Logger,
) *DiffDetector {
	return &DiffDetector{
		kind:          kind,
		snapshots:     snapshots,
		cacheKey:      cacheKey,
		normalizer:    normalizer,
		records:       records,
		compareFields: compareFields,
		pageSize:      pageSize,
		logger:        logger,
	}
}

// Detect runs one detection pass: one snapshot read, one paginated internal
// scan, all three drift classes from the same pair of views. Results are
// ordered by the key's embedded numeric component so logs stay stable
// across runs.
func (d *DiffDetector) Detect(ctx context.Context) (*DiffResult, error) {
	external, externalRows, err := d.externalView(ctx)
	if err != nil {
		return nil, err
	}
	internal, err := d.internalView(ctx)
	if err != nil {
		return nil, err
	}

	result := &DiffResult{External: externalRows}

	for key := range external {
		if _, ok := internal[key]; !ok {
			result.Missing = append(result.Missing, key)
		}
	}
	for key := range internal {
		if _, ok := external[key]; !ok {
			result.Vanished = append(result.Vanished, key)
		}
	}
	for key, externalFields := range external {
		internalFields, ok := internal[key]
		if !ok {
			continue
		}
		if d.fieldsDiffer(externalFields, internalFields) {
			result.Changed = append(result.Changed, key)
		}
	}

	sortByKeyNumber(result.Missing)
	sortByKeyNumber(result.Changed)
	sortByKeyNumber(result.Vanished)

	d.logger.Info("drift detected",
		zap.String("kind", string(d.kind)),
		zap.Int("external", len(external)),
		zap.Int("internal", len(internal)),
		zap.Int("missing", len(result.Missing)),
		zap.Int("changed", len(result.Changed)),
		zap.Int("vanished", len(result.Vanished)),
	)
	return result, nil
}

// externalView loads the cached snapshot and normalizes it by business key.
// Rows with a blank key are skipped and logged; they cannot participate in
// key matching.
func (d *DiffDetector) externalView(ctx context.Context) (map[string]map[string]string, map[string]syncdomain.Row, error) {
	rows, err := d.snapshots.Get(ctx, d.cacheKey)
	if err != nil {
		return nil, nil, err
	}

	normalized := make(map[string]map[string]string, len(rows))
	byKey := make(map[string]syncdomain.Row, len(rows))
	for i, row := range rows {
		if row.IsEmpty() {
			continue
		}
		key := d.normalizer.Key(row)
		if key == "" {
			d.logger.Warn("skipping external row with blank business key",
				zap.String("kind", string(d.kind)),
				zap.Int("row", i+2),
			)
			continue
		}
		normalized[key] = d.normalizer.NormalizeRow(row)
		byKey[key] = row
	}
	return normalized, byKey, nil
}

// internalView pages through active internal records until a short page
// signals the end of the table
func (d *DiffDetector) internalView(ctx context.Context) (map[string]map[string]string, error) {
	view := make(map[string]map[string]string)
	for offset := 0; ; offset += d.pageSize {
		page, err := d.records.ActiveRecordsPage(ctx, offset, d.pageSize)
		if err != nil {
			return nil, err
		}
		for _, record := range page {
			view[record.Key] = record.Fields
		}
		if len(page) < d.pageSize {
			return view, nil
		}
	}
}

// fieldsDiffer compares the configured field list with strict inequality.
// A value going blank on the external side is a difference like any other.
func (d *DiffDetector) fieldsDiffer(external, internal map[string]string) bool {
	for _, field := range d.compareFields {
		if strings.TrimSpace(external[field]) != strings.TrimSpace(internal[field]) {
			return true
		}
	}
	return false
}

func sortByKeyNumber(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := listing.KeyNumber(keys[i]), listing.KeyNumber(keys[j])
		if a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
}

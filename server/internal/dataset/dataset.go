package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/config"
)

// Table is an immutable, in-memory set of launch records together with the
// summary values derived from it at load time.
type Table struct {
	records    []types.Record
	sites      []string
	minPayload float64
	maxPayload float64
	source     string
	loadedAt   time.Time
}

// Load reads the CSV file at path using cols to locate the record fields.
func Load(path string, cols config.ColumnsConfig) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("dataset: %q: %w", path, err)
	}
	t.source = path
	return t, nil
}

// Read parses CSV launch records from r. The first row must be the header.
func Read(r io.Reader, cols config.ColumnsConfig) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolveColumns(header, cols)
	if err != nil {
		return nil, err
	}

	var recs []types.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, idx, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("no launch records")
	}

	return FromRecords(recs), nil
}

// FromRecords builds a Table from recs. The slice is copied; an empty slice
// yields an empty Table with zero payload bounds.
func FromRecords(recs []types.Record) *Table {
	t := &Table{
		records:  append([]types.Record(nil), recs...),
		loadedAt: time.Now().UTC(),
	}
	seen := make(map[string]struct{})
	t.minPayload, t.maxPayload = math.Inf(1), math.Inf(-1)
	for _, r := range t.records {
		if _, ok := seen[r.LaunchSite]; !ok {
			seen[r.LaunchSite] = struct{}{}
			t.sites = append(t.sites, r.LaunchSite)
		}
		t.minPayload = math.Min(t.minPayload, r.PayloadMassKg)
		t.maxPayload = math.Max(t.maxPayload, r.PayloadMassKg)
	}
	if len(t.records) == 0 {
		t.minPayload, t.maxPayload = 0, 0
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Each calls fn for every record in file order.
func (t *Table) Each(fn func(types.Record)) {
	for _, r := range t.records {
		fn(r)
	}
}

// Records returns a copy of all records.
func (t *Table) Records() []types.Record {
	return append([]types.Record(nil), t.records...)
}

// Sites returns the distinct launch sites in the order they first appear.
func (t *Table) Sites() []string {
	return append([]string(nil), t.sites...)
}

// PayloadBounds returns the smallest and largest payload mass in the table.
func (t *Table) PayloadBounds() (min, max float64) {
	return t.minPayload, t.maxPayload
}

// Source is the path the table was loaded from, empty for in-memory tables.
func (t *Table) Source() string { return t.source }

// LoadedAt is when the table was built.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// --- internal ---------------------------------------------------------------

type columnIndex struct {
	site, payload, outcome, booster int
}

func resolveColumns(header []string, cols config.ColumnsConfig) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(name string) (int, error) {
		i, ok := pos[name]
		if !ok {
			return 0, fmt.Errorf("missing required column %q", name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.site, err = lookup(cols.LaunchSite); err != nil {
		return idx, err
	}
	if idx.payload, err = lookup(cols.PayloadMass); err != nil {
		return idx, err
	}
	if idx.outcome, err = lookup(cols.Outcome); err != nil {
		return idx, err
	}
	if idx.booster, err = lookup(cols.BoosterCategory); err != nil {
		return idx, err
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex, cols config.ColumnsConfig) (types.Record, error) {
	cell := func(i int, name string) (string, error) {
		if i >= len(row) {
			return "", fmt.Errorf("column %q: missing cell", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	var rec types.Record
	site, err := cell(idx.site, cols.LaunchSite)
	if err != nil {
		return rec, err
	}
	if site == "" {
		return rec, fmt.Errorf("column %q: empty launch site", cols.LaunchSite)
	}

	payloadRaw, err := cell(idx.payload, cols.PayloadMass)
	if err != nil {
		return rec, err
	}
	payload, err := strconv.ParseFloat(payloadRaw, 64)
	if err != nil {
		return rec, fmt.Errorf("column %q: %w", cols.PayloadMass, err)
	}
	if payload < 0 || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return rec, fmt.Errorf("column %q: payload %v must be a non-negative number", cols.PayloadMass, payload)
	}

	classRaw, err := cell(idx.outcome, cols.Outcome)
	if err != nil {
		return rec, err
	}
	class, err := strconv.ParseFloat(classRaw, 64)
	if err != nil {
		return rec, fmt.Errorf("column %q: %w", cols.Outcome, err)
	}
	outcome, err := types.ParseOutcome(class)
	if err != nil {
		return rec, fmt.Errorf("column %q: %w", cols.Outcome, err)
	}

	booster, err := cell(idx.booster, cols.BoosterCategory)
	if err != nil {
		return rec, err
	}

	return types.Record{
		LaunchSite:      site,
		PayloadMassKg:   payload,
		Outcome:         outcome,
		BoosterCategory: booster,
	}, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Package mapping resolves resources to the settlement points they are
// priced at, plus nameplate capacity and duration when known. The static
// table comes from the fleet master list; a dynamic override table, when
// present, takes precedence for settlement-point resolution.
package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Resource is one storage asset in the fleet master list.
type Resource struct {
	Name            string
	SettlementPoint string
	CapacityMW      float64
	DurationHours   float64 // 0 when unknown
}

type Table struct {
	static    map[string]Resource
	overrides map[string]string // resource -> settlement point
}

func NewTable() *Table {
	return &Table{
		static:    make(map[string]Resource),
		overrides: make(map[string]string),
	}
}

// Load reads the fleet master list CSV. Expected header:
// Resource_Name,Settlement_Point,Max_Capacity_MW[,Duration_Hours].
// An unreadable table is a structural failure and aborts the run.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resource mapping %s: %w", path, err)
	}
	defer f.Close()

	t := NewTable()
	if err := t.readStatic(f); err != nil {
		return nil, fmt.Errorf("parse resource mapping %s: %w", path, err)
	}
	if len(t.static) == 0 {
		return nil, fmt.Errorf("resource mapping %s: no usable rows", path)
	}
	return t, nil
}

func (t *Table) readStatic(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)
	nameIdx, ok1 := col["resource_name"]
	spIdx, ok2 := col["settlement_point"]
	capIdx, ok3 := col["max_capacity_mw"]
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("missing required columns, got %v", header)
	}
	durIdx, hasDur := col["duration_hours"]

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if nameIdx >= len(row) || spIdx >= len(row) || capIdx >= len(row) {
			continue
		}
		capacity, err := strconv.ParseFloat(strings.TrimSpace(row[capIdx]), 64)
		if err != nil {
			continue
		}
		res := Resource{
			Name:            strings.TrimSpace(row[nameIdx]),
			SettlementPoint: strings.TrimSpace(row[spIdx]),
			CapacityMW:      capacity,
		}
		if hasDur && durIdx < len(row) {
			if d, err := strconv.ParseFloat(strings.TrimSpace(row[durIdx]), 64); err == nil {
				res.DurationHours = d
			}
		}
		if res.Name == "" || res.SettlementPoint == "" {
			continue
		}
		t.static[res.Name] = res
	}
	return nil
}

// LoadOverrides reads the dynamic settlement-point override CSV
// (Resource_Name,Settlement_Point). Overrides win over the static table.
func (t *Table) LoadOverrides(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open settlement overrides %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("parse settlement overrides %s: %w", path, err)
	}
	col := columnIndex(header)
	nameIdx, ok1 := col["resource_name"]
	spIdx, ok2 := col["settlement_point"]
	if !ok1 || !ok2 {
		return fmt.Errorf("settlement overrides %s: missing required columns", path)
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if nameIdx >= len(row) || spIdx >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameIdx])
		sp := strings.TrimSpace(row[spIdx])
		if name != "" && sp != "" {
			t.overrides[name] = sp
		}
	}
	return nil
}

// Add inserts or replaces a static entry.
func (t *Table) Add(r Resource) { t.static[r.Name] = r }

// Override sets a dynamic settlement-point override for a resource.
func (t *Table) Override(name, settlementPoint string) {
	t.overrides[name] = settlementPoint
}

// Get returns the static entry for a resource.
func (t *Table) Get(name string) (Resource, bool) {
	r, ok := t.static[name]
	return r, ok
}

// SettlementPoint resolves where a resource's energy is priced, preferring
// the dynamic override table.
func (t *Table) SettlementPoint(name string) (string, bool) {
	if sp, ok := t.overrides[name]; ok {
		return sp, true
	}
	if r, ok := t.static[name]; ok {
		return r.SettlementPoint, true
	}
	return "", false
}

// Resources returns all static entries sorted by name.
func (t *Table) Resources() []Resource {
	out := make([]Resource, 0, len(t.static))
	for _, r := range t.static {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the static table size.
func (t *Table) Len() int { return len(t.static) }

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return col
}

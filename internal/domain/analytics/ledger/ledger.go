// Package ledger builds the canonical, date-ordered transaction ledger from raw
// spreadsheet rows and a confirmed column mapping.
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/normalizer"
)

// UnnamedProduct is assigned when the product cell is empty
const UnnamedProduct = "Sin nombre"

// RawRow is one input record keyed by column header
type RawRow map[string]string

func (r RawRow) cell(field string) string {
	if field == "" {
		return ""
	}
	return r[field]
}

// Record is a single cleaned ledger entry
type Record struct {
	Date      time.Time `json:"date"`
	Product   string    `json:"product"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	Total     float64   `json:"total"`
	Client    string    `json:"client,omitempty"`
}

// Diagnostic explains why an input row was left out of the ledger
type Diagnostic struct {
	Row    int    `json:"row"` // 0-based index into the input rows
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

const reasonUnparsableDate = "unparsable date"

// Build converts rows into ledger records ordered by date. Rows whose date
// cannot be parsed are dropped.
func Build(rows []RawRow, m detector.Mapping) []Record {
	records, _ := BuildWithDiagnostics(rows, m)
	return records
}

// BuildWithDiagnostics is Build that also reports every dropped row
func BuildWithDiagnostics(rows []RawRow, m detector.Mapping) ([]Record, []Diagnostic) {
	records := make([]Record, 0, len(rows))
	var dropped []Diagnostic

	for i, raw := range rows {
		value := raw.cell(m.DateField)
		date, ok := normalizer.ParseDate(value)
		if !ok {
			dropped = append(dropped, Diagnostic{
				Row:    i,
				Field:  m.DateField,
				Value:  value,
				Reason: reasonUnparsableDate,
			})
			continue
		}
		records = append(records, buildRecord(raw, m, date))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	return records, dropped
}

func buildRecord(raw RawRow, m detector.Mapping, date time.Time) Record {
	quantity := normalizer.ParseAmount(raw.cell(m.QuantityField))

	unitPrice := normalizer.ParseAmount(raw.cell(m.PriceField))
	total := normalizer.ParseAmount(raw.cell(m.TotalField))
	if total == 0 && unitPrice != 0 && quantity != 0 {
		total = unitPrice * quantity
		// the product of two finite amounts can still overflow
		if math.IsInf(total, 0) || math.IsNaN(total) {
			total = 0
		}
	}

	product := raw.cell(m.ProductField)
	if product == "" {
		product = UnnamedProduct
	}

	return Record{
		Date:      date,
		Product:   product,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     total,
		Client:    raw.cell(m.ClientField),
	}
}

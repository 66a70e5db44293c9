package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
)

var spanishMapping = detector.Mapping{
	DateField:     "Fecha",
	ProductField:  "Producto",
	QuantityField: "Cantidad",
	PriceField:    "Precio",
	TotalField:    "Total",
	ClientField:   "Cliente",
}

func TestBuild_SingleRowWithPrice(t *testing.T) {
	rows := []RawRow{{"Fecha": "01/02/2024", "Producto": "Widget", "Cantidad": "2", "Precio": "10,50"}}
	m := detector.Mapping{DateField: "Fecha", ProductField: "Producto", QuantityField: "Cantidad", PriceField: "Precio"}

	records := Build(rows, m)

	require.Len(t, records, 1)
	r := records[0]
	assert.True(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).Equal(r.Date))
	assert.Equal(t, "Widget", r.Product)
	assert.Equal(t, 2.0, r.Quantity)
	assert.Equal(t, 10.5, r.UnitPrice)
	assert.Equal(t, 21.0, r.Total)
	assert.Empty(t, r.Client)
}

func TestBuild_Totals(t *testing.T) {
	tests := []struct {
		name string
		row  RawRow
		want float64
	}{
		{"mapped total wins", RawRow{"Fecha": "2024-01-01", "Cantidad": "2", "Precio": "5", "Total": "12"}, 12},
		{"zero total is synthesized", RawRow{"Fecha": "2024-01-01", "Cantidad": "2", "Precio": "5", "Total": "0"}, 10},
		{"unparsable total is synthesized", RawRow{"Fecha": "2024-01-01", "Cantidad": "3", "Precio": "2", "Total": "n/a"}, 6},
		{"no price keeps zero", RawRow{"Fecha": "2024-01-01", "Cantidad": "2", "Total": ""}, 0},
		{"negative total accepted", RawRow{"Fecha": "2024-01-01", "Cantidad": "1", "Total": "-30"}, -30},
		{"overflowing product is zero", RawRow{"Fecha": "2024-01-01", "Cantidad": "10", "Precio": "1" + strings.Repeat("0", 308)}, 0},
		{"negative overflowing product is zero", RawRow{"Fecha": "2024-01-01", "Cantidad": "-10", "Precio": "1" + strings.Repeat("0", 308)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Build([]RawRow{tt.row}, spanishMapping)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].Total)
		})
	}
}

func TestBuild_UnmappedOptionalFields(t *testing.T) {
	rows := []RawRow{{"Fecha": "2024-01-01", "Producto": "", "Cantidad": "4", "Total": "8", "Precio": "99", "Cliente": "ACME"}}
	m := detector.Mapping{DateField: "Fecha", ProductField: "Producto", QuantityField: "Cantidad", TotalField: "Total"}

	records := Build(rows, m)

	require.Len(t, records, 1)
	assert.Equal(t, UnnamedProduct, records[0].Product)
	assert.Zero(t, records[0].UnitPrice, "price is ignored when unmapped")
	assert.Empty(t, records[0].Client, "client is ignored when unmapped")
}

func TestBuildWithDiagnostics_DropsBadDates(t *testing.T) {
	rows := []RawRow{
		{"Fecha": "not-a-date", "Producto": "A", "Cantidad": "1", "Total": "10"},
		{"Fecha": "2024-01-02", "Producto": "B", "Cantidad": "1", "Total": "20"},
		{"Fecha": "", "Producto": "C", "Cantidad": "1", "Total": "30"},
	}

	records, dropped := BuildWithDiagnostics(rows, spanishMapping)

	require.Len(t, records, 1)
	assert.Equal(t, "B", records[0].Product)
	require.Len(t, dropped, 2)
	assert.Equal(t, Diagnostic{Row: 0, Field: "Fecha", Value: "not-a-date", Reason: reasonUnparsableDate}, dropped[0])
	assert.Equal(t, 2, dropped[1].Row)

	assert.Equal(t, records, Build(rows, spanishMapping), "diagnostics must not change the ledger")
}

func TestBuild_StableDateOrder(t *testing.T) {
	rows := []RawRow{
		{"Fecha": "2024-03-01", "Producto": "late", "Cantidad": "1", "Total": "1"},
		{"Fecha": "2024-01-01", "Producto": "first", "Cantidad": "1", "Total": "1"},
		{"Fecha": "2024-02-01", "Producto": "tie-a", "Cantidad": "1", "Total": "1"},
		{"Fecha": "01/02/2024", "Producto": "tie-b", "Cantidad": "1", "Total": "1"},
	}

	records := Build(rows, spanishMapping)

	var products []string
	for _, r := range records {
		products = append(products, r.Product)
	}
	assert.Equal(t, []string{"first", "tie-a", "tie-b", "late"}, products)
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Date.Before(records[i-1].Date))
	}
}

func TestBuild_Empty(t *testing.T) {
	records, dropped := BuildWithDiagnostics(nil, spanishMapping)
	assert.Empty(t, records)
	assert.Empty(t, dropped)
}

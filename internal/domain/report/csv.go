// Package report renders a processed upload for people and other tools: the
// cleaned ledger as CSV or a multi-sheet workbook, and a plain-text summary.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
	"github.com/FACorreiaa/invoice-insights/pkg/money"
)

const dateLayout = "2006-01-02"

// LedgerRow is one exported ledger line. The column names are recognised by
// the default detector vocabulary, so an export can be uploaded again.
type LedgerRow struct {
	Date      string `csv:"Fecha"`
	Product   string `csv:"Producto"`
	Quantity  string `csv:"Cantidad"`
	UnitPrice string `csv:"Precio Unitario"`
	Total     string `csv:"Total"`
	Client    string `csv:"Cliente"`
}

// LedgerRows formats records in their stored order
func LedgerRows(records []ledger.Record) []*LedgerRow {
	rows := make([]*LedgerRow, len(records))
	for i, r := range records {
		rows[i] = &LedgerRow{
			Date:      r.Date.Format(dateLayout),
			Product:   r.Product,
			Quantity:  strconv.FormatFloat(r.Quantity, 'f', -1, 64),
			UnitPrice: money.Fixed2(r.UnitPrice),
			Total:     money.Fixed2(r.Total),
			Client:    r.Client,
		}
	}
	return rows
}

// WriteCSV writes the ledger of res as comma separated values with a header
// line, even when the ledger is empty.
func WriteCSV(w io.Writer, res *aggregate.Result) error {
	rows := LedgerRows(res.Rows)
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

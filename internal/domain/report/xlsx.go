package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
)

// Sheet names of the exported workbook. The ledger sheet comes first so the
// workbook reads back as an upload.
const (
	SheetLedger   = "Ventas"
	SheetKPIs     = "KPIs"
	SheetDaily    = "Diario"
	SheetMonthly  = "Mensual"
	SheetProducts = "Productos"
	SheetClients  = "Clientes"
)

// WriteXLSX writes res as a workbook with one sheet per view
func WriteXLSX(w io.Writer, res *aggregate.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetLedger); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	ledgerRows := make([][]any, 0, len(res.Rows))
	for _, r := range res.Rows {
		ledgerRows = append(ledgerRows, []any{r.Date.Format(dateLayout), r.Product, r.Quantity, r.UnitPrice, r.Total, r.Client})
	}

	k := res.KPIs
	kpiRows := [][]any{
		{"Ingresos totales", k.TotalRevenue},
		{"Transacciones", k.TotalTransactions},
		{"Ticket promedio", k.AverageTicket},
		{"Productos", k.TotalProducts},
		{"Clientes", k.TotalClients},
		{"Variación %", k.RevenueChange},
		{"Día pico", k.PeakDay},
		{"Día más bajo", k.LowDay},
	}

	productRows := make([][]any, 0, len(res.TopProducts))
	for _, p := range res.TopProducts {
		productRows = append(productRows, []any{p.Product, p.TotalSold, p.TotalRevenue})
	}

	clientRows := make([][]any, 0, len(res.ClientBreakdown))
	for _, c := range res.ClientBreakdown {
		clientRows = append(clientRows, []any{c.Name, c.Total, c.Count})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetLedger, []any{"Fecha", "Producto", "Cantidad", "Precio Unitario", "Total", "Cliente"}, ledgerRows},
		{SheetKPIs, []any{"Indicador", "Valor"}, kpiRows},
		{SheetDaily, []any{"Fecha", "Ingresos", "Transacciones"}, pointRows(res.DailyRevenue)},
		{SheetMonthly, []any{"Mes", "Ingresos", "Transacciones"}, pointRows(res.MonthlyRevenue)},
		{SheetProducts, []any{"Producto", "Unidades", "Ingresos"}, productRows},
		{SheetClients, []any{"Cliente", "Total", "Transacciones"}, clientRows},
	}

	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
			}
		}
		if err := writeSheet(f, s.name, s.header, s.rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func pointRows(points []aggregate.Point) [][]any {
	rows := make([][]any, len(points))
	for i, p := range points {
		rows[i] = []any{p.Key, p.Value, p.Count}
	}
	return rows
}

package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

var ErrNoSheet = errors.New("workbook has no sheets")

// ReadExcel reads the first worksheet of a workbook. Its first non-empty row
// holds the headers; cells come back as Excel displays them, so dates follow
// the cell's number format.
func (r *Reader) ReadExcel(in io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to create row iterator: %w", err)
	}
	defer rows.Close()

	table := &Table{Format: FormatXLSX, Rows: make([]ledger.RawRow, 0, 256)}
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
		}

		if table.Headers == nil {
			if isBlank(cols) {
				continue
			}
			table.Headers = DedupeHeaders(cols)
			continue
		}
		r.appendRow(table, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	if table.Headers == nil {
		table.Headers = []string{}
	}
	return table, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

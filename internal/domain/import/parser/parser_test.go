package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

func TestReadCSV(t *testing.T) {
	t.Run("reads headers and rows", func(t *testing.T) {
		csv := "Fecha,Producto,Cantidad,Precio\n01/02/2024,Widget,2,\"10,50\"\n02/02/2024,Gadget,1,3\n"

		table, err := ReadCSV(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, FormatCSV, table.Format)
		assert.Equal(t, []string{"Fecha", "Producto", "Cantidad", "Precio"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, ledger.RawRow{"Fecha": "01/02/2024", "Producto": "Widget", "Cantidad": "2", "Precio": "10,50"}, table.Rows[0])
		assert.Equal(t, ',', table.Layout.Delimiter)
	})

	t.Run("quoted delimiters in data rows keep the header", func(t *testing.T) {
		csv := "Fecha,Producto,Cantidad,Total\n2024-01-01,Holiday pass,1,\"1.234,50\"\n01/02/2024,\"Item, large\",2,\"10,50\"\n"

		table, err := ReadCSV(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 0, table.Layout.SkipLines)
		assert.Equal(t, []string{"Fecha", "Producto", "Cantidad", "Total"}, table.Headers)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "1.234,50", table.Rows[0]["Total"])
		assert.Equal(t, "Item, large", table.Rows[1]["Producto"])
	})

	t.Run("skips metadata and blank lines", func(t *testing.T) {
		csv := "Export generado 2024-03-01\n\nfecha;producto;cantidad;total\n2024-01-01;A;1;10\n\n;;;\n2024-01-02;B;2;20\n"

		table, err := ReadCSV(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, table.Layout.SkipLines)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "B", table.Rows[1]["producto"])
	})

	t.Run("short rows pad with empty cells", func(t *testing.T) {
		csv := "date,product,qty,total,client\n2024-01-01,A,1,10\n"

		table, err := ReadCSV(strings.NewReader(csv))

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		v, ok := table.Rows[0]["client"]
		assert.True(t, ok)
		assert.Empty(t, v)
	})

	t.Run("strips BOM", func(t *testing.T) {
		csv := "\xEF\xBB\xBFdate,product,qty,total\n2024-01-01,A,1,10\n"

		table, err := ReadCSV(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, "date", table.Headers[0])
	})

	t.Run("decodes latin-1", func(t *testing.T) {
		csv := []byte("fecha;descripci\xf3n;cantidad;total\n2024-01-01;Caf\xe9;1;2\n")

		table, err := ReadCSV(bytes.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, "descripción", table.Headers[1])
		assert.Equal(t, "Café", table.Rows[0]["descripción"])
	})

	t.Run("header only", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader("fecha,producto,cantidad,total\n"))

		require.NoError(t, err)
		assert.Empty(t, table.Rows)
		assert.NotNil(t, table.Rows)
	})

	t.Run("single column", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader("fecha\n2024-01-01\n"))

		require.NoError(t, err)
		assert.Equal(t, []string{"fecha"}, table.Headers)
		require.Len(t, table.Rows, 1)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.Error(t, err)
	})
}

func TestDedupeHeaders(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"a", "a", "a"}, []string{"a", "a_1", "a_2"}},
		{[]string{"a", "a", "a_1"}, []string{"a", "a_2", "a_1"}},
		{[]string{" total ", "total"}, []string{"total", "total_1"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.in, ","), func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeHeaders(tt.in))
		})
	}
}

func TestReader_Progress(t *testing.T) {
	var calls []int
	r := NewReader(nil).WithProgress(func(rows int) { calls = append(calls, rows) })

	_, err := r.ReadCSV(strings.NewReader("date,product,qty,total\n2024-01-01,A,1,1\n2024-01-02,B,1,1\n"))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestRead_DispatchesOnExtension(t *testing.T) {
	_, err := Read("ventas.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	table, err := Read("VENTAS.CSV", strings.NewReader("date,product,qty,total\n2024-01-01,A,1,1\n"))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestReadExcel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Fecha", "Producto", "Cantidad", "Total", "Total"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-01-05", "Widget", 3, 31.5, 1}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"2024-01-06", "Gadget", 1, 2}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadExcel(bytes.NewReader(buf.Bytes()))

	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, table.Format)
	assert.Equal(t, []string{"Fecha", "Producto", "Cantidad", "Total", "Total_1"}, table.Headers)
	require.Len(t, table.Rows, 2, "leading and interior empty rows are skipped")
	assert.Equal(t, "Widget", table.Rows[0]["Producto"])
	assert.Equal(t, "31.5", table.Rows[0]["Total"])
	assert.Equal(t, "", table.Rows[1]["Total_1"])
	assert.Nil(t, table.Layout)
}

func TestReadExcel_Invalid(t *testing.T) {
	_, err := ReadExcel(strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestTable_Sample(t *testing.T) {
	table := &Table{Rows: []ledger.RawRow{{"a": "1"}, {"a": "2"}, {"a": "3"}}}
	assert.Len(t, table.Sample(2), 2)
	assert.Len(t, table.Sample(10), 3)
}

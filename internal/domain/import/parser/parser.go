// Package parser reads uploaded CSV and Excel files into a header list plus
// raw rows keyed by header name.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/sniffer"
)

// Format identifies the container a table was read from
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Table is one uploaded file: headers in file order and one RawRow per data
// line. Header names are unique.
type Table struct {
	Format  Format
	Headers []string
	Rows    []ledger.RawRow
	// Layout is what the sniffer detected; nil for spreadsheets.
	Layout *sniffer.FileConfig
}

// Sample returns up to n rows for previews
func (t *Table) Sample(n int) []ledger.RawRow {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// Reader turns uploads into tables
type Reader struct {
	sniffer  *sniffer.Sniffer
	progress func(rows int) // Optional: called after each data row
}

// NewReader creates a reader. A nil sniffer uses the default vocabulary.
func NewReader(s *sniffer.Sniffer) *Reader {
	if s == nil {
		s = sniffer.Default()
	}
	return &Reader{sniffer: s}
}

// WithProgress reports the running row count while reading
func (r *Reader) WithProgress(fn func(rows int)) *Reader {
	r.progress = fn
	return r
}

// Read dispatches on the file extension of name
func (r *Reader) Read(name string, in io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return r.ReadCSV(in)
	case ".xlsx", ".xlsm":
		return r.ReadExcel(in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadCSV reads delimited text. The delimiter and any metadata lines above the
// header are sniffed; input that is not valid UTF-8 is decoded as Latin-1.
func (r *Reader) ReadCSV(in io.Reader) (*Table, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data, err = normalizeCSVBytes(data)
	if err != nil {
		return nil, err
	}

	layout, err := r.sniffer.Detect(data, nil)
	if errors.Is(err, sniffer.ErrNoHeadersFound) {
		// single column file
		layout, err = r.sniffer.Detect(data, &sniffer.DetectOptions{HeaderRowIndex: firstNonBlankLine(data), Delimiter: ','})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to detect file layout: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(sniffer.SkipLines(data, layout.SkipLines)))
	reader.Comma = layout.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	table := &Table{
		Format:  FormatCSV,
		Headers: DedupeHeaders(header),
		Rows:    make([]ledger.RawRow, 0, 256),
		Layout:  layout,
	}
	layout.Headers = table.Headers

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed line; the csv reader resumes at the next one
			continue
		}
		r.appendRow(table, record)
	}
	return table, nil
}

func (r *Reader) appendRow(t *Table, record []string) {
	row, ok := rowFromRecord(t.Headers, record)
	if !ok {
		return
	}
	t.Rows = append(t.Rows, row)
	if r.progress != nil {
		r.progress(len(t.Rows))
	}
}

var defaultReader = NewReader(nil)

// ReadCSV reads delimited text with the default sniffer
func ReadCSV(in io.Reader) (*Table, error) {
	return defaultReader.ReadCSV(in)
}

// ReadExcel reads the first worksheet of a workbook
func ReadExcel(in io.Reader) (*Table, error) {
	return defaultReader.ReadExcel(in)
}

// Read dispatches on the extension of name with the default sniffer
func Read(name string, in io.Reader) (*Table, error) {
	return defaultReader.Read(name, in)
}

// DedupeHeaders trims header names and suffixes repeats with _1, _2, ... so
// each one can key a RawRow.
func DedupeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	taken := make(map[string]bool, len(headers))
	for _, h := range headers {
		taken[strings.TrimSpace(h)] = true
	}

	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		n := seen[h]
		seen[h] = n + 1
		if n == 0 {
			out[i] = h
			continue
		}
		name := h + "_" + strconv.Itoa(n)
		for taken[name] {
			n++
			name = h + "_" + strconv.Itoa(n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

// rowFromRecord keys record by headers. Missing trailing cells read as empty
// and extra cells are ignored. Returns false for a row with no content.
func rowFromRecord(headers, record []string) (ledger.RawRow, bool) {
	blank := true
	row := make(ledger.RawRow, len(headers))
	for i, h := range headers {
		var cell string
		if i < len(record) {
			cell = record[i]
		}
		if strings.TrimSpace(cell) != "" {
			blank = false
		}
		row[h] = cell
	}
	return row, !blank
}

func normalizeCSVBytes(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode latin-1 input: %w", err)
	}
	return decoded, nil
}

func firstNonBlankLine(data []byte) int {
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			return i
		}
	}
	return 0
}

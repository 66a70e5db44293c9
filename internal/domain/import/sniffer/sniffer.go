// Package sniffer provides automatic detection of CSV/TSV file layouts.
// It identifies delimiters and header rows and fingerprints the header set.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
)

const (
	maxHeaderSearch = 20
	sampleSize      = 5
)

var delimiters = []rune{';', '\t', ',', '|'}

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoHeadersFound   = errors.New("could not find data headers")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// FileConfig holds the detected configuration for a CSV/TSV file
type FileConfig struct {
	Delimiter   rune       // The field delimiter (';', ',', '\t', '|')
	SkipLines   int        // Number of metadata lines before headers
	Headers     []string   // Detected header names
	Fingerprint string     // SHA256 hash of normalized headers
	SampleRows  [][]string // First few data rows for preview
}

// DetectOptions allows callers to override header row or delimiter detection.
type DetectOptions struct {
	// HeaderRowIndex is a 0-based index for the header row. Set to -1 to auto-detect.
	HeaderRowIndex int
	// Delimiter overrides the detected delimiter when non-zero.
	Delimiter rune
}

// Sniffer scores candidate header lines by how many known column names they
// contain.
type Sniffer struct {
	matcher *ahocorasick.Matcher
}

// New builds a sniffer over lowercase keywords
func New(keywords []string) *Sniffer {
	patterns := make([][]byte, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			patterns = append(patterns, []byte(kw))
		}
	}
	if len(patterns) == 0 {
		return &Sniffer{}
	}
	return &Sniffer{matcher: ahocorasick.NewMatcher(patterns)}
}

// FromSynonyms uses every detector candidate as a keyword, in both its
// underscored and spaced spelling.
func FromSynonyms(s detector.Synonyms) *Sniffer {
	var keywords []string
	for _, role := range detector.Roles {
		for _, c := range s[role] {
			keywords = append(keywords, c)
			if spaced := strings.ReplaceAll(c, "_", " "); spaced != c {
				keywords = append(keywords, spaced)
			}
		}
	}
	return New(keywords)
}

var defaultSniffer = FromSynonyms(detector.DefaultSynonyms())

// Default returns the sniffer built from the detector's default vocabulary
func Default() *Sniffer {
	return defaultSniffer
}

// DetectConfig analyzes a CSV/TSV file with the built-in vocabulary
func DetectConfig(data []byte) (*FileConfig, error) {
	return defaultSniffer.Detect(data, nil)
}

// Detect analyzes a CSV/TSV file with optional overrides.
func (s *Sniffer) Detect(data []byte, opts *DetectOptions) (*FileConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	var (
		delimiter rune
		skipLines int
		err       error
	)
	if opts != nil && opts.HeaderRowIndex >= 0 {
		if opts.HeaderRowIndex >= len(lines) {
			return nil, ErrNoHeadersFound
		}
		skipLines = opts.HeaderRowIndex
		delimiter = opts.Delimiter
		if delimiter == 0 {
			delimiter, _ = detectDelimiter(cleanLine(lines[skipLines], skipLines == 0))
			if delimiter == 0 {
				return nil, ErrInvalidDelimiter
			}
		}
	} else {
		delimiter, skipLines, err = s.findHeaderRow(lines)
		if err != nil {
			return nil, err
		}
		if opts != nil && opts.Delimiter != 0 {
			delimiter = opts.Delimiter
		}
	}

	headerLine := cleanLine(lines[skipLines], skipLines == 0)
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   skipLines,
		Headers:     headers,
		Fingerprint: Fingerprint(headers),
		SampleRows:  sampleRows(data, delimiter, skipLines+1, sampleSize),
	}, nil
}

// keywordHits counts distinct keywords contained in line
func (s *Sniffer) keywordHits(line string) int {
	if s.matcher == nil {
		return 0
	}
	return len(s.matcher.Match([]byte(strings.ToLower(line))))
}

// keywordCells counts the cells that contain at least one keyword
func (s *Sniffer) keywordCells(cells []string) int {
	n := 0
	for _, cell := range cells {
		if s.keywordHits(cell) > 0 {
			n++
		}
	}
	return n
}

// findHeaderRow locates the header row and its delimiter. The first line
// with two or more keyword cells wins outright. Otherwise a line with a single
// keyword cell beats lines that only have many columns, and ties keep the
// earliest line.
func (s *Sniffer) findHeaderRow(lines []string) (rune, int, error) {
	fallbackIndex, fallbackDelimiter, fallbackCount := -1, rune(0), 0
	keywordIndex, keywordDelimiter, keywordCount := -1, rune(0), 0

	for i, line := range lines {
		if i >= maxHeaderSearch {
			break
		}

		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}

		switch cells := s.keywordCells(splitLine(line, delimiter)); {
		case cells >= 2:
			return delimiter, i, nil
		case cells == 1:
			if count > keywordCount {
				keywordIndex, keywordDelimiter, keywordCount = i, delimiter, count
			}
		default:
			if count > fallbackCount {
				fallbackIndex, fallbackDelimiter, fallbackCount = i, delimiter, count
			}
		}
	}

	if keywordIndex >= 0 {
		return keywordDelimiter, keywordIndex, nil
	}
	if fallbackIndex >= 0 {
		return fallbackDelimiter, fallbackIndex, nil
	}
	return 0, 0, ErrNoHeadersFound
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}

// splitLine parses a single line as one CSV record. Delimiters inside quoted
// cells do not split.
func splitLine(line string, delimiter rune) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	fields, err := reader.Read()
	if err != nil {
		return nil
	}
	return fields
}

// detectDelimiter picks the delimiter that yields the most fields, returning
// the number of separators it found outside quotes.
func detectDelimiter(line string) (rune, int) {
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := len(splitLine(line, d)) - 1
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

// Fingerprint hashes the normalized header names so that files exported by
// the same system can be recognised.
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

// sampleRows returns the first maxRows records after startLine
func sampleRows(data []byte, delimiter rune, startLine, maxRows int) [][]string {
	reader := csv.NewReader(bytes.NewReader(SkipLines(data, startLine)))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for len(rows) < maxRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		rows = append(rows, record)
	}
	return rows
}

// SkipLines drops the first n newline-terminated lines of data
func SkipLines(data []byte, n int) []byte {
	for ; n > 0; n-- {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil
		}
		data = data[i+1:]
	}
	return data
}

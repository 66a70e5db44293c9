package normalizer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  float64
	}{
		{"plain integer", "2", 2},
		{"dot decimal", "10.50", 10.5},
		{"comma decimal", "10,50", 10.5},
		{"currency symbol", "$ 99.99", 99.99},
		{"euro suffix", "12,30 €", 12.3},
		{"negative", "-4.50", -4.5},
		{"comma read as decimal", "1,234", 1.234},
		{"us thousands keeps leading part", "1,234.56", 1.234},
		{"european thousands keeps leading part", "1.234,56", 1.234},
		{"leading dot", ".5", 0.5},
		{"trailing dot", "5.", 5},
		{"trailing junk after number", "12-3", 12},
		{"units suffix", "3 u", 3},
		{"empty", "", 0},
		{"letters only", "abc", 0},
		{"lone minus", "-", 0},
		{"double minus", "--5", 0},
		{"negative zero", "-0", 0},
		{"out of range", "1" + strings.Repeat("0", 400), 0},
		{"negative out of range", "-1" + strings.Repeat("0", 400), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.token), 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		token  string
		want   time.Time
		wantOK bool
	}{
		{"iso date", "2024-02-01", day(2024, 2, 1), true},
		{"iso datetime zulu", "2024-02-01T23:30:00Z", day(2024, 2, 1), true},
		{"iso datetime offset", "2024-02-01T10:00:00+05:00", day(2024, 2, 1), true},
		{"iso datetime local", "2024-02-01T10:00:00", day(2024, 2, 1), true},
		{"iso with space", "2024-02-01 10:00", day(2024, 2, 1), true},
		{"iso month", "2024-02", day(2024, 2, 1), true},
		{"day first slash", "01/02/2024", day(2024, 2, 1), true},
		{"day first dash", "15-03-2024", day(2024, 3, 15), true},
		{"day first dot", "15.03.2024", day(2024, 3, 15), true},
		{"year first slash", "2024/03/15", day(2024, 3, 15), true},
		{"year first dot", "2024.03.15", day(2024, 3, 15), true},
		{"day overflow rolls over", "31/02/2024", day(2024, 3, 2), true},
		{"month overflow rolls over", "2024-13-01", day(2025, 1, 1), true},
		{"surrounding whitespace", "  01/02/2024 ", day(2024, 2, 1), true},
		{"day first with time", "01/02/2024 10:30", day(2024, 2, 1), true},
		{"textual month", "Feb 1, 2024", day(2024, 2, 1), true},
		{"day month name", "1 February 2024", day(2024, 2, 1), true},
		{"rfc1123", "Thu, 01 Feb 2024 10:00:00 GMT", day(2024, 2, 1), true},
		{"two digit year", "01/02/24", day(2024, 2, 1), true},
		{"two digit year single digit parts", "1/2/24", day(2024, 2, 1), true},
		{"two digit year dash", "01-02-24", day(2024, 2, 1), true},
		{"two digit year dot", "15.03.99", day(1999, 3, 15), true},
		{"two digit year pivot", "01/01/69", day(1969, 1, 1), true},
		{"two digit year before pivot", "01/01/68", day(2068, 1, 1), true},
		{"three digit middle part is not a short date", "01/123/24", time.Time{}, false},
		{"not a date", "not-a-date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"too many parts", "1/2/3/2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

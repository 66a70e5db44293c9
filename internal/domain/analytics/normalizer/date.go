package normalizer

import (
	"strconv"
	"strings"
	"time"
)

// ISO-8601 shapes tried first. The calendar date is taken as written; any
// zone offset is ignored.
var isoLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01",
	"20060102",
	"2006",
}

// Textual shapes tried when neither ISO nor the numeric split match
var fallbackLayouts = []string{
	"02/01/2006 15:04:05", // DD/MM/YYYY with time
	"02/01/2006 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.RFC822,
	time.RFC822Z,
	time.ANSIC,
	time.UnixDate,
	time.RubyDate,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

// Largest year a calendar date may carry
const maxYear = 275760

var separators = strings.NewReplacer("-", "/", ".", "/")

// ParseDate reads a calendar date from token and returns it at midnight UTC.
// It tries ISO-8601, then a three-part numeric date split on '/', '-' or '.'
// where a part above 100 is the year (d/m/y when last, y/m/d when first) and
// a two-digit last part is a short day-first year, then a list of textual
// layouts. Day or month values beyond their range roll over
// into the following month or year.
func ParseDate(token string) (time.Time, bool) {
	s := strings.TrimSpace(token)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil(t.Year(), int(t.Month()), t.Day())
		}
	}

	if t, ok := parseNumericParts(s); ok {
		return t, true
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil(t.Year(), int(t.Month()), t.Day())
		}
	}

	return time.Time{}, false
}

func parseNumericParts(s string) (time.Time, bool) {
	parts := strings.Split(separators.Replace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var n [3]int
	for i, p := range parts {
		v, ok := toInt(p)
		if !ok {
			return time.Time{}, false
		}
		n[i] = v
	}

	a, b, c := n[0], n[1], n[2]
	if c > 100 {
		return civil(c, b, a)
	}
	if a > 100 {
		return civil(a, b, c)
	}
	if shortParts(parts) && c >= 0 {
		return civil(expandYear(c), b, a)
	}
	return time.Time{}, false
}

// shortParts reports whether every part has one or two digits, as in DD/MM/YY
func shortParts(parts []string) bool {
	for _, p := range parts {
		if n := len(strings.TrimSpace(p)); n < 1 || n > 2 {
			return false
		}
	}
	return true
}

// expandYear maps a two-digit year onto 1969-2068, the window time.Parse
// uses for the "06" layout element.
func expandYear(yy int) int {
	if yy < 69 {
		return 2000 + yy
	}
	return 1900 + yy
}

func toInt(p string) (int, bool) {
	p = strings.TrimSpace(p)
	if p == "" {
		return 0, true
	}
	v, err := strconv.Atoi(p)
	if err != nil || v > 1_000_000 || v < -1_000_000 {
		return 0, false
	}
	return v, true
}

// civil builds the normalized date y-m-d. time.Date rolls overflowing days and
// months forward.
func civil(y, m, d int) (time.Time, bool) {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() > maxYear || t.Year() < -maxYear {
		return time.Time{}, false
	}
	return t, true
}

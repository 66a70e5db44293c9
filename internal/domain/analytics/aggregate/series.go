package aggregate

import (
	"sort"
	"time"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// DailyRevenue sums totals per calendar day
func DailyRevenue(records []ledger.Record) []Point {
	return bucket(records, func(d time.Time) string {
		return d.Format(dayLayout)
	})
}

// WeeklyRevenue sums totals per week, keyed by the date the week starts on
func WeeklyRevenue(records []ledger.Record, weekStart time.Weekday) []Point {
	return bucket(records, func(d time.Time) string {
		return StartOfWeek(d, weekStart).Format(dayLayout)
	})
}

// MonthlyRevenue sums totals per calendar month
func MonthlyRevenue(records []ledger.Record) []Point {
	return bucket(records, func(d time.Time) string {
		return d.Format(monthLayout)
	})
}

// StartOfWeek returns the most recent weekStart day on or before d
func StartOfWeek(d time.Time, weekStart time.Weekday) time.Time {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	y, m, day := d.Date()
	return time.Date(y, m, day-offset, 0, 0, 0, 0, d.Location())
}

// bucket groups records by key in ledger order and returns the buckets in
// ascending key order. Empty buckets never appear.
func bucket(records []ledger.Record, key func(time.Time) string) []Point {
	index := make(map[string]int)
	points := make([]Point, 0)
	for _, r := range records {
		k := key(r.Date)
		i, ok := index[k]
		if !ok {
			i = len(points)
			index[k] = i
			points = append(points, Point{Key: k})
		}
		points[i].Value += r.Total
		points[i].Count++
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Key < points[j].Key
	})
	return points
}

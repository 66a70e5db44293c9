package aggregate

import (
	"time"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

// Engine computes the full Result for a ledger
type Engine struct {
	weekStart time.Weekday
}

// NewEngine creates an engine whose weekly buckets start on weekStart
func NewEngine(weekStart time.Weekday) *Engine {
	return &Engine{weekStart: weekStart}
}

// Compute derives every aggregate from records, which must already be in
// ledger (date) order. The returned Result owns its own copy of the ledger.
func (e *Engine) Compute(records []ledger.Record) *Result {
	rows := append(make([]ledger.Record, 0, len(records)), records...)

	daily := DailyRevenue(rows)
	products := Products(rows)
	clients := Clients(rows)
	peak, low := PeakAndLowDays(daily, DaysSize)

	return &Result{
		Rows:            rows,
		KPIs:            ComputeKPIs(rows, daily, peak, low, len(products), len(clients)),
		DailyRevenue:    daily,
		WeeklyRevenue:   WeeklyRevenue(rows, e.weekStart),
		MonthlyRevenue:  MonthlyRevenue(rows),
		TopProducts:     TopProducts(products, RankingSize),
		BottomProducts:  BottomProducts(products, RankingSize),
		PeakDays:        peak,
		LowDays:         low,
		ClientBreakdown: clients,
	}
}

// ComputeKPIs summarises the ledger. RevenueChange compares the first half of
// the daily buckets with the second half (split at len/2) and is 0 unless the
// first half is positive.
func ComputeKPIs(records []ledger.Record, daily, peak, low []Point, productCount, clientCount int) KPIs {
	k := KPIs{
		TotalTransactions: len(records),
		TotalProducts:     productCount,
		TotalClients:      clientCount,
		PeakDay:           NotAvailable,
		LowDay:            NotAvailable,
	}

	for _, r := range records {
		k.TotalRevenue += r.Total
	}
	if k.TotalTransactions > 0 {
		k.AverageTicket = k.TotalRevenue / float64(k.TotalTransactions)
	}

	mid := len(daily) / 2
	var first, second float64
	for i, p := range daily {
		if i < mid {
			first += p.Value
		} else {
			second += p.Value
		}
	}
	if first > 0 {
		k.RevenueChange = (second - first) / first * 100
	}

	if len(peak) > 0 {
		k.PeakDay = peak[0].Key
	}
	if len(low) > 0 {
		k.LowDay = low[0].Key
	}
	return k
}

// Package aggregate derives revenue series, rankings, and headline KPIs from a
// built ledger. Every function here is a pure reduction over its input.
package aggregate

import (
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

const (
	// NoClient groups records without a client
	NoClient = "Sin cliente"
	// NotAvailable marks KPIs that have no value for an empty ledger
	NotAvailable = "N/A"

	RankingSize = 10
	DaysSize    = 5
)

// Point is one sparse time bucket. Key is yyyy-MM-dd (daily, weekly start) or
// yyyy-MM (monthly), so lexical order is chronological order.
type Point struct {
	Key   string  `json:"date"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// ProductRanking accumulates sales of one exact product name
type ProductRanking struct {
	Product      string  `json:"product"`
	TotalSold    float64 `json:"totalSold"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// ClientBreakdown accumulates revenue of one client
type ClientBreakdown struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// KPIs are the headline figures of an upload
type KPIs struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalTransactions int     `json:"totalTransactions"`
	AverageTicket     float64 `json:"averageTicket"`
	TotalProducts     int     `json:"totalProducts"`
	TotalClients      int     `json:"totalClients"`
	RevenueChange     float64 `json:"revenueChange"` // percent
	PeakDay           string  `json:"peakDay"`
	LowDay            string  `json:"lowDay"`
}

// Result is the immutable bundle handed to reporting and presentation. It is
// produced once per processing run; consumers must treat it as read-only.
type Result struct {
	Rows            []ledger.Record     `json:"rows"`
	KPIs            KPIs                `json:"kpis"`
	DailyRevenue    []Point             `json:"dailyRevenue"`
	WeeklyRevenue   []Point             `json:"weeklyRevenue"`
	MonthlyRevenue  []Point             `json:"monthlyRevenue"`
	TopProducts     []ProductRanking    `json:"topProducts"`
	BottomProducts  []ProductRanking    `json:"bottomProducts"`
	PeakDays        []Point             `json:"peakDays"`
	LowDays         []Point             `json:"lowDays"`
	ClientBreakdown []ClientBreakdown   `json:"clientBreakdown"`
	Dropped         []ledger.Diagnostic `json:"dropped"`
}

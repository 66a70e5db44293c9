package aggregate

import (
	"sort"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/ledger"
)

// Products groups records by exact product name, in first-appearance order
func Products(records []ledger.Record) []ProductRanking {
	index := make(map[string]int)
	out := make([]ProductRanking, 0)
	for _, r := range records {
		i, ok := index[r.Product]
		if !ok {
			i = len(out)
			index[r.Product] = i
			out = append(out, ProductRanking{Product: r.Product})
		}
		out[i].TotalSold += r.Quantity
		out[i].TotalRevenue += r.Total
	}
	return out
}

// TopProducts returns up to n products with the highest revenue, highest first
func TopProducts(products []ProductRanking, n int) []ProductRanking {
	sorted := clone(products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalRevenue > sorted[j].TotalRevenue
	})
	return head(sorted, n)
}

// BottomProducts returns up to n products with the lowest revenue, lowest first.
// With fewer than 2n products a product may also appear in TopProducts.
func BottomProducts(products []ProductRanking, n int) []ProductRanking {
	sorted := clone(products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalRevenue < sorted[j].TotalRevenue
	})
	return head(sorted, n)
}

// PeakAndLowDays ranks the daily series by value. Peak holds the n highest
// days, highest first; low holds the n lowest days, lowest first. Exact ties
// keep the stable order of the daily series.
func PeakAndLowDays(daily []Point, n int) (peak, low []Point) {
	sorted := clone(daily)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	peak = head(sorted, n)

	start := len(sorted) - n
	if start < 0 {
		start = 0
	}
	tail := sorted[start:]
	low = make([]Point, len(tail))
	for i, p := range tail {
		low[len(tail)-1-i] = p
	}
	return peak, low
}

// Clients groups records by client, highest revenue first. Records without a
// client fall into NoClient. The list is not truncated.
func Clients(records []ledger.Record) []ClientBreakdown {
	index := make(map[string]int)
	out := make([]ClientBreakdown, 0)
	for _, r := range records {
		name := r.Client
		if name == "" {
			name = NoClient
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ClientBreakdown{Name: name})
		}
		out[i].Total += r.Total
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n:n]
	}
	return s
}

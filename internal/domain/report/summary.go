package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/pkg/money"
)

// Summary renders the headline KPIs and the top products as aligned text.
// Amounts are formatted in currency; an unknown code falls back to USD.
func Summary(res *aggregate.Result, currency string) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	k := res.KPIs
	amount := func(v float64) string { return money.NewFromFloat(v, currency).Display() }

	fmt.Fprintf(tw, "Ingresos totales:\t%s\n", amount(k.TotalRevenue))
	fmt.Fprintf(tw, "Transacciones:\t%d\n", k.TotalTransactions)
	fmt.Fprintf(tw, "Ticket promedio:\t%s\n", amount(k.AverageTicket))
	fmt.Fprintf(tw, "Productos:\t%d\n", k.TotalProducts)
	fmt.Fprintf(tw, "Clientes:\t%d\n", k.TotalClients)
	fmt.Fprintf(tw, "Variación:\t%+.1f%%\n", k.RevenueChange)
	fmt.Fprintf(tw, "Día pico:\t%s\n", k.PeakDay)
	fmt.Fprintf(tw, "Día más bajo:\t%s\n", k.LowDay)

	if len(res.TopProducts) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Top productos:")
		for i, p := range res.TopProducts {
			fmt.Fprintf(tw, "%2d. %s\t%s\t%g u.\n", i+1, p.Product, amount(p.TotalRevenue), p.TotalSold)
		}
	}
	if n := len(res.Dropped); n > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "Filas descartadas:\t%d\n", n)
	}

	tw.Flush()
	return b.String()
}

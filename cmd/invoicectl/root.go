package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/service"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/sniffer"
	"github.com/FACorreiaa/invoice-insights/pkg/config"
	"github.com/FACorreiaa/invoice-insights/pkg/logger"
	"github.com/FACorreiaa/invoice-insights/pkg/money"
)

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	synonymsFile string
	weekStart    string
	currency     string
	logLevel     string
	progress     bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "invoicectl",
		Short: "Sales analytics for CSV and Excel invoice exports",
		Long: `invoicectl detects which columns of an invoice export hold the date,
product, quantity, price, total and client, builds a clean ledger from the
rows and reports revenue KPIs, time series and rankings.

Example Usage:
  invoicectl detect ventas.csv
  invoicectl process ventas.csv --total Importe
  invoicectl export ventas.xlsx --out informe.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.synonymsFile, "synonyms", "", "YAML file extending the header vocabulary")
	pf.StringVar(&opts.weekStart, "week-start", "monday", "first day of weekly buckets (monday, sunday, saturday)")
	pf.StringVar(&opts.currency, "currency", "EUR", "ISO-4217 code used in the text summary")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	pf.BoolVar(&opts.progress, "progress", false, "show a progress bar while reading the file")

	cmd.AddCommand(
		newDetectCmd(opts),
		newProcessCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// pipeline is the set of components a subcommand needs
type pipeline struct {
	reader  *parser.Reader
	service *service.AnalyticsService
}

func (o *globalOptions) pipeline() (*pipeline, error) {
	log, err := logger.New(o.stderr, o.logLevel, "text")
	if err != nil {
		return nil, err
	}
	weekStart, err := config.ParseWeekday(o.weekStart)
	if err != nil {
		return nil, err
	}
	if !money.Valid(o.currency) {
		return nil, fmt.Errorf("--currency is not a known ISO-4217 code: %q", o.currency)
	}
	synonyms, err := detector.LoadSynonyms(o.synonymsFile)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		reader:  parser.NewReader(sniffer.FromSynonyms(synonyms)),
		service: service.NewAnalyticsService(detector.New(synonyms), aggregate.NewEngine(weekStart), log),
	}, nil
}

// readTable loads path, optionally drawing a byte progress bar on stderr
func (o *globalOptions) readTable(p *pipeline, path string) (*parser.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var in io.Reader = f
	if o.progress {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(o.stderr),
			progressbar.OptionSetDescription("reading "+filepath.Base(path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(50*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(o.stderr) }),
		)
		defer bar.Finish()
		in = io.TeeReader(f, bar)
	}

	table, err := p.reader.Read(filepath.Base(path), in)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

func formatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}


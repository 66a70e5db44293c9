package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/service"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
	"github.com/FACorreiaa/invoice-insights/internal/domain/report"
)

var errUnknownExport = errors.New("unknown export format")

// mappingFlags let the user confirm or override the detected columns
type mappingFlags struct {
	file     string
	override detector.Mapping
}

func (f *mappingFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.file, "mapping", "", "YAML file with a column mapping (date, product, quantity, price, total, client)")
	fl.StringVar(&f.override.DateField, "date", "", "header holding the sale date")
	fl.StringVar(&f.override.ProductField, "product", "", "header holding the product name")
	fl.StringVar(&f.override.QuantityField, "quantity", "", "header holding the quantity")
	fl.StringVar(&f.override.PriceField, "price", "", "header holding the unit price")
	fl.StringVar(&f.override.TotalField, "total", "", "header holding the line total")
	fl.StringVar(&f.override.ClientField, "client", "", "header holding the client")
}

// resolve layers the mapping file and the flags over the detected mapping
func (f *mappingFlags) resolve(detected detector.Mapping) (detector.Mapping, error) {
	m := detected
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return m, fmt.Errorf("failed to read mapping file: %w", err)
		}
		var fromFile detector.Mapping
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return m, fmt.Errorf("failed to decode mapping file: %w", err)
		}
		m = m.Merge(fromFile)
	}
	return m.Merge(f.override), nil
}

func newDetectCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect FILE",
		Short: "Suggest which column holds each invoice field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.pipeline()
			if err != nil {
				return err
			}
			table, err := opts.readTable(p, args[0])
			if err != nil {
				return err
			}
			suggestion := p.service.Detect(cmd.Context(), table.Headers)

			if asJSON {
				return writeJSON(opts.stdout, suggestion)
			}
			return writeSuggestion(opts.stdout, table, suggestion)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the suggestion as JSON")
	return cmd
}

func newProcessCmd(opts *globalOptions) *cobra.Command {
	var (
		flags  mappingFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "process FILE",
		Short: "Build the ledger and print KPIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.run(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(opts.stdout, res)
			}
			_, err = io.WriteString(opts.stdout, report.Summary(res, opts.currency))
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		flags mappingFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Write the cleaned ledger as CSV, XLSX or a text summary",
		Long: `export processes FILE and writes the result to --out. The output format
follows the extension: .csv writes the ledger, .xlsx writes one sheet per
report and .txt writes the summary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := formatFromPath(out)
			switch format {
			case "csv", "xlsx", "txt":
			default:
				return fmt.Errorf("%w: %q", errUnknownExport, out)
			}

			res, err := opts.run(cmd, &flags, args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := writeExport(f, format, res, opts.currency); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", out, err)
			}

			fmt.Fprintf(opts.stdout, "wrote %d records to %s\n", len(res.Rows), out)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (.csv, .xlsx or .txt)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// run reads path and processes it with the resolved mapping
func (o *globalOptions) run(cmd *cobra.Command, flags *mappingFlags, path string) (*aggregate.Result, error) {
	p, err := o.pipeline()
	if err != nil {
		return nil, err
	}
	table, err := o.readTable(p, path)
	if err != nil {
		return nil, err
	}

	suggestion := p.service.Detect(cmd.Context(), table.Headers)
	m, err := flags.resolve(suggestion.Mapping)
	if err != nil {
		return nil, err
	}
	return p.service.Process(cmd.Context(), table.Headers, table.Rows, m)
}

func writeExport(w io.Writer, format string, res *aggregate.Result, currency string) error {
	switch format {
	case "xlsx":
		return report.WriteXLSX(w, res)
	case "txt":
		_, err := io.WriteString(w, report.Summary(res, currency))
		return err
	default:
		return report.WriteCSV(w, res)
	}
}

func writeSuggestion(w io.Writer, table *parser.Table, s *service.Suggestion) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Columns:\t%s\n", strings.Join(table.Headers, ", "))
	fmt.Fprintf(tw, "Rows:\t%d\n", len(table.Rows))
	for _, role := range detector.Roles {
		header := s.Mapping.Field(role)
		if header == "" {
			header = "-"
			if alts := s.Alternatives[role]; len(alts) > 0 {
				names := make([]string, len(alts))
				for i, a := range alts {
					names[i] = a.Header
				}
				header += " (did you mean " + strings.Join(names, ", ") + "?)"
			}
		}
		fmt.Fprintf(tw, "%s:\t%s\n", role, header)
	}
	if s.Valid {
		fmt.Fprintln(tw, "Mapping:\tready to process")
	} else {
		fmt.Fprintln(tw, "Mapping:\tincomplete, pass --date/--product/--quantity/--price/--total")
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Command gendata writes a synthetic wildlife case collection as CSV or JSON
// and prints its category mix, so fixtures and demo data can be produced
// without starting the dashboard.
//
// Usage:
//
//	go run ./cmd/gendata --count 500 --seed 42 --as-of 2024-06-01 --out data/cases.csv
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/wildlife-health-watch/internal/aggregate"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/generator"
	"github.com/couchcryptid/wildlife-health-watch/internal/store"
	"github.com/spf13/cobra"
)

type options struct {
	count      int
	seed       uint64
	windowDays int
	prefix     string
	asOf       string
	out        string
	format     string
	quiet      bool
}

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "gendata",
		Short:        "Generate a synthetic wildlife health case collection",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.IntVar(&opts.count, "count", generator.DefaultCount, "number of records to generate")
	flags.Uint64Var(&opts.seed, "seed", generator.DefaultSeed, "random seed")
	flags.IntVar(&opts.windowDays, "window-days", generator.DefaultWindowDays, "days before --as-of that reports may fall on")
	flags.StringVar(&opts.prefix, "prefix", generator.DefaultPrefix, "case id prefix")
	flags.StringVar(&opts.asOf, "as-of", "", "reference date in YYYY-MM-DD (default today)")
	flags.StringVar(&opts.out, "out", "-", "output file, - for stdout")
	flags.StringVar(&opts.format, "format", "", "csv or json (default from --out extension, else csv)")
	flags.BoolVar(&opts.quiet, "quiet", false, "skip the summary")

	return cmd
}

func run(opts options, stdout, stderr io.Writer) error {
	now := time.Now().UTC()
	if opts.asOf != "" {
		d, err := domain.ParseDate(opts.asOf)
		if err != nil {
			return fmt.Errorf("--as-of: %w", err)
		}
		now = d
	}

	format, err := outputFormat(opts.format, opts.out)
	if err != nil {
		return err
	}

	records, err := generator.Generate(generator.Request{
		Count:      opts.count,
		Seed:       opts.seed,
		WindowDays: opts.windowDays,
		Now:        now,
		Prefix:     opts.prefix,
	})
	if err != nil {
		return err
	}

	if opts.out == "-" {
		err = write(stdout, format, records)
	} else {
		f, cerr := os.Create(opts.out)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		err = writeAndClose(f, format, records)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}

	if !opts.quiet {
		shares, err := generator.SeverityShares()
		if err != nil {
			return err
		}
		printStats(stderr, records, now, shares)
	}
	return nil
}

func outputFormat(flag, out string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
		if format != "json" {
			format = "csv"
		}
	}
	if format != "csv" && format != "json" {
		return "", fmt.Errorf("unsupported format %q: want csv or json", flag)
	}
	return format, nil
}

// writeAndClose writes records to wc and closes it. A failed close is
// reported when the write itself succeeded, since buffered data may be lost.
func writeAndClose(wc io.WriteCloser, format string, records []domain.CaseRecord) (err error) {
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return write(wc, format, records)
}

func write(w io.Writer, format string, records []domain.CaseRecord) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return store.WriteCSV(w, records)
}

func printStats(w io.Writer, records []domain.CaseRecord, now time.Time, expected map[domain.Severity]float64) {
	m := aggregate.Summarize(records, now)
	fmt.Fprintf(w, "Records: %d (first %s, last %s)\n", m.TotalCases,
		records[0].ReportDate.Format(domain.DateLayout),
		records[len(records)-1].ReportDate.Format(domain.DateLayout))
	fmt.Fprintf(w, "Active: %d  Critical: %d  Animals affected: %d  Last 30 days: %d\n",
		m.ActiveCases, m.CriticalCases, m.AnimalsAffected, m.CasesLast30Days)

	bySeverity := map[domain.Severity]int{}
	byStatus := map[domain.Status]int{}
	byRegion := map[string]int{}
	for i := range records {
		bySeverity[records[i].Severity]++
		byStatus[records[i].Status]++
		byRegion[records[i].Region]++
	}

	fmt.Fprintln(w, "\nSeverity:")
	for _, s := range domain.Severities {
		fmt.Fprintf(w, "  %-20s %5d  %5.1f%%  (expected %4.1f%%)\n",
			s, bySeverity[s], pct(bySeverity[s], len(records)), 100*expected[s])
	}
	fmt.Fprintln(w, "\nStatus:")
	for _, s := range domain.Statuses {
		fmt.Fprintf(w, "  %-20s %5d  %5.1f%%\n", s, byStatus[s], pct(byStatus[s], len(records)))
	}

	fmt.Fprintln(w, "\nRegions:")
	for _, r := range domain.DefaultCatalog().Regions {
		fmt.Fprintf(w, "  %-20s %5d  %5.1f%%\n", r.Name, byRegion[r.Name], pct(byRegion[r.Name], len(records)))
	}

	printTally(w, "Species", aggregate.SpeciesTally(records), len(records))
	printTally(w, "Syndromes", aggregate.SyndromeTally(records), len(records))
}

func printTally(w io.Writer, title string, tallies []aggregate.Tally, total int) {
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, t := range tallies {
		fmt.Fprintf(w, "  %-20s %5d  %5.1f%%\n", t.Name, t.Count, pct(t.Count, total))
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}

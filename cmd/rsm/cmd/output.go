package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"text/tabwriter"

	apiclient "github.com/tcg-tools/restock-monitor/internal/api/client"
	domain "github.com/tcg-tools/restock-monitor/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printProductTable(products []domain.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("NAME\tRETAILER\tCATEGORY\tPRICE\tIN STOCK\tLAST CHECKED\n")
	for i := range products {
		p := &products[i]
		tw.writef("%s\t%s\t%s\t%s\t%v\t%s\n",
			truncate(p.Name, 48),
			p.Retailer,
			p.Category,
			p.DisplayPrice(),
			p.InStock,
			p.LastChecked.Format("2006-01-02 15:04"),
		)
	}
	return tw.finish()
}

func printProductDetail(p *domain.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Name:\t%s\n", p.Name)
	tw.writef("Retailer:\t%s\n", p.Retailer)
	tw.writef("Category:\t%s\n", p.Category)
	tw.writef("Set:\t%s\n", p.SetName)
	tw.writef("Price:\t%s\n", p.DisplayPrice())
	tw.writef("In Stock:\t%v\n", p.InStock)
	tw.writef("Last Checked:\t%s\n", p.LastChecked.Format("2006-01-02 15:04:05"))
	tw.writef("URL:\t%s\n", p.URL)
	return tw.finish()
}

func printStatus(s *apiclient.Status) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Running:\t%v\n", s.Running)
	tw.writef("Total Checks:\t%d\n", s.TotalChecks)
	tw.writef("Successful:\t%d\n", s.SuccessfulChecks)
	tw.writef("Failed:\t%d\n", s.FailedChecks)
	tw.writef("Products Found:\t%d\n", s.ProductsFound)
	tw.writef("Products Tracked:\t%d\n", s.ProductsTracked)
	tw.writef("In Stock Now:\t%d\n", s.ProductsInStock)
	tw.writef("Alerts Sent:\t%d\n", s.AlertsSent)
	tw.writef("Alerts (24h):\t%d\n", s.AlertsLast24h)
	if s.LastCheck != nil {
		tw.writef("Last Check:\t%s\n", s.LastCheck.Format("2006-01-02 15:04:05"))
	}
	for _, source := range slices.Sorted(maps.Keys(s.Breakers)) {
		tw.writef("  breaker %s:\t%s\n", source, s.Breakers[source])
	}
	tw.writef("Total Errors:\t%d\n", s.TotalErrors)
	for _, e := range s.RecentErrors {
		tw.writef("  error:\t%s\n", truncate(e, 100))
	}
	return tw.finish()
}

func printEventsTable(events []domain.StockEvent) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TYPE\tPRODUCT\tRETAILER\tPRICE\n")
	for i := range events {
		e := &events[i]
		tw.writef("%s\t%s\t%s\t%s\n",
			e.Type,
			truncate(e.Product.Name, 48),
			e.Product.Retailer,
			e.Product.DisplayPrice(),
		)
	}
	return tw.finish()
}

func printTrackedTable(tracked []domain.TrackedProduct) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("NAME\tRETAILER\tADDED BY\tADDED AT\tURL\n")
	for i := range tracked {
		tr := &tracked[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			truncate(tr.Name, 40),
			tr.Retailer,
			tr.AddedBy,
			tr.AddedAt.Format("2006-01-02"),
			truncate(tr.URL, 60),
		)
	}
	return tw.finish()
}

func printDLQTable(entries []domain.FailedDelivery) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTYPE\tRETRIES\tERROR\tURL\n")
	for i := range entries {
		e := &entries[i]
		tw.writef("%d\t%s\t%d\t%s\t%s\n",
			e.ID,
			e.AlertType,
			e.RetryCount,
			truncate(e.ErrorMessage, 40),
			truncate(e.ProductURL, 60),
		)
	}
	return tw.finish()
}

func printDLQStats(s *domain.DLQStats) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Pending:\t%d\n", s.Pending)
	tw.writef("Resolved:\t%d\n", s.Resolved)
	tw.writef("Exhausted:\t%d\n", s.Exhausted)
	tw.writef("Total:\t%d\n", s.Total)
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

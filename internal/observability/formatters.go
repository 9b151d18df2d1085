// Package observability provides the CLI logger and the formatted run summary.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hiring-hub/internal/layout"
	"github.com/jonathan/hiring-hub/internal/workbook"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer writes human-readable run summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintReport outputs the summary of a setup run.
func (p *Printer) PrintReport(report *layout.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", report.RunID))
	if report.TimeZoneChanged {
		sb.WriteString(fmt.Sprintf("Time zone:  %s (was %q)\n", report.TimeZone, report.PreviousTimeZone))
	} else {
		sb.WriteString(fmt.Sprintf("Time zone:  %s\n", report.TimeZone))
	}
	sb.WriteString(fmt.Sprintf("Data sheet: %s%s\n", report.DataSheet, createdSuffix(report.DataSheetCreated)))
	sb.WriteString(fmt.Sprintf("Log sheet:  %s%s\n", report.LogSheet, createdSuffix(report.LogSheetCreated)))
	sb.WriteString("\n")

	if len(report.AppendedHeaders) > 0 {
		sb.WriteString(fmt.Sprintf("Appended %d headers:\n", len(report.AppendedHeaders)))
		count := min(len(report.AppendedHeaders), maxItemsToShow)
		for i := 0; i < count; i++ {
			h := report.AppendedHeaders[i]
			sb.WriteString(fmt.Sprintf("  • %s → %s\n", h.Header, workbook.ColumnName(h.Column)))
		}
		if len(report.AppendedHeaders) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.AppendedHeaders)-maxItemsToShow))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("Headers:    all present\n")
	}

	if report.ValidationColumn > 0 {
		sb.WriteString(fmt.Sprintf("Dropdown:   column %s, %d values\n",
			workbook.ColumnName(report.ValidationColumn), len(report.ValidationValues)))
	}
	if len(report.Formatted) > 0 {
		sb.WriteString(fmt.Sprintf("Formatted:  %d columns\n", len(report.Formatted)))
	}

	if len(report.RepairedLogCells) > 0 {
		sb.WriteString(fmt.Sprintf("\nRepaired %d log headers:\n", len(report.RepairedLogCells)))
		for _, c := range report.RepairedLogCells {
			sb.WriteString(fmt.Sprintf("  • %s1 %q → %q\n", workbook.ColumnName(c.Column), c.Was, c.Now))
		}
	}

	if len(report.Skips) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkipped %d:\n", len(report.Skips)))
		for _, s := range report.Skips {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", s.Reason))
		}
	}

	title := "LAYOUT SETUP"
	if !report.Changed() {
		title = "LAYOUT SETUP (already up to date)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPlan outputs the mutations a dry run would have sent.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintPlan(ops []workbook.Op) {
	if len(ops) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO CHANGES PLANNED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	p.printBox("DRY RUN PLAN", fmt.Sprintf("%d planned operations, nothing was written", len(ops)))
	// Operations are listed outside the box so long ranges are not cut.
	for _, op := range ops {
		fmt.Fprintf(p.out, "  • %s\n", op)
	}
}

func createdSuffix(created bool) string {
	if created {
		return " (created)"
	}
	return ""
}

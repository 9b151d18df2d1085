package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-hub/internal/layout"
	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &layout.Report{
		RunID:            uuid.MustParse("6f1c2b8e-3d4a-4f0e-9a57-2b8c1d0e4f6a"),
		TimeZone:         "America/New_York",
		PreviousTimeZone: "Etc/GMT",
		TimeZoneChanged:  true,
		DataSheet:        "Application",
		AppendedHeaders: []layout.AppendedHeader{
			{Header: "Stage Started At", Column: 7},
			{Header: "Sequence Send Count", Column: 8},
		},
		ValidationColumn: 2,
		ValidationValues: layout.Default().DropdownValues(),
		LogSheet:         "Automation Log",
		LogSheetCreated:  true,
		Skips: []layout.Skip{
			{Step: layout.StepFormatColumns, Reason: "Cell Phone Number column not found"},
		},
	}

	p.PrintReport(report)
	output := buf.String()

	assert.Contains(t, output, "LAYOUT SETUP")
	assert.NotContains(t, output, "already up to date")
	assert.Contains(t, output, "6f1c2b8e-3d4a-4f0e-9a57-2b8c1d0e4f6a")
	assert.Contains(t, output, `was "Etc/GMT"`)
	assert.Contains(t, output, "Automation Log (created)")
	assert.Contains(t, output, "Stage Started At → G")
	assert.Contains(t, output, "column B, 10 values")
	assert.Contains(t, output, "Cell Phone Number column not found")
}

func TestPrintReport_Unchanged(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&layout.Report{TimeZone: "America/New_York", DataSheet: "Application", LogSheet: "Automation Log"})
	output := buf.String()

	assert.Contains(t, output, "already up to date")
	assert.Contains(t, output, "all present")
	assert.NotContains(t, output, "(created)")
}

func TestPrintReport_TruncatesManyHeaders(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &layout.Report{}
	for i, h := range layout.Default().RequiredHeaders {
		report.AppendedHeaders = append(report.AppendedHeaders, layout.AppendedHeader{Header: h, Column: i + 1})
	}
	p.PrintReport(report)

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(nil)

	assert.Empty(t, buf.String())
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPlan([]workbook.Op{
		{Kind: workbook.OpInsertSheet, Sheet: "Automation Log"},
		{Kind: workbook.OpSetValidation, Sheet: "Application", Range: workbook.ColumnRange(2, 1000), Values: make([]string, 10)},
	})
	output := buf.String()

	assert.Contains(t, output, "DRY RUN PLAN")
	assert.Contains(t, output, "2 planned operations")
	assert.Contains(t, output, `insert sheet "Automation Log"`)
	assert.Contains(t, output, "'Application'!B2:B1000 (10 values)")
}

func TestPrintPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPlan(nil)

	assert.Contains(t, buf.String(), "NO CHANGES PLANNED")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[3], "...")
	assert.Equal(t, len([]rune(lines[0])), len([]rune(lines[3])))
}

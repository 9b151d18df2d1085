package layout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/rs/zerolog"
)

// textFormat keeps phone numbers as typed so leading zeros and "+" survive.
const textFormat = "@"

// Initializer reconciles a workbook against a Layout. Every step is safe to
// repeat; re-running after a failed run is the recovery path.
type Initializer struct {
	layout Layout
	logger zerolog.Logger
	runID  uuid.UUID
}

// New creates an Initializer for the given layout.
func New(l Layout, logger zerolog.Logger) *Initializer {
	return &Initializer{layout: l, logger: logger}
}

// WithRunID fixes the run identifier recorded in the report.
func (in *Initializer) WithRunID(id uuid.UUID) *Initializer {
	in.runID = id
	return in
}

// Layout returns the layout being applied.
func (in *Initializer) Layout() Layout {
	return in.layout
}

// Run executes every setup step in order and flushes the workbook. Missing
// optional columns are skipped; a host error aborts the run without rollback.
func (in *Initializer) Run(ctx context.Context, wb workbook.Workbook) (*Report, error) {
	if err := in.layout.Validate(); err != nil {
		return nil, err
	}

	runID := in.runID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	report := &Report{RunID: runID}

	if err := in.EnsureTimeZone(ctx, wb, report); err != nil {
		return report, err
	}

	dataSheet, err := in.EnsureDataSheet(ctx, wb, report)
	if err != nil {
		return report, err
	}
	headers, err := in.EnsureHeaders(ctx, dataSheet, report)
	if err != nil {
		return report, err
	}
	if err := in.EnsurePipelineValidation(ctx, dataSheet, headers, report); err != nil {
		return report, err
	}
	if err := in.FormatColumns(ctx, dataSheet, headers, report); err != nil {
		return report, err
	}

	logSheet, err := in.EnsureLogSheet(ctx, wb, report)
	if err != nil {
		return report, err
	}
	if err := in.EnsureLogHeaders(ctx, logSheet, report); err != nil {
		return report, err
	}

	if err := wb.Flush(ctx); err != nil {
		return report, &StepError{Step: StepFlush, Cause: err}
	}

	in.logger.Info().
		Bool("changed", report.Changed()).
		Int("appended_headers", len(report.AppendedHeaders)).
		Int("repaired_log_cells", len(report.RepairedLogCells)).
		Msg("layout setup complete")
	return report, nil
}

// EnsureTimeZone sets the workbook timezone when it differs from the layout's.
func (in *Initializer) EnsureTimeZone(ctx context.Context, wb workbook.Workbook, report *Report) error {
	current, err := wb.TimeZone(ctx)
	if err != nil {
		return &StepError{Step: StepTimeZone, Cause: err}
	}

	report.TimeZone = in.layout.TimeZone
	report.PreviousTimeZone = current
	if current == in.layout.TimeZone {
		return nil
	}

	if err := wb.SetTimeZone(ctx, in.layout.TimeZone); err != nil {
		return &StepError{Step: StepTimeZone, Cause: err}
	}
	report.TimeZoneChanged = true
	in.logger.Info().
		Str("step", string(StepTimeZone)).
		Str("from", current).
		Str("to", in.layout.TimeZone).
		Msg("spreadsheet time zone set")
	return nil
}

// EnsureDataSheet returns the first existing sheet among the accepted names,
// creating one named after the first alias when none exists.
func (in *Initializer) EnsureDataSheet(ctx context.Context, wb workbook.Workbook, report *Report) (workbook.Sheet, error) {
	for _, name := range in.layout.DataSheetNames {
		sheet, ok, err := wb.Sheet(ctx, name)
		if err != nil {
			return nil, &StepError{Step: StepDataSheet, Cause: err}
		}
		if ok {
			report.DataSheet = sheet.Name()
			return sheet, nil
		}
	}

	if len(in.layout.DataSheetNames) == 0 {
		return nil, &Error{Message: "data_sheet_names is empty"}
	}
	name := in.layout.DataSheetNames[0]
	in.logger.Info().
		Str("step", string(StepDataSheet)).
		Str("sheet", name).
		Msg("no data sheet found; creating it")
	sheet, err := wb.InsertSheet(ctx, name)
	if err != nil {
		return nil, &StepError{Step: StepDataSheet, Cause: err}
	}
	report.DataSheet = sheet.Name()
	report.DataSheetCreated = true
	return sheet, nil
}

// EnsureHeaders appends every missing required header to the right of the
// existing columns and returns the resulting lookup table. Existing headers
// are never moved or rewritten.
func (in *Initializer) EnsureHeaders(ctx context.Context, sheet workbook.Sheet, report *Report) (HeaderMap, error) {
	lastCol, err := sheet.LastColumn(ctx)
	if err != nil {
		return nil, &StepError{Step: StepHeaders, Cause: err}
	}
	rows, err := sheet.Values(ctx, workbook.NewRange(1, 1, 1, lastCol))
	if err != nil {
		return nil, &StepError{Step: StepHeaders, Cause: err}
	}

	var row []string
	if len(rows) > 0 {
		row = rows[0]
	}
	headers := BuildHeaderMap(row)
	// An empty sheet reads as one blank cell, so appends start at column B.
	lastCol = max(len(row), 1)

	for _, header := range in.layout.RequiredHeaders {
		if headers.Has(header) {
			continue
		}
		col := lastCol + 1
		if err := sheet.SetValue(ctx, 1, col, header); err != nil {
			return nil, &StepError{Step: StepHeaders, Cause: err}
		}
		headers.set(header, col)
		lastCol = col
		report.AppendedHeaders = append(report.AppendedHeaders, AppendedHeader{Header: header, Column: col})
		in.logger.Info().
			Str("step", string(StepHeaders)).
			Str("sheet", sheet.Name()).
			Str("header", header).
			Str("column", workbook.ColumnName(col)).
			Msg("header added")
	}

	return headers, nil
}

// EnsurePipelineValidation attaches the pipeline dropdown to every data row of
// the pipeline column. A missing column is skipped.
func (in *Initializer) EnsurePipelineValidation(ctx context.Context, sheet workbook.Sheet, headers HeaderMap, report *Report) error {
	col, ok := headers.Column(in.layout.PipelineHeader)
	if !ok {
		reason := fmt.Sprintf("%s column not found; skipping validation", in.layout.PipelineHeader)
		report.skip(StepPipelineValidation, reason)
		in.logger.Info().
			Str("step", string(StepPipelineValidation)).
			Bool("skipped", true).
			Msg(reason)
		return nil
	}

	maxRows, err := sheet.MaxRows(ctx)
	if err != nil {
		return &StepError{Step: StepPipelineValidation, Cause: err}
	}

	rule := workbook.ValidationRule{
		Values:       in.layout.DropdownValues(),
		AllowInvalid: false,
	}
	if err := sheet.SetDataValidation(ctx, workbook.ColumnRange(col, maxRows), rule); err != nil {
		return &StepError{Step: StepPipelineValidation, Cause: err}
	}

	report.ValidationColumn = col
	report.ValidationValues = rule.Values
	return nil
}

// FormatColumns applies timestamp, count, checkbox and plain-text formats to
// the data rows of their columns. Columns absent from the sheet are skipped
// and never created.
func (in *Initializer) FormatColumns(ctx context.Context, sheet workbook.Sheet, headers HeaderMap, report *Report) error {
	maxRows, err := sheet.MaxRows(ctx)
	if err != nil {
		return &StepError{Step: StepFormatColumns, Cause: err}
	}

	dateTime := workbook.NumberFormat{Kind: workbook.FormatDateTime, Pattern: in.layout.DateTimeFormat}
	for _, header := range in.layout.DateColumns {
		if err := in.formatColumn(ctx, sheet, headers, header, dateTime, maxRows, report); err != nil {
			return err
		}
	}

	if in.layout.CountColumn != "" {
		count := workbook.NumberFormat{Kind: workbook.FormatNumber, Pattern: in.layout.CountFormat}
		if err := in.formatColumn(ctx, sheet, headers, in.layout.CountColumn, count, maxRows, report); err != nil {
			return err
		}
	}

	for _, header := range in.layout.CheckboxColumns {
		col, ok := in.resolve(headers, header, report)
		if !ok {
			continue
		}
		if err := sheet.InsertCheckboxes(ctx, workbook.ColumnRange(col, maxRows)); err != nil {
			return &StepError{Step: StepFormatColumns, Cause: err}
		}
		report.Formatted = append(report.Formatted, FormattedColumn{Header: header, Column: col, Format: "checkbox"})
	}

	if in.layout.PhoneColumn != "" {
		text := workbook.NumberFormat{Kind: workbook.FormatText, Pattern: textFormat}
		if err := in.formatColumn(ctx, sheet, headers, in.layout.PhoneColumn, text, maxRows, report); err != nil {
			return err
		}
	}

	return nil
}

func (in *Initializer) formatColumn(ctx context.Context, sheet workbook.Sheet, headers HeaderMap, header string, format workbook.NumberFormat, maxRows int, report *Report) error {
	col, ok := in.resolve(headers, header, report)
	if !ok {
		return nil
	}
	if err := sheet.SetNumberFormat(ctx, workbook.ColumnRange(col, maxRows), format); err != nil {
		return &StepError{Step: StepFormatColumns, Cause: err}
	}
	report.Formatted = append(report.Formatted, FormattedColumn{Header: header, Column: col, Format: format.Pattern})
	return nil
}

func (in *Initializer) resolve(headers HeaderMap, header string, report *Report) (int, bool) {
	col, ok := headers.Column(header)
	if !ok {
		report.skip(StepFormatColumns, fmt.Sprintf("%s column not found", header))
		in.logger.Info().
			Str("step", string(StepFormatColumns)).
			Str("header", header).
			Bool("skipped", true).
			Msg("column not found")
	}
	return col, ok
}

// EnsureLogSheet returns the log sheet, creating it when absent.
func (in *Initializer) EnsureLogSheet(ctx context.Context, wb workbook.Workbook, report *Report) (workbook.Sheet, error) {
	sheet, ok, err := wb.Sheet(ctx, in.layout.LogSheetName)
	if err != nil {
		return nil, &StepError{Step: StepLogSheet, Cause: err}
	}
	if !ok {
		sheet, err = wb.InsertSheet(ctx, in.layout.LogSheetName)
		if err != nil {
			return nil, &StepError{Step: StepLogSheet, Cause: err}
		}
		report.LogSheetCreated = true
		in.logger.Info().
			Str("step", string(StepLogSheet)).
			Str("sheet", in.layout.LogSheetName).
			Msg("log sheet created")
	}
	report.LogSheet = sheet.Name()
	return sheet, nil
}

// EnsureLogHeaders rewrites only the log header cells that differ from the
// fixed header list, freezes the header row and formats the timestamp
// columns.
func (in *Initializer) EnsureLogHeaders(ctx context.Context, sheet workbook.Sheet, report *Report) error {
	expected := in.layout.LogHeaders
	rows, err := sheet.Values(ctx, workbook.NewRange(1, 1, 1, len(expected)))
	if err != nil {
		return &StepError{Step: StepLogHeaders, Cause: err}
	}

	var row []string
	if len(rows) > 0 {
		row = rows[0]
	}
	for i, header := range expected {
		var current string
		if i < len(row) {
			current = row[i]
		}
		if current == header {
			continue
		}
		if err := sheet.SetValue(ctx, 1, i+1, header); err != nil {
			return &StepError{Step: StepLogHeaders, Cause: err}
		}
		report.RepairedLogCells = append(report.RepairedLogCells, RepairedCell{Column: i + 1, Was: current, Now: header})
	}
	if n := len(report.RepairedLogCells); n > 0 {
		in.logger.Info().
			Str("step", string(StepLogHeaders)).
			Str("sheet", sheet.Name()).
			Int("cells", n).
			Msg("log headers written")
	}

	if err := sheet.SetFrozenRows(ctx, 1); err != nil {
		return &StepError{Step: StepLogHeaders, Cause: err}
	}

	maxRows, err := sheet.MaxRows(ctx)
	if err != nil {
		return &StepError{Step: StepLogHeaders, Cause: err}
	}
	dateTime := workbook.NumberFormat{Kind: workbook.FormatDateTime, Pattern: in.layout.DateTimeFormat}
	for _, col := range in.layout.LogDateColumns() {
		if err := sheet.SetNumberFormat(ctx, workbook.ColumnRange(col, maxRows), dateTime); err != nil {
			return &StepError{Step: StepLogHeaders, Cause: err}
		}
	}
	return nil
}

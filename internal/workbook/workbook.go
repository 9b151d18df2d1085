// Package workbook defines the spreadsheet host contract driven by the layout
// initializer, plus an in-memory host and a dry-run decorator over any host.
package workbook

import (
	"context"
	"fmt"
	"strings"
)

// DefaultGridRows is the row count of a freshly created grid on hosts that do
// not track one themselves (matches the Google Sheets default).
const DefaultGridRows = 1000

// Workbook is the top-level spreadsheet container.
type Workbook interface {
	// TimeZone returns the workbook timezone (IANA name).
	TimeZone(ctx context.Context) (string, error)
	// SetTimeZone replaces the workbook timezone.
	SetTimeZone(ctx context.Context, tz string) error
	// Sheet finds a sheet by exact name. The bool reports whether it exists.
	Sheet(ctx context.Context, name string) (Sheet, bool, error)
	// InsertSheet creates a new empty sheet.
	InsertSheet(ctx context.Context, name string) (Sheet, error)
	// Flush makes every pending mutation visible to outside readers.
	Flush(ctx context.Context) error
}

// Sheet is a named 2-D grid of cells. Rows and columns are 1-based.
type Sheet interface {
	Name() string
	// LastColumn returns the position of the last column holding content, or 0
	// for an empty sheet.
	LastColumn(ctx context.Context) (int, error)
	// MaxRows returns the grid height, including the header row.
	MaxRows(ctx context.Context) (int, error)
	// Values reads a rectangular range. The result always has r.NumRows rows
	// of r.NumCols cells; missing cells are empty strings.
	Values(ctx context.Context, r Range) ([][]string, error)
	SetValue(ctx context.Context, row, col int, value string) error
	SetDataValidation(ctx context.Context, r Range, rule ValidationRule) error
	SetNumberFormat(ctx context.Context, r Range, format NumberFormat) error
	InsertCheckboxes(ctx context.Context, r Range) error
	SetFrozenRows(ctx context.Context, n int) error
}

// Range is a rectangular block of cells anchored at (Row, Col).
type Range struct {
	Row     int
	Col     int
	NumRows int
	NumCols int
}

// NewRange builds a range, clamping every dimension to at least one cell so a
// host is never asked for a zero-size block.
func NewRange(row, col, numRows, numCols int) Range {
	return Range{
		Row:     max(row, 1),
		Col:     max(col, 1),
		NumRows: max(numRows, 1),
		NumCols: max(numCols, 1),
	}
}

// DataRows returns the number of rows below the header for a grid of maxRows,
// never less than one.
func DataRows(maxRows int) int {
	return max(maxRows-1, 1)
}

// ColumnRange covers every data row (row 2 onward) of a single column.
func ColumnRange(col, maxRows int) Range {
	return NewRange(2, col, DataRows(maxRows), 1)
}

// LastRow returns the last row covered by the range.
func (r Range) LastRow() int {
	return r.Row + r.NumRows - 1
}

// LastCol returns the last column covered by the range.
func (r Range) LastCol() int {
	return r.Col + r.NumCols - 1
}

// Contains reports whether the cell lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.Row && row <= r.LastRow() && col >= r.Col && col <= r.LastCol()
}

// A1 renders the range in A1 notation, e.g. "B2:B1000". Single cells render
// without the colon.
func (r Range) A1() string {
	start := CellName(r.Row, r.Col)
	if r.NumRows == 1 && r.NumCols == 1 {
		return start
	}
	return start + ":" + CellName(r.LastRow(), r.LastCol())
}

func (r Range) String() string {
	return r.A1()
}

// ColumnName converts a 1-based column position to its letter name
// (1 -> "A", 27 -> "AA").
func ColumnName(col int) string {
	if col < 1 {
		return ""
	}
	var sb []byte
	for col > 0 {
		col--
		sb = append(sb, byte('A'+col%26))
		col /= 26
	}
	for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
		sb[i], sb[j] = sb[j], sb[i]
	}
	return string(sb)
}

// CellName renders a single cell reference, e.g. (1, 3) -> "C1".
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}

// QuoteSheetName renders a sheet name for use in an A1 reference.
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// ValidationRule restricts cell entries to a closed list of values.
type ValidationRule struct {
	Values       []string
	AllowInvalid bool
}

// FormatKind classifies a number format.
type FormatKind string

const (
	// FormatDateTime renders a serial date as a date and time.
	FormatDateTime FormatKind = "DATE_TIME"
	// FormatNumber renders a plain number.
	FormatNumber FormatKind = "NUMBER"
	// FormatText keeps entries as literal text.
	FormatText FormatKind = "TEXT"
)

// NumberFormat is a display format applied to a range.
type NumberFormat struct {
	Kind    FormatKind
	Pattern string
}

func (f NumberFormat) String() string {
	return fmt.Sprintf("%s %q", f.Kind, f.Pattern)
}

package workbook

import (
	"context"
	"fmt"
	"strconv"
)

// Memory is a Workbook held entirely in memory. Every mutation is recorded in
// an op journal so callers can assert exactly which writes happened.
type Memory struct {
	timeZone string
	sheets   []*MemorySheet
	journal  *journal
	failures map[OpKind]error
}

// NewMemory creates an empty in-memory workbook with the given timezone.
func NewMemory(timeZone string) *Memory {
	return &Memory{
		timeZone: timeZone,
		journal:  &journal{},
		failures: make(map[OpKind]error),
	}
}

// AddSheet seeds a sheet with rows of cell values without journaling it.
func (m *Memory) AddSheet(name string, rows ...[]string) *MemorySheet {
	s := newMemorySheet(m, name)
	for i, row := range rows {
		for j, v := range row {
			s.put(i+1, j+1, v)
		}
	}
	m.sheets = append(m.sheets, s)
	return s
}

// FailOn makes every subsequent op of the given kind return err.
func (m *Memory) FailOn(kind OpKind, err error) {
	m.failures[kind] = err
}

// Ops returns the recorded mutations in call order.
func (m *Memory) Ops() []Op {
	return m.journal.snapshot()
}

// ResetOps clears the journal.
func (m *Memory) ResetOps() {
	m.journal.ops = nil
}

// SheetNames lists sheets in creation order.
func (m *Memory) SheetNames() []string {
	names := make([]string, 0, len(m.sheets))
	for _, s := range m.sheets {
		names = append(names, s.name)
	}
	return names
}

// Lookup returns the named sheet for inspection.
func (m *Memory) Lookup(name string) *MemorySheet {
	for _, s := range m.sheets {
		if s.name == name {
			return s
		}
	}
	return nil
}

func (m *Memory) fail(kind OpKind, sheet string) error {
	if err, ok := m.failures[kind]; ok {
		return &HostError{Op: string(kind), Sheet: sheet, Cause: err}
	}
	return nil
}

// TimeZone returns the workbook timezone.
func (m *Memory) TimeZone(_ context.Context) (string, error) {
	return m.timeZone, nil
}

// SetTimeZone replaces the workbook timezone.
func (m *Memory) SetTimeZone(_ context.Context, tz string) error {
	if err := m.fail(OpSetTimeZone, ""); err != nil {
		return err
	}
	m.timeZone = tz
	m.journal.record(Op{Kind: OpSetTimeZone, Value: tz})
	return nil
}

// Sheet finds a sheet by exact name.
func (m *Memory) Sheet(_ context.Context, name string) (Sheet, bool, error) {
	if s := m.Lookup(name); s != nil {
		return s, true, nil
	}
	return nil, false, nil
}

// InsertSheet creates an empty sheet. Names must be unique.
func (m *Memory) InsertSheet(_ context.Context, name string) (Sheet, error) {
	if err := m.fail(OpInsertSheet, name); err != nil {
		return nil, err
	}
	if m.Lookup(name) != nil {
		return nil, &HostError{Op: string(OpInsertSheet), Sheet: name, Cause: fmt.Errorf("sheet already exists")}
	}
	s := newMemorySheet(m, name)
	m.sheets = append(m.sheets, s)
	m.journal.record(Op{Kind: OpInsertSheet, Sheet: name})
	return s, nil
}

// Flush records a flush; memory mutations are always visible.
func (m *Memory) Flush(_ context.Context) error {
	if err := m.fail(OpFlush, ""); err != nil {
		return err
	}
	m.journal.record(Op{Kind: OpFlush})
	return nil
}

// RangeValidation is a validation rule attached to a range.
type RangeValidation struct {
	Range    Range
	Rule     ValidationRule
	Checkbox bool
}

// RangeFormat is a number format attached to a range.
type RangeFormat struct {
	Range  Range
	Format NumberFormat
}

// MemorySheet is a sheet of a Memory workbook.
type MemorySheet struct {
	wb          *Memory
	name        string
	cells       map[[2]int]string
	maxRows     int
	frozenRows  int
	validations []RangeValidation
	formats     []RangeFormat
}

func newMemorySheet(wb *Memory, name string) *MemorySheet {
	return &MemorySheet{
		wb:      wb,
		name:    name,
		cells:   make(map[[2]int]string),
		maxRows: DefaultGridRows,
	}
}

func (s *MemorySheet) put(row, col int, v string) {
	if v == "" {
		delete(s.cells, [2]int{row, col})
		return
	}
	s.cells[[2]int{row, col}] = v
	if row > s.maxRows {
		s.maxRows = row
	}
}

// SetMaxRows overrides the grid height.
func (s *MemorySheet) SetMaxRows(n int) {
	s.maxRows = n
}

// Cell returns a single cell value.
func (s *MemorySheet) Cell(row, col int) string {
	return s.cells[[2]int{row, col}]
}

// Row returns a row trimmed of trailing empty cells.
func (s *MemorySheet) Row(row int) []string {
	last := 0
	for k := range s.cells {
		if k[0] == row && k[1] > last {
			last = k[1]
		}
	}
	out := make([]string, last)
	for c := 1; c <= last; c++ {
		out[c-1] = s.Cell(row, c)
	}
	return out
}

// FrozenRows returns the frozen header row count.
func (s *MemorySheet) FrozenRows() int {
	return s.frozenRows
}

// Validations returns attached validation rules.
func (s *MemorySheet) Validations() []RangeValidation {
	return append([]RangeValidation(nil), s.validations...)
}

// Formats returns attached number formats.
func (s *MemorySheet) Formats() []RangeFormat {
	return append([]RangeFormat(nil), s.formats...)
}

// ValidationAt returns the rule covering a cell, if any.
func (s *MemorySheet) ValidationAt(row, col int) (RangeValidation, bool) {
	for i := len(s.validations) - 1; i >= 0; i-- {
		if s.validations[i].Range.Contains(row, col) {
			return s.validations[i], true
		}
	}
	return RangeValidation{}, false
}

// FormatAt returns the number format covering a cell, if any.
func (s *MemorySheet) FormatAt(row, col int) (NumberFormat, bool) {
	for i := len(s.formats) - 1; i >= 0; i-- {
		if s.formats[i].Range.Contains(row, col) {
			return s.formats[i].Format, true
		}
	}
	return NumberFormat{}, false
}

// Name returns the sheet name.
func (s *MemorySheet) Name() string {
	return s.name
}

// LastColumn returns the last column holding content.
func (s *MemorySheet) LastColumn(_ context.Context) (int, error) {
	last := 0
	for k := range s.cells {
		if k[1] > last {
			last = k[1]
		}
	}
	return last, nil
}

// MaxRows returns the grid height.
func (s *MemorySheet) MaxRows(_ context.Context) (int, error) {
	return s.maxRows, nil
}

// Values reads a rectangular range.
func (s *MemorySheet) Values(_ context.Context, r Range) ([][]string, error) {
	out := make([][]string, r.NumRows)
	for i := range out {
		out[i] = make([]string, r.NumCols)
		for j := range out[i] {
			out[i][j] = s.Cell(r.Row+i, r.Col+j)
		}
	}
	return out, nil
}

// SetValue writes a single cell.
func (s *MemorySheet) SetValue(_ context.Context, row, col int, value string) error {
	if err := s.wb.fail(OpSetValue, s.name); err != nil {
		return err
	}
	s.put(row, col, value)
	s.wb.journal.record(Op{Kind: OpSetValue, Sheet: s.name, Range: NewRange(row, col, 1, 1), Value: value})
	return nil
}

// SetDataValidation attaches a list rule, replacing any rule on the same range.
func (s *MemorySheet) SetDataValidation(_ context.Context, r Range, rule ValidationRule) error {
	if err := s.wb.fail(OpSetValidation, s.name); err != nil {
		return err
	}
	rule.Values = append([]string(nil), rule.Values...)
	s.attachValidation(RangeValidation{Range: r, Rule: rule})
	s.wb.journal.record(Op{Kind: OpSetValidation, Sheet: s.name, Range: r, Values: rule.Values})
	return nil
}

// InsertCheckboxes attaches a boolean checkbox rule to the range.
func (s *MemorySheet) InsertCheckboxes(_ context.Context, r Range) error {
	if err := s.wb.fail(OpInsertCheckboxes, s.name); err != nil {
		return err
	}
	s.attachValidation(RangeValidation{Range: r, Checkbox: true})
	s.wb.journal.record(Op{Kind: OpInsertCheckboxes, Sheet: s.name, Range: r})
	return nil
}

func (s *MemorySheet) attachValidation(v RangeValidation) {
	for i := range s.validations {
		if s.validations[i].Range == v.Range {
			s.validations[i] = v
			return
		}
	}
	s.validations = append(s.validations, v)
}

// SetNumberFormat attaches a format, replacing any format on the same range.
func (s *MemorySheet) SetNumberFormat(_ context.Context, r Range, format NumberFormat) error {
	if err := s.wb.fail(OpSetNumberFormat, s.name); err != nil {
		return err
	}
	s.wb.journal.record(Op{Kind: OpSetNumberFormat, Sheet: s.name, Range: r, Format: format})
	for i := range s.formats {
		if s.formats[i].Range == r {
			s.formats[i].Format = format
			return nil
		}
	}
	s.formats = append(s.formats, RangeFormat{Range: r, Format: format})
	return nil
}

// SetFrozenRows freezes the top n rows.
func (s *MemorySheet) SetFrozenRows(_ context.Context, n int) error {
	if err := s.wb.fail(OpSetFrozenRows, s.name); err != nil {
		return err
	}
	s.frozenRows = n
	s.wb.journal.record(Op{Kind: OpSetFrozenRows, Sheet: s.name, Value: strconv.Itoa(n)})
	return nil
}

package workbook

import (
	"context"
	"strconv"
)

// DryRunWorkbook wraps a host so reads pass through while mutations are only
// recorded. Sheets that would be created are simulated in memory.
type DryRunWorkbook struct {
	inner    Workbook
	journal  *journal
	timeZone string
	tzSet    bool
	scratch  *Memory
}

// DryRun wraps wb. Nothing written through the returned workbook reaches wb.
func DryRun(wb Workbook) *DryRunWorkbook {
	return &DryRunWorkbook{
		inner:   wb,
		journal: &journal{},
		scratch: NewMemory(""),
	}
}

// Planned returns the mutations that would have been applied.
func (d *DryRunWorkbook) Planned() []Op {
	return d.journal.snapshot()
}

// TimeZone returns the planned timezone if one was set, else the host's.
func (d *DryRunWorkbook) TimeZone(ctx context.Context) (string, error) {
	if d.tzSet {
		return d.timeZone, nil
	}
	return d.inner.TimeZone(ctx)
}

// SetTimeZone records the change.
func (d *DryRunWorkbook) SetTimeZone(_ context.Context, tz string) error {
	d.timeZone, d.tzSet = tz, true
	d.journal.record(Op{Kind: OpSetTimeZone, Value: tz})
	return nil
}

// Sheet finds a sheet on the host, falling back to simulated sheets.
func (d *DryRunWorkbook) Sheet(ctx context.Context, name string) (Sheet, bool, error) {
	if s := d.scratch.Lookup(name); s != nil {
		return &dryRunSheet{inner: s, journal: d.journal}, true, nil
	}
	s, ok, err := d.inner.Sheet(ctx, name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &dryRunSheet{inner: s, journal: d.journal}, true, nil
}

// InsertSheet records the insert and returns an empty simulated sheet.
func (d *DryRunWorkbook) InsertSheet(_ context.Context, name string) (Sheet, error) {
	s := d.scratch.AddSheet(name)
	d.journal.record(Op{Kind: OpInsertSheet, Sheet: name})
	return &dryRunSheet{inner: s, journal: d.journal}, nil
}

// Flush is recorded but never forwarded.
func (d *DryRunWorkbook) Flush(_ context.Context) error {
	d.journal.record(Op{Kind: OpFlush})
	return nil
}

type dryRunSheet struct {
	inner   Sheet
	journal *journal
}

func (s *dryRunSheet) Name() string { return s.inner.Name() }

func (s *dryRunSheet) LastColumn(ctx context.Context) (int, error) {
	return s.inner.LastColumn(ctx)
}

func (s *dryRunSheet) MaxRows(ctx context.Context) (int, error) {
	return s.inner.MaxRows(ctx)
}

func (s *dryRunSheet) Values(ctx context.Context, r Range) ([][]string, error) {
	return s.inner.Values(ctx, r)
}

func (s *dryRunSheet) SetValue(_ context.Context, row, col int, value string) error {
	s.journal.record(Op{Kind: OpSetValue, Sheet: s.Name(), Range: NewRange(row, col, 1, 1), Value: value})
	return nil
}

func (s *dryRunSheet) SetDataValidation(_ context.Context, r Range, rule ValidationRule) error {
	s.journal.record(Op{Kind: OpSetValidation, Sheet: s.Name(), Range: r, Values: rule.Values})
	return nil
}

func (s *dryRunSheet) SetNumberFormat(_ context.Context, r Range, format NumberFormat) error {
	s.journal.record(Op{Kind: OpSetNumberFormat, Sheet: s.Name(), Range: r, Format: format})
	return nil
}

func (s *dryRunSheet) InsertCheckboxes(_ context.Context, r Range) error {
	s.journal.record(Op{Kind: OpInsertCheckboxes, Sheet: s.Name(), Range: r})
	return nil
}

func (s *dryRunSheet) SetFrozenRows(_ context.Context, n int) error {
	s.journal.record(Op{Kind: OpSetFrozenRows, Sheet: s.Name(), Value: strconv.Itoa(n)})
	return nil
}

package xlsx

import (
	"context"

	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// checkboxValues is the drop list standing in for checkboxes; xlsx has no
// checkbox cell type.
var checkboxValues = []string{"TRUE", "FALSE"}

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	wb   *Workbook
	name string
}

// Name returns the worksheet name.
func (s *Sheet) Name() string {
	return s.name
}

func (s *Sheet) hostErr(op string, err error) error {
	return &workbook.HostError{Op: op, Sheet: s.name, Cause: err}
}

// LastColumn returns the last column holding a non-empty cell in any row.
func (s *Sheet) LastColumn(_ context.Context) (int, error) {
	rows, err := s.wb.f.GetRows(s.name)
	if err != nil {
		return 0, s.hostErr("read rows", err)
	}
	last := 0
	for _, row := range rows {
		last = max(last, len(trimTrailing(row)))
	}
	return last, nil
}

// MaxRows reports the used row count, but never less than a default grid.
// xlsx sheets have no fixed height.
func (s *Sheet) MaxRows(_ context.Context) (int, error) {
	rows, err := s.wb.f.GetRows(s.name)
	if err != nil {
		return 0, s.hostErr("read rows", err)
	}
	return max(len(rows), workbook.DefaultGridRows), nil
}

// Values reads a range as formatted cell text.
func (s *Sheet) Values(_ context.Context, r workbook.Range) ([][]string, error) {
	out := make([][]string, r.NumRows)
	for i := range out {
		out[i] = make([]string, r.NumCols)
		for j := range out[i] {
			v, err := s.wb.f.GetCellValue(s.name, workbook.CellName(r.Row+i, r.Col+j))
			if err != nil {
				return nil, s.hostErr("read values", err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// SetValue writes a string cell.
func (s *Sheet) SetValue(_ context.Context, row, col int, value string) error {
	if err := s.wb.f.SetCellStr(s.name, workbook.CellName(row, col), value); err != nil {
		return s.hostErr("set value", err)
	}
	return nil
}

// SetDataValidation restricts the range to rule.Values. The list lives on the
// hidden list sheet because inline lists are capped at 255 characters.
func (s *Sheet) SetDataValidation(_ context.Context, r workbook.Range, rule workbook.ValidationRule) error {
	ref, err := s.wb.listRange(rule.Values)
	if err != nil {
		return s.hostErr("write list values", err)
	}

	dv := excelize.NewDataValidation(true)
	dv.Sqref = r.A1()
	dv.SetSqrefDropList(ref)
	dv.ShowErrorMessage = !rule.AllowInvalid
	return s.replaceValidation("set validation", r, dv)
}

// InsertCheckboxes limits the range to TRUE/FALSE.
func (s *Sheet) InsertCheckboxes(_ context.Context, r workbook.Range) error {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = r.A1()
	if err := dv.SetDropList(checkboxValues); err != nil {
		return s.hostErr("insert checkboxes", err)
	}
	dv.ShowErrorMessage = true
	return s.replaceValidation("insert checkboxes", r, dv)
}

// replaceValidation drops any rule on exactly r before adding dv, so repeated
// runs leave a single rule per range.
func (s *Sheet) replaceValidation(op string, r workbook.Range, dv *excelize.DataValidation) error {
	if err := s.wb.f.DeleteDataValidation(s.name, r.A1()); err != nil {
		return s.hostErr(op, err)
	}
	if err := s.wb.f.AddDataValidation(s.name, dv); err != nil {
		return s.hostErr(op, err)
	}
	return nil
}

// SetNumberFormat applies a custom number format style to the range.
func (s *Sheet) SetNumberFormat(_ context.Context, r workbook.Range, f workbook.NumberFormat) error {
	id, err := s.wb.style(f.Pattern)
	if err != nil {
		return s.hostErr("set number format", err)
	}
	top := workbook.CellName(r.Row, r.Col)
	bottom := workbook.CellName(r.LastRow(), r.LastCol())
	if err := s.wb.f.SetCellStyle(s.name, top, bottom, id); err != nil {
		return s.hostErr("set number format", err)
	}
	return nil
}

// SetFrozenRows freezes the top n rows; n <= 0 removes the freeze.
func (s *Sheet) SetFrozenRows(_ context.Context, n int) error {
	panes := &excelize.Panes{}
	if n > 0 {
		topLeft := workbook.CellName(n+1, 1)
		panes = &excelize.Panes{
			Freeze:      true,
			YSplit:      n,
			TopLeftCell: topLeft,
			ActivePane:  "bottomLeft",
			Selection: []excelize.Selection{
				{SQRef: topLeft, ActiveCell: topLeft, Pane: "bottomLeft"},
			},
		}
	}
	if err := s.wb.f.SetPanes(s.name, panes); err != nil {
		return s.hostErr("set frozen rows", err)
	}
	return nil
}

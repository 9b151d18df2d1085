// Package xlsx implements the workbook host contract on a local .xlsx file
// using excelize. Changes are held in memory and written on Flush.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	// TimeZoneProperty is the custom document property holding the workbook
	// timezone. xlsx has no native timezone setting.
	TimeZoneProperty = "TimeZone"
	// ListSheet is the hidden sheet backing list validations.
	ListSheet = "_Lists"
)

// Workbook is an .xlsx file opened for layout setup.
type Workbook struct {
	f      *excelize.File
	path   string
	logger zerolog.Logger

	// fresh is set while the default sheet of a newly created file is still
	// unused, so the first inserted sheet can take its place.
	fresh  bool
	styles map[string]int
}

// Open opens the workbook at path, or starts a new one when the file does
// not exist yet. Nothing is written until Flush.
func Open(path string, logger zerolog.Logger) (*Workbook, error) {
	if path == "" {
		return nil, fmt.Errorf("xlsx path is required")
	}

	wb := &Workbook{
		path:   path,
		logger: logger,
		styles: make(map[string]int),
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		wb.f = excelize.NewFile()
		wb.fresh = true
		logger.Debug().Str("path", path).Msg("creating new workbook")
		return wb, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &workbook.HostError{Op: "open workbook", Cause: err}
	}
	wb.f = f
	logger.Debug().Str("path", path).Int("sheets", len(f.GetSheetList())).Msg("workbook opened")
	return wb, nil
}

// Path returns the file the workbook is saved to.
func (w *Workbook) Path() string {
	return w.path
}

// Close releases the underlying file. Unflushed changes are discarded.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// TimeZone reads the timezone custom property, or "" when it is unset.
func (w *Workbook) TimeZone(_ context.Context) (string, error) {
	props, err := w.f.GetCustomProps()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &workbook.HostError{Op: "read properties", Cause: err}
	}
	for _, p := range props {
		if p.Name == TimeZoneProperty {
			if s, ok := p.Value.(string); ok {
				return s, nil
			}
		}
	}
	return "", nil
}

// SetTimeZone stores the timezone custom property.
func (w *Workbook) SetTimeZone(_ context.Context, tz string) error {
	err := w.f.SetCustomProps(excelize.CustomProperty{Name: TimeZoneProperty, Value: tz})
	if err != nil {
		return &workbook.HostError{Op: "set time zone", Cause: err}
	}
	return nil
}

// Sheet finds a sheet by exact, case-sensitive name.
func (w *Workbook) Sheet(_ context.Context, name string) (workbook.Sheet, bool, error) {
	if !slices.Contains(w.f.GetSheetList(), name) {
		return nil, false, nil
	}
	return &Sheet{wb: w, name: name}, true, nil
}

// InsertSheet adds a sheet. On a new file the unused default sheet is renamed
// instead, so the saved workbook carries no stray "Sheet1".
func (w *Workbook) InsertSheet(_ context.Context, name string) (workbook.Sheet, error) {
	if slices.Contains(w.f.GetSheetList(), name) {
		return nil, &workbook.HostError{Op: "insert sheet", Sheet: name, Cause: fmt.Errorf("sheet already exists")}
	}

	if w.fresh {
		w.fresh = false
		if list := w.f.GetSheetList(); len(list) == 1 {
			if err := w.f.SetSheetName(list[0], name); err != nil {
				return nil, &workbook.HostError{Op: "insert sheet", Sheet: name, Cause: err}
			}
			return &Sheet{wb: w, name: name}, nil
		}
	}

	if _, err := w.f.NewSheet(name); err != nil {
		return nil, &workbook.HostError{Op: "insert sheet", Sheet: name, Cause: err}
	}
	return &Sheet{wb: w, name: name}, nil
}

// Flush saves the workbook to its path.
func (w *Workbook) Flush(_ context.Context) error {
	if err := w.f.SaveAs(w.path); err != nil {
		return &workbook.HostError{Op: "save workbook", Cause: err}
	}
	w.logger.Debug().Str("path", w.path).Msg("workbook saved")
	return nil
}

// style returns a cached style id for a number format pattern.
func (w *Workbook) style(pattern string) (int, error) {
	if id, ok := w.styles[pattern]; ok {
		return id, nil
	}
	p := pattern
	id, err := w.f.NewStyle(&excelize.Style{CustomNumFmt: &p})
	if err != nil {
		return 0, err
	}
	w.styles[pattern] = id
	return id, nil
}

// listRange returns an absolute reference to a column of the hidden list
// sheet holding exactly values, writing a new column when none matches.
func (w *Workbook) listRange(values []string) (string, error) {
	if !slices.Contains(w.f.GetSheetList(), ListSheet) {
		if _, err := w.f.NewSheet(ListSheet); err != nil {
			return "", err
		}
		if err := w.f.SetSheetVisible(ListSheet, false); err != nil {
			return "", err
		}
	}

	cols, err := w.f.GetCols(ListSheet)
	if err != nil {
		return "", err
	}
	col := 0
	for i, existing := range cols {
		if slices.Equal(trimTrailing(existing), values) {
			col = i + 1
			break
		}
	}
	if col == 0 {
		col = len(cols) + 1
		for i, v := range values {
			if err := w.f.SetCellStr(ListSheet, workbook.CellName(i+1, col), v); err != nil {
				return "", err
			}
		}
	}

	name := workbook.ColumnName(col)
	return fmt.Sprintf("%s!$%s$1:$%s$%d", workbook.QuoteSheetName(ListSheet), name, name, max(len(values), 1)), nil
}

func trimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

package gsheets

import (
	"github.com/jonathan/hiring-hub/internal/workbook"
	"google.golang.org/api/sheets/v4"
)

// Sheets API enum values used by the request builders
const (
	conditionOneOfList = "ONE_OF_LIST"
	conditionBoolean   = "BOOLEAN"
	dimensionColumns   = "COLUMNS"
)

// gridRange converts a 1-based inclusive range to the API's 0-based
// half-open form. Zero indices must be forced or the client drops them.
func gridRange(sheetID int64, r workbook.Range) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(r.Row - 1),
		EndRowIndex:      int64(r.LastRow()),
		StartColumnIndex: int64(r.Col - 1),
		EndColumnIndex:   int64(r.LastCol()),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func setTimeZoneRequest(tz string) *sheets.Request {
	return &sheets.Request{
		UpdateSpreadsheetProperties: &sheets.UpdateSpreadsheetPropertiesRequest{
			Properties: &sheets.SpreadsheetProperties{TimeZone: tz},
			Fields:     "timeZone",
		},
	}
}

func addSheetRequest(title string) *sheets.Request {
	return &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: title},
		},
	}
}

// appendColumnsRequest adds n empty columns to the right of the grid.
func appendColumnsRequest(sheetID int64, n int) *sheets.Request {
	return &sheets.Request{
		AppendDimension: &sheets.AppendDimensionRequest{
			SheetId:         sheetID,
			Dimension:       dimensionColumns,
			Length:          int64(n),
			ForceSendFields: []string{"SheetId"},
		},
	}
}

// setValueRequest writes a string cell as entered, without parsing it as a
// number or date.
func setValueRequest(sheetID int64, row, col int, value string) *sheets.Request {
	v := value
	return &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Start: &sheets.GridCoordinate{
				SheetId:         sheetID,
				RowIndex:        int64(row - 1),
				ColumnIndex:     int64(col - 1),
				ForceSendFields: []string{"SheetId", "RowIndex", "ColumnIndex"},
			},
			Rows: []*sheets.RowData{{
				Values: []*sheets.CellData{{
					UserEnteredValue: &sheets.ExtendedValue{StringValue: &v},
				}},
			}},
			Fields: "userEnteredValue",
		},
	}
}

func listValidationRequest(sheetID int64, r workbook.Range, rule workbook.ValidationRule) *sheets.Request {
	values := make([]*sheets.ConditionValue, 0, len(rule.Values))
	for _, v := range rule.Values {
		values = append(values, &sheets.ConditionValue{UserEnteredValue: v})
	}
	return &sheets.Request{
		SetDataValidation: &sheets.SetDataValidationRequest{
			Range: gridRange(sheetID, r),
			Rule: &sheets.DataValidationRule{
				Condition: &sheets.BooleanCondition{
					Type:   conditionOneOfList,
					Values: values,
				},
				Strict:       !rule.AllowInvalid,
				ShowCustomUi: true,
			},
		},
	}
}

// checkboxRequest renders the range as checkboxes, which the API models as a
// BOOLEAN validation rule.
func checkboxRequest(sheetID int64, r workbook.Range) *sheets.Request {
	return &sheets.Request{
		SetDataValidation: &sheets.SetDataValidationRequest{
			Range: gridRange(sheetID, r),
			Rule: &sheets.DataValidationRule{
				Condition: &sheets.BooleanCondition{Type: conditionBoolean},
				Strict:    true,
			},
		},
	}
}

func numberFormatRequest(sheetID int64, r workbook.Range, f workbook.NumberFormat) *sheets.Request {
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: gridRange(sheetID, r),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{
						Type:    string(f.Kind),
						Pattern: f.Pattern,
					},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}
}

func frozenRowsRequest(sheetID int64, n int) *sheets.Request {
	return &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: sheetID,
				GridProperties: &sheets.GridProperties{
					FrozenRowCount:  int64(n),
					ForceSendFields: []string{"FrozenRowCount"},
				},
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}
}

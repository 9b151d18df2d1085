package gsheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/hiring-hub/internal/layout"
	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const testSpreadsheetID = "sheet-123"

// fakeSheetsAPI serves the few Sheets REST endpoints the client uses.
type fakeSheetsAPI struct {
	mu       sync.Mutex
	timeZone string
	sheets   []*sheets.SheetProperties
	// values maps a sheet title to its rows.
	values  map[string][][]interface{}
	batches []*sheets.BatchUpdateSpreadsheetRequest
	nextID  int64
}

func newFakeSheetsAPI() *fakeSheetsAPI {
	return &fakeSheetsAPI{
		timeZone: "Etc/GMT",
		values:   make(map[string][][]interface{}),
		nextID:   100,
	}
}

func (f *fakeSheetsAPI) addSheet(id int64, title string, rows ...[]interface{}) {
	f.sheets = append(f.sheets, &sheets.SheetProperties{
		SheetId:        id,
		Title:          title,
		GridProperties: &sheets.GridProperties{RowCount: 500, ColumnCount: 26},
	})
	f.values[title] = rows
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := "/v4/spreadsheets/" + testSpreadsheetID
	switch {
	case r.Method == http.MethodPost && r.URL.Path == prefix+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.batches = append(f.batches, &req)

		resp := sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: testSpreadsheetID}
		for _, sub := range req.Requests {
			reply := &sheets.Response{}
			if sub.AddSheet != nil {
				f.nextID++
				props := &sheets.SheetProperties{
					SheetId:        f.nextID,
					Title:          sub.AddSheet.Properties.Title,
					GridProperties: &sheets.GridProperties{RowCount: 1000, ColumnCount: 26},
				}
				f.sheets = append(f.sheets, props)
				reply.AddSheet = &sheets.AddSheetResponse{Properties: props}
			}
			if ad := sub.AppendDimension; ad != nil && ad.Dimension == dimensionColumns {
				for _, props := range f.sheets {
					if props.SheetId == ad.SheetId {
						props.GridProperties.ColumnCount += ad.Length
					}
				}
			}
			resp.Replies = append(resp.Replies, reply)
		}
		writeJSON(w, resp)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, prefix+"/values/"):
		rng := strings.TrimPrefix(r.URL.Path, prefix+"/values/")
		title := strings.Trim(strings.SplitN(rng, "!", 2)[0], "'")
		rows := f.values[title]
		if r.URL.Query().Get("majorDimension") == "COLUMNS" {
			rows = transpose(rows)
		}
		writeJSON(w, sheets.ValueRange{Range: rng, Values: rows})

	case r.Method == http.MethodGet && r.URL.Path == prefix:
		writeJSON(w, sheets.Spreadsheet{
			SpreadsheetId: testSpreadsheetID,
			Properties:    &sheets.SpreadsheetProperties{TimeZone: f.timeZone},
			Sheets:        f.sheetList(),
		})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheetsAPI) sheetList() []*sheets.Sheet {
	out := make([]*sheets.Sheet, 0, len(f.sheets))
	for _, p := range f.sheets {
		out = append(out, &sheets.Sheet{Properties: p})
	}
	return out
}

func (f *fakeSheetsAPI) requests() []*sheets.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*sheets.Request
	for _, b := range f.batches {
		out = append(out, b.Requests...)
	}
	return out
}

func transpose(rows [][]interface{}) [][]interface{} {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	cols := make([][]interface{}, width)
	for c := range cols {
		for _, row := range rows {
			if c < len(row) {
				cols[c] = append(cols[c], row[c])
			} else {
				cols[c] = append(cols[c], "")
			}
		}
	}
	return cols
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), testSpreadsheetID, zerolog.Nop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresSpreadsheetID(t *testing.T) {
	_, err := NewClient(context.Background(), "", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet ID is required")
}

func TestClient_LoadsSheetsAndTimeZone(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "Application")
	c := newTestClient(t, api)

	tz, err := c.TimeZone(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Etc/GMT", tz)

	s, ok, err := c.Sheet(ctx, "Application")
	require.NoError(t, err)
	require.True(t, ok)
	maxRows, err := s.MaxRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, maxRows)

	_, ok, err = c.Sheet(ctx, "Applications")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_QueuesUntilFlush(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "Application")
	c := newTestClient(t, api)

	require.NoError(t, c.SetTimeZone(ctx, "America/New_York"))
	s, _, err := c.Sheet(ctx, "Application")
	require.NoError(t, err)
	require.NoError(t, s.SetValue(ctx, 1, 3, "Error"))

	assert.Equal(t, 2, c.Pending())
	assert.Empty(t, api.requests())

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, 0, c.Pending())

	reqs := api.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "America/New_York", reqs[0].UpdateSpreadsheetProperties.Properties.TimeZone)
	require.NotNil(t, reqs[1].UpdateCells)
	assert.Equal(t, int64(0), reqs[1].UpdateCells.Start.RowIndex)
	assert.Equal(t, int64(2), reqs[1].UpdateCells.Start.ColumnIndex)
	assert.Equal(t, "Error", *reqs[1].UpdateCells.Rows[0].Values[0].UserEnteredValue.StringValue)

	require.NoError(t, c.Flush(ctx))
	assert.Len(t, api.requests(), 2, "empty flush must not send a batch")
}

func TestClient_InsertSheetUsesReplyID(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	c := newTestClient(t, api)

	s, err := c.InsertSheet(ctx, "Automation Log")
	require.NoError(t, err)
	assert.Equal(t, "Automation Log", s.Name())
	assert.Equal(t, int64(101), s.(*Sheet).ID())

	found, ok, err := c.Sheet(ctx, "Automation Log")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, found)
}

func TestSheet_ReadsPadValues(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "Application",
		[]interface{}{"Email Address", "Pipeline Progress"},
		[]interface{}{"a@example.com", "On Hold", "extra"},
	)
	c := newTestClient(t, api)
	s, _, err := c.Sheet(ctx, "Application")
	require.NoError(t, err)

	last, err := s.LastColumn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, last)

	rows, err := s.Values(ctx, workbook.NewRange(1, 1, 1, 4))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Email Address", "Pipeline Progress", "", ""}}, rows)
}

func TestClient_RunsLayoutSetup(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "Application", []interface{}{"Email Address", "Pipeline Progress", "Cell Phone Number"})
	c := newTestClient(t, api)

	report, err := layout.New(layout.Default(), zerolog.Nop()).Run(ctx, c)
	require.NoError(t, err)
	assert.True(t, report.LogSheetCreated)
	assert.Equal(t, 0, c.Pending())

	var (
		listRules     int
		checkboxRules int
		textFormats   int
		headerWrites  int
		frozen        bool
	)
	for _, req := range api.requests() {
		switch {
		case req.SetDataValidation != nil && req.SetDataValidation.Rule.Condition.Type == conditionOneOfList:
			listRules++
			rule := req.SetDataValidation.Rule
			assert.True(t, rule.Strict)
			assert.Len(t, rule.Condition.Values, 10)
			assert.Equal(t, int64(1), req.SetDataValidation.Range.StartColumnIndex)
			assert.Equal(t, int64(1), req.SetDataValidation.Range.StartRowIndex)
			assert.Equal(t, int64(500), req.SetDataValidation.Range.EndRowIndex)
		case req.SetDataValidation != nil:
			checkboxRules++
		case req.RepeatCell != nil && req.RepeatCell.Cell.UserEnteredFormat.NumberFormat.Type == string(workbook.FormatText):
			textFormats++
			assert.Equal(t, "@", req.RepeatCell.Cell.UserEnteredFormat.NumberFormat.Pattern)
		case req.UpdateCells != nil && req.UpdateCells.Start.SheetId == 0:
			headerWrites++
		case req.UpdateSheetProperties != nil:
			frozen = req.UpdateSheetProperties.Properties.GridProperties.FrozenRowCount == 1
		}
	}
	assert.Equal(t, 1, listRules)
	assert.Equal(t, 2, checkboxRules)
	assert.Equal(t, 1, textFormats)
	assert.Equal(t, 8, headerWrites)
	assert.True(t, frozen)
}

func TestClient_SheetIgnoresTitleCase(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "application")
	api.addSheet(1, "Automation Log")
	c := newTestClient(t, api)

	s, ok, err := c.Sheet(ctx, "Application")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "application", s.Name())

	report, err := layout.New(layout.Default(), zerolog.Nop()).Run(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "application", report.DataSheet)
	assert.False(t, report.LogSheetCreated)
	for _, req := range api.requests() {
		assert.Nil(t, req.AddSheet, "existing sheets must be reused")
	}
}

func TestSheet_SetValueGrowsGrid(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	full := make([]interface{}, 26)
	for i := range full {
		full[i] = fmt.Sprintf("Notes %d", i+1)
	}
	api.addSheet(0, "Application", full)
	c := newTestClient(t, api)

	report, err := layout.New(layout.Default(), zerolog.Nop()).Run(ctx, c)
	require.NoError(t, err)
	require.Len(t, report.AppendedHeaders, 8)
	assert.Equal(t, 27, report.AppendedHeaders[0].Column)

	columns := int64(26)
	appended := 0
	writes := 0
	for _, req := range api.requests() {
		if ad := req.AppendDimension; ad != nil {
			assert.Equal(t, int64(0), ad.SheetId)
			assert.Equal(t, dimensionColumns, ad.Dimension)
			columns += ad.Length
			appended++
		}
		if uc := req.UpdateCells; uc != nil && uc.Start.SheetId == 0 {
			assert.Less(t, uc.Start.ColumnIndex, columns, "column %d written before the grid grew", uc.Start.ColumnIndex+1)
			writes++
		}
	}
	assert.Equal(t, 8, writes)
	assert.Equal(t, 8, appended)
	assert.Equal(t, int64(34), columns)
	assert.Equal(t, int64(34), api.sheets[0].GridProperties.ColumnCount)
}

func TestSheet_SetValueGrowsGridOnlyPastLastColumn(t *testing.T) {
	ctx := context.Background()
	api := newFakeSheetsAPI()
	api.addSheet(0, "Application")
	c := newTestClient(t, api)
	s, _, err := c.Sheet(ctx, "Application")
	require.NoError(t, err)

	require.NoError(t, s.SetValue(ctx, 1, 26, "Notes"))
	require.NoError(t, s.SetValue(ctx, 1, 28, "More Notes"))
	require.NoError(t, s.SetValue(ctx, 1, 27, "Between"))
	require.NoError(t, c.Flush(ctx))

	reqs := api.requests()
	require.Len(t, reqs, 4)
	assert.NotNil(t, reqs[0].UpdateCells)
	require.NotNil(t, reqs[1].AppendDimension)
	assert.Equal(t, int64(2), reqs[1].AppendDimension.Length)
	assert.Equal(t, int64(27), reqs[2].UpdateCells.Start.ColumnIndex)
	assert.Equal(t, int64(26), reqs[3].UpdateCells.Start.ColumnIndex)
}

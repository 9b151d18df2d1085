// Package gsheets implements the workbook host contract on top of the Google
// Sheets API. Mutations are queued and sent as one batchUpdate on Flush.
package gsheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/hiring-hub/internal/workbook"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// defaultGridColumns is the column count of a new Sheets grid.
const defaultGridColumns = 26

// spreadsheetFields limits Spreadsheets.Get to what the host needs.
const spreadsheetFields = "spreadsheetId,properties.timeZone,sheets.properties(sheetId,title,gridProperties(rowCount,columnCount))"

// Client is a Google Sheets spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	logger        zerolog.Logger

	timeZone string
	sheets   []*Sheet
	pending  []*sheets.Request
}

// NewClient connects to a spreadsheet. Callers pass credentials as options,
// e.g. option.WithCredentialsFile.
func NewClient(ctx context.Context, spreadsheetID string, logger zerolog.Logger, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger,
	}
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClientFromCredentials connects using a service account or OAuth
// credentials JSON file.
func NewClientFromCredentials(ctx context.Context, spreadsheetID, credentialsPath string, logger zerolog.Logger) (*Client, error) {
	return NewClient(ctx, spreadsheetID, logger,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}

func (c *Client) load(ctx context.Context) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields(spreadsheetFields).Context(ctx).Do()
	if err != nil {
		return &workbook.HostError{Op: "get spreadsheet", Cause: err}
	}

	if ss.Properties != nil {
		c.timeZone = ss.Properties.TimeZone
	}
	c.sheets = c.sheets[:0]
	for _, s := range ss.Sheets {
		if s.Properties == nil {
			continue
		}
		c.sheets = append(c.sheets, c.newSheet(s.Properties))
	}
	c.logger.Debug().
		Str("spreadsheet_id", c.spreadsheetID).
		Int("sheets", len(c.sheets)).
		Str("time_zone", c.timeZone).
		Msg("spreadsheet loaded")
	return nil
}

func (c *Client) newSheet(props *sheets.SheetProperties) *Sheet {
	s := &Sheet{
		client:  c,
		id:      props.SheetId,
		title:   props.Title,
		maxRows: workbook.DefaultGridRows,
		maxCols: defaultGridColumns,
	}
	if gp := props.GridProperties; gp != nil {
		if gp.RowCount > 0 {
			s.maxRows = int(gp.RowCount)
		}
		if gp.ColumnCount > 0 {
			s.maxCols = int(gp.ColumnCount)
		}
	}
	return s
}

func (c *Client) queue(req *sheets.Request) {
	c.pending = append(c.pending, req)
}

// Pending returns the number of queued requests.
func (c *Client) Pending() int {
	return len(c.pending)
}

// TimeZone returns the spreadsheet timezone, including a queued change.
func (c *Client) TimeZone(_ context.Context) (string, error) {
	return c.timeZone, nil
}

// SetTimeZone queues a timezone change.
func (c *Client) SetTimeZone(_ context.Context, tz string) error {
	c.queue(setTimeZoneRequest(tz))
	c.timeZone = tz
	return nil
}

// Sheet finds a sheet by title. Sheets rejects titles that differ only in
// case, so a case-insensitive match is the same sheet; an exact match wins.
func (c *Client) Sheet(_ context.Context, name string) (workbook.Sheet, bool, error) {
	var folded *Sheet
	for _, s := range c.sheets {
		if s.title == name {
			return s, true, nil
		}
		if folded == nil && strings.EqualFold(s.title, name) {
			folded = s
		}
	}
	if folded != nil {
		return folded, true, nil
	}
	return nil, false, nil
}

// InsertSheet flushes queued requests, then adds a sheet immediately so its
// id is known to later requests.
func (c *Client) InsertSheet(ctx context.Context, name string) (workbook.Sheet, error) {
	c.queue(addSheetRequest(name))
	resp, err := c.send(ctx)
	if err != nil {
		return nil, &workbook.HostError{Op: "insert sheet", Sheet: name, Cause: err}
	}

	var props *sheets.SheetProperties
	for _, reply := range resp.Replies {
		if reply != nil && reply.AddSheet != nil {
			props = reply.AddSheet.Properties
		}
	}
	if props == nil {
		return nil, &workbook.HostError{Op: "insert sheet", Sheet: name, Cause: fmt.Errorf("no addSheet reply")}
	}

	s := c.newSheet(props)
	c.sheets = append(c.sheets, s)
	return s, nil
}

// Flush sends every queued request in one batchUpdate.
func (c *Client) Flush(ctx context.Context) error {
	if _, err := c.send(ctx); err != nil {
		return &workbook.HostError{Op: "batch update", Cause: err}
	}
	return nil
}

func (c *Client) send(ctx context.Context) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	if len(c.pending) == 0 {
		return &sheets.BatchUpdateSpreadsheetResponse{}, nil
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: c.pending}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("spreadsheet_id", c.spreadsheetID).
		Int("requests", len(c.pending)).
		Msg("batch update sent")
	c.pending = nil
	return resp, nil
}

// Sheet is one sheet of a Client spreadsheet.
type Sheet struct {
	client  *Client
	id      int64
	title   string
	maxRows int
	maxCols int
}

// ID returns the numeric sheet id.
func (s *Sheet) ID() int64 {
	return s.id
}

// Name returns the sheet title.
func (s *Sheet) Name() string {
	return s.title
}

func (s *Sheet) a1(r workbook.Range) string {
	return workbook.QuoteSheetName(s.title) + "!" + r.A1()
}

// LastColumn reads the sheet column-major; the API trims trailing empty
// columns, so the column count is the last used column.
func (s *Sheet) LastColumn(ctx context.Context) (int, error) {
	if err := s.client.Flush(ctx); err != nil {
		return 0, err
	}
	vr, err := s.client.svc.Spreadsheets.Values.Get(s.client.spreadsheetID, workbook.QuoteSheetName(s.title)).
		MajorDimension("COLUMNS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, &workbook.HostError{Op: "read columns", Sheet: s.title, Cause: err}
	}
	return len(vr.Values), nil
}

// MaxRows returns the grid row count.
func (s *Sheet) MaxRows(_ context.Context) (int, error) {
	return s.maxRows, nil
}

// Values reads a range as formatted strings, padded to the range size.
func (s *Sheet) Values(ctx context.Context, r workbook.Range) ([][]string, error) {
	if err := s.client.Flush(ctx); err != nil {
		return nil, err
	}
	vr, err := s.client.svc.Spreadsheets.Values.Get(s.client.spreadsheetID, s.a1(r)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &workbook.HostError{Op: "read values", Sheet: s.title, Cause: err}
	}

	out := make([][]string, r.NumRows)
	for i := range out {
		out[i] = make([]string, r.NumCols)
		if i >= len(vr.Values) {
			continue
		}
		for j, v := range vr.Values[i] {
			if j >= r.NumCols {
				break
			}
			if v != nil {
				out[i][j] = fmt.Sprintf("%v", v)
			}
		}
	}
	return out, nil
}

// SetValue queues a single cell write, widening the grid first when col lies
// past its last column.
func (s *Sheet) SetValue(_ context.Context, row, col int, value string) error {
	if col > s.maxCols {
		s.client.queue(appendColumnsRequest(s.id, col-s.maxCols))
		s.maxCols = col
	}
	s.client.queue(setValueRequest(s.id, row, col, value))
	return nil
}

// SetDataValidation queues a list validation rule.
func (s *Sheet) SetDataValidation(_ context.Context, r workbook.Range, rule workbook.ValidationRule) error {
	s.client.queue(listValidationRequest(s.id, r, rule))
	return nil
}

// SetNumberFormat queues a number format.
func (s *Sheet) SetNumberFormat(_ context.Context, r workbook.Range, f workbook.NumberFormat) error {
	s.client.queue(numberFormatRequest(s.id, r, f))
	return nil
}

// InsertCheckboxes queues checkbox rendering for the range.
func (s *Sheet) InsertCheckboxes(_ context.Context, r workbook.Range) error {
	s.client.queue(checkboxRequest(s.id, r))
	return nil
}

// SetFrozenRows queues a frozen row count.
func (s *Sheet) SetFrozenRows(_ context.Context, n int) error {
	s.client.queue(frozenRowsRequest(s.id, n))
	return nil
}

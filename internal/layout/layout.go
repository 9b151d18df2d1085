// Package layout brings a Hiring Hub workbook to its known-good layout: the
// data sheet with its automation columns, pipeline dropdown and column
// formats, and the automation log sheet with its fixed header row.
package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/jonathan/hiring-hub/internal/schemas"
	rootschemas "github.com/jonathan/hiring-hub/schemas"
)

// NextSendAtHeader is the log column formatted as a timestamp besides column 1.
const NextSendAtHeader = "Next Send At"

// Layout describes everything the initializer reconciles. Values returned by
// Default are fresh copies; callers may modify them freely.
type Layout struct {
	TimeZone string `json:"time_zone"`

	// DataSheetNames are accepted data sheet names; the first match wins and
	// the first entry names a newly created sheet.
	DataSheetNames  []string `json:"data_sheet_names"`
	RequiredHeaders []string `json:"required_headers"`

	PipelineHeader string `json:"pipeline_header"`
	// PipelineValues are the stages the automation acts on.
	PipelineValues []string `json:"pipeline_values"`
	// PipelineInfoValues are record-keeping stages the automation ignores.
	PipelineInfoValues []string `json:"pipeline_info_values"`

	LogSheetName string   `json:"log_sheet_name"`
	LogHeaders   []string `json:"log_headers"`

	DateTimeFormat  string   `json:"date_time_format"`
	DateColumns     []string `json:"date_columns"`
	CountColumn     string   `json:"count_column"`
	CountFormat     string   `json:"count_format"`
	CheckboxColumns []string `json:"checkbox_columns"`
	PhoneColumn     string   `json:"phone_column"`
}

// Default returns the built-in Hiring Hub layout.
func Default() Layout {
	return Layout{
		TimeZone:       "America/New_York",
		DataSheetNames: []string{"Application", "Applications"},
		RequiredHeaders: []string{
			"Stage Started At",
			"Sequence Send Count",
			"Last Send At",
			"Next Send At",
			"Completion Detected At",
			"Opt-Out",
			"Error",
			"Error Message",
		},
		PipelineHeader: "Pipeline Progress",
		PipelineValues: []string{
			"Send Ideal Job Test",
			"Ideal Job Test – Waiting for Completion",
			"Ideal Job Test – Completed",
			"Invite to Interview",
			"Invited to Interview – Waiting for Booking",
			"Interview – Booked",
			"Closed – No Response",
			"Notified of Rejection – No Response",
		},
		PipelineInfoValues: []string{
			"Pending Initial Review",
			"On Hold",
		},
		LogSheetName: "Automation Log",
		LogHeaders: []string{
			"Logged At",
			"Email Address",
			"First Name",
			"Last Name",
			"Pipeline Stage",
			"Sequence",
			"Channel",
			"Attempt Number",
			"Template ID",
			"Provider Message ID",
			"Result",
			"Result Detail",
			NextSendAtHeader,
		},
		DateTimeFormat: "m/d/yyyy h:mm AM/PM",
		DateColumns: []string{
			"Stage Started At",
			"Last Send At",
			"Next Send At",
			"Completion Detected At",
		},
		CountColumn:     "Sequence Send Count",
		CountFormat:     "0",
		CheckboxColumns: []string{"Opt-Out", "Error"},
		PhoneColumn:     "Cell Phone Number",
	}
}

// DropdownValues returns the dropdown list: operational values first, then
// informational ones. The result is a new slice.
func (l Layout) DropdownValues() []string {
	out := make([]string, 0, len(l.PipelineValues)+len(l.PipelineInfoValues))
	out = append(out, l.PipelineValues...)
	return append(out, l.PipelineInfoValues...)
}

// LogDateColumns returns the 1-based log columns formatted as timestamps:
// column 1 and the column holding NextSendAtHeader, when present.
func (l Layout) LogDateColumns() []int {
	cols := []int{1}
	if idx := slices.Index(l.LogHeaders, NextSendAtHeader); idx >= 0 && idx+1 != 1 {
		cols = append(cols, idx+1)
	}
	return cols
}

// Validate checks the layout is usable.
func (l Layout) Validate() error {
	switch {
	case l.TimeZone == "":
		return &Error{Message: "time_zone is empty"}
	case len(l.DataSheetNames) == 0:
		return &Error{Message: "data_sheet_names is empty"}
	case l.LogSheetName == "":
		return &Error{Message: "log_sheet_name is empty"}
	case len(l.LogHeaders) == 0:
		return &Error{Message: "log_headers is empty"}
	case len(l.PipelineValues) == 0:
		return &Error{Message: "pipeline_values is empty"}
	case l.DateTimeFormat == "":
		return &Error{Message: "date_time_format is empty"}
	}
	if slices.Contains(l.DataSheetNames, l.LogSheetName) {
		return &Error{Message: fmt.Sprintf("log_sheet_name %q is also a data sheet name", l.LogSheetName)}
	}
	seen := make(map[string]bool, len(l.RequiredHeaders))
	for _, h := range l.RequiredHeaders {
		key := NormalizeHeader(h)
		if key == "" {
			return &Error{Message: "required_headers contains a blank header"}
		}
		if seen[key] {
			return &Error{Message: fmt.Sprintf("required header %q is listed twice", h)}
		}
		seen[key] = true
	}
	return nil
}

// LoadFile reads a layout override file. The file is checked against the
// layout JSON Schema; keys it omits keep their Default values.
func LoadFile(path string) (Layout, error) {
	if err := schemas.ValidateFile(rootschemas.Layout, path); err != nil {
		return Layout{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("failed to read layout file %s: %w", path, err)
	}

	l := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return Layout{}, &Error{Message: fmt.Sprintf("failed to parse layout file %s", path), Cause: err}
	}

	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

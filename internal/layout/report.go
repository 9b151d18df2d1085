package layout

import "github.com/google/uuid"

// Step names one stage of a setup run.
type Step string

// Setup steps in execution order
const (
	StepTimeZone           Step = "ensure_time_zone"
	StepDataSheet          Step = "ensure_data_sheet"
	StepHeaders            Step = "ensure_headers"
	StepPipelineValidation Step = "ensure_pipeline_validation"
	StepFormatColumns      Step = "format_columns"
	StepLogSheet           Step = "ensure_log_sheet"
	StepLogHeaders         Step = "ensure_log_headers"
	StepFlush              Step = "flush"
)

// AppendedHeader is a required header written during the run.
type AppendedHeader struct {
	Header string
	Column int
}

// FormattedColumn is a column that received a format.
type FormattedColumn struct {
	Header string
	Column int
	Format string
}

// RepairedCell is a log header cell rewritten during the run.
type RepairedCell struct {
	Column int
	Was    string
	Now    string
}

// Skip is an expected absence that turned a step into a no-op.
type Skip struct {
	Step   Step
	Reason string
}

// Report summarizes what a run changed.
type Report struct {
	RunID uuid.UUID

	TimeZone         string
	PreviousTimeZone string
	TimeZoneChanged  bool

	DataSheet        string
	DataSheetCreated bool
	AppendedHeaders  []AppendedHeader

	// ValidationColumn is the column that received the pipeline dropdown, or
	// 0 when the pipeline column was absent.
	ValidationColumn int
	ValidationValues []string
	Formatted        []FormattedColumn

	LogSheet         string
	LogSheetCreated  bool
	RepairedLogCells []RepairedCell

	Skips []Skip
}

// Changed reports whether the run altered anything besides re-applying
// formats and validation, which are idempotent.
func (r *Report) Changed() bool {
	return r.TimeZoneChanged ||
		r.DataSheetCreated ||
		r.LogSheetCreated ||
		len(r.AppendedHeaders) > 0 ||
		len(r.RepairedLogCells) > 0
}

func (r *Report) skip(step Step, reason string) {
	r.Skips = append(r.Skips, Skip{Step: step, Reason: reason})
}

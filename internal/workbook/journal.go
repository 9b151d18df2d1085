package workbook

import (
	"fmt"
	"strings"
)

// OpKind names a mutating host call.
type OpKind string

// Mutating host calls recorded in a journal
const (
	OpSetTimeZone      OpKind = "set_time_zone"
	OpInsertSheet      OpKind = "insert_sheet"
	OpSetValue         OpKind = "set_value"
	OpSetValidation    OpKind = "set_validation"
	OpSetNumberFormat  OpKind = "set_number_format"
	OpInsertCheckboxes OpKind = "insert_checkboxes"
	OpSetFrozenRows    OpKind = "set_frozen_rows"
	OpFlush            OpKind = "flush"
)

// Op is one recorded mutation.
type Op struct {
	Kind  OpKind
	Sheet string
	Range Range
	// Value carries the written cell value, timezone, or frozen row count.
	Value string
	// Values carries the list of a validation rule.
	Values []string
	Format NumberFormat
}

func (o Op) String() string {
	switch o.Kind {
	case OpSetTimeZone:
		return fmt.Sprintf("set time zone to %s", o.Value)
	case OpInsertSheet:
		return fmt.Sprintf("insert sheet %q", o.Sheet)
	case OpSetValue:
		return fmt.Sprintf("set %s!%s = %q", QuoteSheetName(o.Sheet), o.Range.A1(), o.Value)
	case OpSetValidation:
		return fmt.Sprintf("set list validation on %s!%s (%d values)", QuoteSheetName(o.Sheet), o.Range.A1(), len(o.Values))
	case OpSetNumberFormat:
		return fmt.Sprintf("set %s format on %s!%s", o.Format, QuoteSheetName(o.Sheet), o.Range.A1())
	case OpInsertCheckboxes:
		return fmt.Sprintf("insert checkboxes on %s!%s", QuoteSheetName(o.Sheet), o.Range.A1())
	case OpSetFrozenRows:
		return fmt.Sprintf("freeze %s rows on %s", o.Value, QuoteSheetName(o.Sheet))
	case OpFlush:
		return "flush"
	default:
		return strings.TrimSpace(fmt.Sprintf("%s %s", o.Kind, o.Sheet))
	}
}

// journal accumulates ops in call order.
type journal struct {
	ops []Op
}

func (j *journal) record(op Op) {
	if len(op.Values) > 0 {
		op.Values = append([]string(nil), op.Values...)
	}
	j.ops = append(j.ops, op)
}

func (j *journal) snapshot() []Op {
	out := make([]Op, len(j.ops))
	copy(out, j.ops)
	return out
}

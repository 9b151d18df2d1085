package workbook

import "fmt"

// HostError represents a failure reported by the spreadsheet host
type HostError struct {
	Op    string
	Sheet string
	Cause error
}

func (e *HostError) Error() string {
	target := e.Op
	if e.Sheet != "" {
		target = fmt.Sprintf("%s on sheet %q", e.Op, e.Sheet)
	}
	if e.Cause != nil {
		return fmt.Sprintf("host error: %s: %v", target, e.Cause)
	}
	return fmt.Sprintf("host error: %s", target)
}

func (e *HostError) Unwrap() error {
	return e.Cause
}

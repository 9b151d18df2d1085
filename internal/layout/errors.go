package layout

import "fmt"

// Error represents an unusable layout definition
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("layout error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("layout error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StepError represents a host failure that aborted a setup step
type StepError struct {
	Step  Step
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("setup step %s failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

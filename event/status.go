package event

import "fmt"

/* Status represents the delivery state of an event
 * Lifecycle: Pending -> Success | Retrying | Failed
 * Retrying -> Success | Retrying | Failed
 * Terminal states only move back to Pending through a manual retry
 */
type Status int

const (
	Pending Status = iota + 1
	Retrying
	Success
	Failed
)

// String returns the string representation of the status
func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Retrying:
		return "RETRYING"
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// NewStatus creates a Status from a string
func NewStatus(str string) Status {
	switch str {
	case "PENDING":
		return Pending
	case "RETRYING":
		return Retrying
	case "SUCCESS":
		return Success
	case "FAILED":
		return Failed
	default:
		return Pending
	}
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	if s < Pending || s > Failed {
		return fmt.Errorf("invalid status: %d", s)
	}
	return nil
}

// IsTerminal returns true if the status is a terminal state
func (s Status) IsTerminal() bool {
	return s == Success || s == Failed
}

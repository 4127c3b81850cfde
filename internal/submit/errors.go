package submit

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionInFlight is returned when a submission is already running.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrNotFinalStep is returned when Begin is called before the last step.
	ErrNotFinalStep = errors.New("submission is only possible from the last step")
)

// TransportError is a failed delivery. Status is zero for network faults.
// Message holds the endpoint's own explanation, if it sent one.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("submit failed with status %d: %s", e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("submit failed with status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("submit failed: %v", e.Err)
	default:
		return "submit failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FailureMessage returns the text shown to the user for a failed
// submission: the endpoint's message when present, otherwise a generic one.
func FailureMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return MsgFailure
}

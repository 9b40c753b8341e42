package errors

import "fmt"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// StepError marks a failed provisioning step for one candidate email.
// It is always recoverable: the caller abandons the candidate and moves on.
type StepError struct {
	Step   string
	Email  string
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed for %s: %s", e.Step, e.Email, e.Reason)
}

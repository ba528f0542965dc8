package tip

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrConnectivity marks failures worth retrying: node unreachable,
	// wallet timed out, and the like. Wallet implementations wrap it.
	ErrConnectivity = errors.New("connectivity failure")
	// ErrClosed is returned by any operation on a closed wizard.
	ErrClosed = errors.New("tip wizard closed")
)

// ValidationError is an in-place input problem. It never moves the wizard.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StepError reports an operation attempted from the wrong step.
type StepError struct {
	Op   string
	Step Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s not allowed on %s step", e.Op, e.Step)
}

// Kind classifies an error for presentation and retry decisions.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConnectivity
	KindCancelled
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindConnectivity:
		return "connectivity"
	case KindCancelled:
		return "cancelled"
	default:
		return "unexpected"
	}
}

// Classify maps any error onto the taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, ErrConnectivity), errors.Is(err, context.DeadlineExceeded):
		return KindConnectivity
	default:
		return KindUnexpected
	}
}

// Retryable reports whether resubmitting the same draft can succeed. Only
// connectivity failures qualify; anything else goes back to confirm.
func Retryable(err error) bool {
	return Classify(err) == KindConnectivity
}

// Describe renders a short user-facing message.
func Describe(err error) string {
	switch Classify(err) {
	case KindNone:
		return ""
	case KindValidation:
		var ve *ValidationError
		errors.As(err, &ve)
		return ve.Reason
	case KindConnectivity:
		return "network problem, press r to retry: " + err.Error()
	case KindCancelled:
		return "cancelled"
	default:
		return "tip failed, your draft is kept: " + err.Error()
	}
}

package validation

import (
	"errors"
	"strings"
)

// ErrMissingRecord marks a structural cause: a record the engine needs is
// absent from the document.
var ErrMissingRecord = errors.New("missing required record")

// MalformedFileError means the document could not be reconciled at all,
// either because a control or amount field could not be converted or
// because required records are missing. It is distinct from a document that
// reconciles with findings.
type MalformedFileError struct {
	// Errs holds every cause. Conversion failures stop the walk, so they
	// appear alone; structural causes are collected together.
	Errs []error
}

// Error implements the error interface.
func (e *MalformedFileError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "malformed file: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (e *MalformedFileError) Unwrap() []error {
	return e.Errs
}

func malformed(errs ...error) error {
	return &MalformedFileError{Errs: errs}
}

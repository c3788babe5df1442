package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrModelUnavailable  = errors.New("summarization model unavailable")
)

// TransitionError is returned when a document status change violates the
// lifecycle state machine.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid document transition: %s -> %s", e.From, e.To)
}

// ErrInvalidTransition matches any TransitionError via errors.Is.
var ErrInvalidTransition = errors.New("invalid document transition")

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

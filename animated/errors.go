package animated

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreadable reports that a payload could not be opened as an image
	// container at all.
	ErrUnreadable = errors.New("unreadable payload")

	// ErrTooLarge reports that a payload exceeds a configured decode limit.
	ErrTooLarge = errors.New("payload too large")
)

// DecodeError is returned when a payload cannot be turned into a frame
// sequence. No partial sequence is ever returned alongside it.
type DecodeError struct {
	// Kind is ErrUnreadable or ErrTooLarge.
	Kind error
	// Err is the underlying decoder error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "animated: " + e.Kind.Error()
	}
	return fmt.Sprintf("animated: %v: %v", e.Kind, e.Err)
}

// Unwrap allows errors.Is to match both the kind and the cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IndexError is returned for out-of-range frame access.
type IndexError struct {
	Index int
	Count int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("animated: frame index %d out of range [0,%d)", e.Index, e.Count)
}

package booking

import "errors"

var (
	// ErrInvalidInterval means the end of an interval is not strictly after
	// its start. Intervals are half-open, so a zero-length interval is
	// rejected rather than treated as always-free.
	ErrInvalidInterval = errors.New("booking: interval end must be after start")

	// ErrInvalidRecurrenceRange means the recurrence end date falls before
	// the first occurrence.
	ErrInvalidRecurrenceRange = errors.New("booking: recurrence end precedes first occurrence")

	// ErrUnknownRecurrence means the recurrence kind is not one of the
	// supported values.
	ErrUnknownRecurrence = errors.New("booking: unknown recurrence kind")
)

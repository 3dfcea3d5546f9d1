package analytics

import "errors"

var (
	// ErrInvalidWindow is returned when a window starts after it ends
	ErrInvalidWindow = errors.New("invalid window: start is after end")

	// ErrUnknownEntity is returned when an entity has no records, no runs and
	// is absent from every known collection
	ErrUnknownEntity = errors.New("unknown entity")
)

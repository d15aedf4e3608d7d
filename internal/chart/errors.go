package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAnchor indicates the bind target does not exist on the surface.
	ErrMissingAnchor = errors.New("missing anchor")

	// ErrEmptyDataset indicates the data source resolved to zero rows.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInvalidDescriptor indicates a descriptor is structurally malformed.
	ErrInvalidDescriptor = errors.New("invalid chart descriptor")

	// ErrPaletteTooShort indicates the color palette has fewer colors than series.
	ErrPaletteTooShort = errors.New("color palette too short")

	// ErrBlockOutOfRange indicates a block reference past the loaded data.
	ErrBlockOutOfRange = errors.New("data block out of range")

	// ErrDuplicateAnchor indicates two descriptors share a bind target.
	ErrDuplicateAnchor = errors.New("duplicate anchor")
)

// RenderError reports a failed render of the chart bound to Anchor.
type RenderError struct {
	Anchor string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Anchor, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func renderErr(anchor string, err error) *RenderError {
	return &RenderError{Anchor: anchor, Err: err}
}

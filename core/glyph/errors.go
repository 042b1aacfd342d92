package glyph

import "errors"

// Pipeline failures are local validation errors, never retryable.
// Callers match them with errors.Is.
var (
	// ErrInvalidSegment marks a segment with end < start or negative
	// start/fade values.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrMatrixShape marks a frame matrix whose row width does not match
	// the zone count, or whose cells fall outside the brightness range.
	ErrMatrixShape = errors.New("matrix shape violation")

	// ErrMalformedPayload marks CSV text that cannot be decoded back into
	// a frame matrix.
	ErrMalformedPayload = errors.New("malformed csv payload")

	// ErrTransform marks a tag payload that cannot be unwrapped, decoded
	// or decompressed.
	ErrTransform = errors.New("tag transform failed")
)

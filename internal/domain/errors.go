package domain

import "errors"

// Error kinds callers discriminate with errors.Is. Constructor rejections and
// payload problems are deliberately distinct: the former mean the caller built
// an impossible record, the latter mean the provider sent bad data.
var (
	// ErrInvalidArgument marks a constructor argument that violates a record
	// invariant (negative timestamps, negative intensity, missing sample list,
	// out-of-range coordinates).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPayloadAbsent marks a nil provider payload handed to a parser.
	ErrPayloadAbsent = errors.New("payload absent")

	// ErrMalformedPayload marks a provider payload missing required fields or
	// carrying values that cannot be coerced. It always wraps the field-level
	// cause.
	ErrMalformedPayload = errors.New("malformed payload")
)

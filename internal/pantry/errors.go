package pantry

import (
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindMalformedResponse Kind = iota + 1
	KindNoDetection
	KindInvalidStructure
	KindInvalidField
)

func (k Kind) String() string {
	switch k {
	case KindMalformedResponse:
		return "malformed response"
	case KindNoDetection:
		return "no detection"
	case KindInvalidStructure:
		return "invalid structure"
	case KindInvalidField:
		return "invalid field"
	}
	return "unknown"
}

// Error is returned by every stage of the pipeline. Match it with errors.Is
// against the Err* sentinels or unwrap it with errors.As.
type Error struct {
	Kind Kind
	// Key is the top-level collection key for structure and field errors.
	Key string
	// Field is the dotted path of the offending field, Index its element.
	Field string
	Index int
	// Raw is the unparsed model output for malformed responses.
	Raw    string
	Reason string
}

// Sentinels for errors.Is.
var (
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
	ErrNoDetection       = &Error{Kind: KindNoDetection}
	ErrInvalidStructure  = &Error{Kind: KindInvalidStructure}
	ErrInvalidField      = &Error{Kind: KindInvalidField}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindMalformedResponse:
		return "malformed model response: no JSON object or no-detection phrase found"
	case KindNoDetection:
		if e.Reason != "" {
			return "no food items detected: " + e.Reason
		}
		return "no food items detected"
	case KindInvalidStructure:
		return fmt.Sprintf("invalid response structure: %q must be an array", e.Key)
	case KindInvalidField:
		if e.Reason != "" {
			return fmt.Sprintf("invalid %s at index %d: %s", e.Field, e.Index, e.Reason)
		}
		return fmt.Sprintf("invalid %s at index %d", e.Field, e.Index)
	}
	return "pantry error"
}

// Is matches errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewInvalidStructure reports a missing or non-array collection key.
func NewInvalidStructure(key string) *Error {
	return &Error{Kind: KindInvalidStructure, Key: key}
}

// NewInvalidField reports a bad field of the element at index.
func NewInvalidField(key, field string, index int, reason string) *Error {
	return &Error{Kind: KindInvalidField, Key: key, Field: field, Index: index, Reason: reason}
}

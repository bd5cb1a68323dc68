package pipeline

import (
	"errors"
	"fmt"
)

// DraftErrorCode categorizes drafting failures.
type DraftErrorCode string

const (
	// CodeNoProfileMatch indicates no tier of title matching produced a
	// profile and no valid override was supplied.
	CodeNoProfileMatch DraftErrorCode = "no_profile_match"

	// CodeNoTemplateForKind indicates the matched profile has no usable
	// template for the requested kind (or follow-up position).
	CodeNoTemplateForKind DraftErrorCode = "no_template_for_kind"

	// CodePersonalizationFailed indicates the generation service failed.
	// Never fatal to a draft: the raw template content remains usable and
	// travels with the warning.
	CodePersonalizationFailed DraftErrorCode = "personalization_failed"
)

// DraftError is a typed drafting failure for the caller to surface.
//
// All drafting failures are pure returns - no partial mutation has
// occurred - so the caller can retry with a manual override or a different
// kind without cleanup.
type DraftError struct {
	Code      DraftErrorCode
	ContactID string
	Message   string
	Err       error // underlying cause, optional
}

// Error implements the error interface.
func (e *DraftError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ContactID != "" {
		msg += fmt.Sprintf(" (contact=%s)", e.ContactID)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *DraftError) Unwrap() error {
	return e.Err
}

// IsCode reports whether err is a DraftError carrying the given code.
func IsCode(err error, code DraftErrorCode) bool {
	var de *DraftError
	return errors.As(err, &de) && de.Code == code
}

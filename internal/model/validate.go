package model

import "fmt"

// ValidationError describes a record that violates a creation-time invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the template's creation-time invariants:
//
//   - Kind must be a known kind.
//   - A follow_up template must carry SequenceNumber >= 1.
//   - Any other kind must not carry a SequenceNumber at all.
//   - Content must fit the kind's character budget.
//
// The kind/sequence rule is hard: a record violating it is rejected at
// creation, never repaired.
func (t Template) Validate() error {
	if t.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !t.Kind.Valid() {
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown kind %q", t.Kind)}
	}
	if t.Kind == KindFollowUp {
		if t.SequenceNumber == nil {
			return &ValidationError{Field: "sequence_number", Message: "follow_up template requires a sequence number"}
		}
		if *t.SequenceNumber < 1 {
			return &ValidationError{Field: "sequence_number", Message: fmt.Sprintf("sequence number must be >= 1, got %d", *t.SequenceNumber)}
		}
	} else if t.SequenceNumber != nil {
		return &ValidationError{Field: "sequence_number", Message: fmt.Sprintf("%s template must not carry a sequence number", t.Kind)}
	}
	if max := t.Kind.MaxChars(); len([]rune(t.Content)) > max {
		return &ValidationError{Field: "content", Message: fmt.Sprintf("content exceeds %d character budget for kind %s", max, t.Kind)}
	}
	return nil
}

// Validate checks event invariants at creation: known action, known outcome.
func (e OutreachEvent) Validate() error {
	if e.ContactID == "" {
		return &ValidationError{Field: "contact_id", Message: "contact id is required"}
	}
	if !e.Action.Valid() {
		return &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action %q", e.Action)}
	}
	if !e.Outcome.Valid() {
		return &ValidationError{Field: "outcome", Message: fmt.Sprintf("unknown outcome %q", e.Outcome)}
	}
	return nil
}

// Validate checks message invariants at creation.
func (m Message) Validate() error {
	if m.ContactID == "" {
		return &ValidationError{Field: "contact_id", Message: "contact id is required"}
	}
	if !m.Direction.Valid() {
		return &ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", m.Direction)}
	}
	return nil
}

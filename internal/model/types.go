package model

import "time"

// Contact is a person record owned by the external store.
//
// Status is written by exactly one code path in this repository
// (engagement.MarkSent); everything else treats it as read-only and
// derives pipeline position from the event streams instead.
type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`

	Status ContactStatus `json:"status"`

	// WarmIntroReferrer names who was asked for a warm introduction.
	// Meaningful only alongside StatusAskedForIntro.
	WarmIntroReferrer string `json:"warm_intro_referrer,omitempty"`

	// ProfileOverrideID pins this contact to a profile, bypassing title
	// matching. Override storage belongs to the caller; the matcher itself
	// is stateless.
	ProfileOverrideID string `json:"profile_override_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the contact's name parts for personalization context.
func (c Contact) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Profile is a targeting definition grouping templates.
// Roles are ordered as authored; matching tie-breaks do not depend on
// this order except through longest-role-first sorting.
type Profile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Roles      []string `json:"roles"`
	Industry   string   `json:"industry,omitempty"`
	PainPoints []string `json:"pain_points,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Template is reusable message text for one outreach kind.
//
// SequenceNumber is present iff Kind is follow_up; Validate enforces this
// at creation time. Identity is stable through edits - versioning spawns a
// new row via the versioner's Iterate, it never rewrites this one.
type Template struct {
	ID        string       `json:"id"`
	ProfileID string       `json:"profile_id"`
	Name      string       `json:"name"`
	Kind      TemplateKind `json:"kind"`
	Content   string       `json:"content"`
	Notes     string       `json:"notes,omitempty"`
	IsCurrent bool         `json:"is_current"`

	// SequenceNumber is the 1-based follow-up step. Nil for all other kinds.
	SequenceNumber *int `json:"sequence_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Seq returns the follow-up sequence number, or 0 when absent.
func (t Template) Seq() int {
	if t.SequenceNumber == nil {
		return 0
	}
	return *t.SequenceNumber
}

// OutreachEvent is one logged outbound attempt. Append-only: after
// creation only Outcome and UpdatedAt may change, and Outcome only moves
// forward.
type OutreachEvent struct {
	ID         string         `json:"id"`
	ContactID  string         `json:"contact_id"`
	Action     OutreachAction `json:"action"`
	TemplateID string         `json:"template_id,omitempty"`
	Outcome    Outcome        `json:"outcome"`

	// Seq is the logical clock stamp used for ordering. Wall-clock
	// timestamps below are operator-facing only.
	Seq int64 `json:"seq"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one conversational turn. Append-only.
type Message struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contact_id"`
	Direction Direction `json:"direction"`
	Channel   string    `json:"channel"`
	Content   string    `json:"content"`

	Seq int64 `json:"seq"`

	CreatedAt time.Time `json:"created_at"`
}

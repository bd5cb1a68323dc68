package model

import "fmt"

// TemplateKind identifies what kind of outreach message a template is for.
type TemplateKind string

const (
	KindConnectionNote TemplateKind = "connection_note"
	KindMessage        TemplateKind = "message"
	KindInMail         TemplateKind = "inmail"
	KindFollowUp       TemplateKind = "follow_up"
)

// Valid reports whether k is one of the known template kinds.
func (k TemplateKind) Valid() bool {
	switch k {
	case KindConnectionNote, KindMessage, KindInMail, KindFollowUp:
		return true
	}
	return false
}

// MaxChars returns the content character budget for this kind.
// Connection notes and InMails carry platform limits; plain messages
// and follow-ups share a generous ceiling.
func (k TemplateKind) MaxChars() int {
	switch k {
	case KindConnectionNote:
		return 300
	case KindInMail:
		return 1900
	default:
		return 8000
	}
}

// OutreachAction identifies what kind of outbound attempt an event records.
type OutreachAction string

const (
	ActionNoteSent     OutreachAction = "note_sent"
	ActionFollowUpSent OutreachAction = "follow_up_sent"
)

// Valid reports whether a is a known outreach action.
func (a OutreachAction) Valid() bool {
	return a == ActionNoteSent || a == ActionFollowUpSent
}

// ActionForKind maps a template kind to the outreach action recorded when
// a message of that kind is sent. Connection notes, messages, and InMails
// all record note_sent; only follow-ups record follow_up_sent, because the
// follow-up sequence position is derived from counting those events.
func ActionForKind(k TemplateKind) OutreachAction {
	if k == KindFollowUp {
		return ActionFollowUpSent
	}
	return ActionNoteSent
}

// Outcome is the lifecycle position of an outreach attempt.
//
// Transitions are strictly forward along:
//
//	pending -> accepted -> replied
//	pending -> replied
//
// Backward moves are rejected everywhere, which makes concurrent forward
// writes commutative: whatever order they land in, the row ends at the
// furthest outcome either writer requested.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeAccepted Outcome = "accepted"
	OutcomeReplied  Outcome = "replied"
)

// outcomeRank orders outcomes along the forward axis.
var outcomeRank = map[Outcome]int{
	OutcomePending:  0,
	OutcomeAccepted: 1,
	OutcomeReplied:  2,
}

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	_, ok := outcomeRank[o]
	return ok
}

// CanAdvanceTo reports whether moving from o to next is a legal forward
// transition. Staying in place is not an advance; callers treat a same-value
// write as a no-op, not an error.
func (o Outcome) CanAdvanceTo(next Outcome) bool {
	from, ok := outcomeRank[o]
	if !ok {
		return false
	}
	to, ok := outcomeRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Direction distinguishes conversational turns.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionSent || d == DirectionReceived
}

// ContactStatus is the operator-visible stored status of a contact.
//
// This field is set manually at send time and can lag behind reality;
// work-queue membership uses the derived EngagementState instead.
type ContactStatus string

const (
	StatusNotContacted  ContactStatus = "not_contacted"
	StatusRequested     ContactStatus = "requested"
	StatusMessaged      ContactStatus = "messaged"
	StatusAskedForIntro ContactStatus = "asked_for_intro"
	StatusReplied       ContactStatus = "replied"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusNotContacted, StatusRequested, StatusMessaged, StatusAskedForIntro, StatusReplied:
		return true
	}
	return false
}

// StatusAfterSend returns the stored status a contact advances to when a
// message of the given kind is recorded as sent. Connection notes move the
// contact to requested; everything else means a conversation exists.
func StatusAfterSend(k TemplateKind) ContactStatus {
	if k == KindConnectionNote {
		return StatusRequested
	}
	return StatusMessaged
}

// EngagementState is a contact's true pipeline position, reconstructed from
// the OutreachEvent and Message streams. It is never stored.
type EngagementState string

const (
	StateNotContacted                    EngagementState = "NOT_CONTACTED"
	StateConnectionSent                  EngagementState = "CONNECTION_SENT"
	StateConnectionAcceptedAwaitingReply EngagementState = "CONNECTION_ACCEPTED_AWAITING_REPLY"
	StateEngaged                         EngagementState = "ENGAGED"

	// StateWarmIntroRequested is a side branch orthogonal to the main chain,
	// tracked purely via the stored asked_for_intro status plus a referrer.
	StateWarmIntroRequested EngagementState = "WARM_INTRO_REQUESTED"
)

// ParseOutcome converts a stored string into an Outcome, rejecting unknowns.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(s)
	if !o.Valid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}

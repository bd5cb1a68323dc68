package engagement

import (
	"github.com/dfaua/papooga-reach/internal/model"
)

// DeriveState reconstructs the contact's pipeline position from its event
// and message history. Pure: no lookups, no mutation.
//
// The main chain is NOT_CONTACTED -> CONNECTION_SENT ->
// CONNECTION_ACCEPTED_AWAITING_REPLY -> ENGAGED. The warm-intro side branch
// is orthogonal and tracked purely via the stored status plus referrer; it
// only applies while nothing has been sent yet.
func DeriveState(contact model.Contact, events []model.OutreachEvent, messages []model.Message) model.EngagementState {
	replied := false
	accepted := false
	sent := false
	for _, ev := range events {
		if ev.ContactID != contact.ID {
			continue
		}
		sent = true
		switch ev.Outcome {
		case model.OutcomeReplied:
			replied = true
		case model.OutcomeAccepted:
			accepted = true
		}
	}

	received := hasReceivedMessage(contact.ID, messages)

	switch {
	case replied || received:
		return model.StateEngaged
	case accepted:
		return model.StateConnectionAcceptedAwaitingReply
	case sent:
		return model.StateConnectionSent
	case contact.Status == model.StatusAskedForIntro && contact.WarmIntroReferrer != "":
		return model.StateWarmIntroRequested
	}
	return model.StateNotContacted
}

// FollowUpEligible reports whether the contact belongs in the
// needs-follow-up work queue:
//
//	(a) at least one of its outreach events has outcome accepted, and
//	(b) it has zero received messages.
//
// The instant an inbound message is recorded, (b) fails and the triggering
// event is marked replied in the same store transaction, so both effects
// are always observed together.
func FollowUpEligible(contactID string, events []model.OutreachEvent, messages []model.Message) bool {
	if hasReceivedMessage(contactID, messages) {
		return false
	}
	for _, ev := range events {
		if ev.ContactID == contactID && ev.Outcome == model.OutcomeAccepted {
			return true
		}
	}
	return false
}

// FollowUpCount is the number of follow_up_sent events for the contact,
// irrespective of outcome. This feeds the resolver's next-sequence target;
// it is derived on every call, never cached.
func FollowUpCount(contactID string, events []model.OutreachEvent) int {
	n := 0
	for _, ev := range events {
		if ev.ContactID == contactID && ev.Action == model.ActionFollowUpSent {
			n++
		}
	}
	return n
}

func hasReceivedMessage(contactID string, messages []model.Message) bool {
	for _, m := range messages {
		if m.ContactID == contactID && m.Direction == model.DirectionReceived {
			return true
		}
	}
	return false
}

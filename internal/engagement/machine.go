package engagement

import (
	"log/slog"
	"time"

	"github.com/dfaua/papooga-reach/internal/model"
)

// StateMachine produces the record-level effects of engagement transitions.
//
// Every method is a pure transform: it takes current records and returns
// the records to persist. Persistence (and its atomicity) belongs to the
// caller, which lets the same machine drive both the SQLite store and
// in-memory test fixtures.
type StateMachine struct {
	IDs   model.IDGenerator
	Clock *Clock
	Now   func() time.Time
	Log   *slog.Logger
}

// NewStateMachine creates a machine with production defaults.
func NewStateMachine(ids model.IDGenerator, clock *Clock) *StateMachine {
	return &StateMachine{IDs: ids, Clock: clock, Now: time.Now, Log: slog.Default()}
}

// SendEffect is the result of recording an outbound send: the appended
// event, the appended message turn, and the contact with its stored status
// advanced. All three persist together.
type SendEffect struct {
	Contact model.Contact
	Event   model.OutreachEvent
	Message model.Message
}

// MarkSent records that a message of the given kind went out to the
// contact. The new event starts at outcome pending; the contact's stored
// status advances to the stage the send implies (requested for connection
// notes, messaged otherwise). This is the only code path that writes
// Contact.Status.
func (sm *StateMachine) MarkSent(contact model.Contact, kind model.TemplateKind, templateID, channel, content string) SendEffect {
	now := sm.Now()

	ev := model.OutreachEvent{
		ID:         sm.IDs.NewID(),
		ContactID:  contact.ID,
		Action:     model.ActionForKind(kind),
		TemplateID: templateID,
		Outcome:    model.OutcomePending,
		Seq:        sm.Clock.Next(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	msg := model.Message{
		ID:        sm.IDs.NewID(),
		ContactID: contact.ID,
		Direction: model.DirectionSent,
		Channel:   channel,
		Content:   content,
		Seq:       sm.Clock.Next(),
		CreatedAt: now,
	}

	contact.Status = model.StatusAfterSend(kind)
	contact.UpdatedAt = now

	sm.logger().Debug("send recorded",
		"contact", contact.ID, "kind", string(kind), "action", string(ev.Action), "seq", ev.Seq)

	return SendEffect{Contact: contact, Event: ev, Message: msg}
}

// MarkAccepted advances the event's outcome from pending to accepted.
//
// Returns the (possibly unchanged) event and whether it advanced. Any other
// starting outcome leaves the event untouched: calling MarkAccepted on an
// already-accepted event is a no-op, and a replied event never moves
// backward. Rejections are logged, never surfaced as failures.
func (sm *StateMachine) MarkAccepted(ev model.OutreachEvent) (model.OutreachEvent, bool) {
	return sm.advance(ev, model.OutcomeAccepted)
}

// InboundEffect is the result of recording an inbound message: the appended
// message, and, when a qualifying outreach event existed, that event with
// its outcome advanced to replied.
//
// ResolvedEvent and the message must persist in one store transaction so
// "outcome is replied" and "no longer follow-up eligible" are observed
// together, never as two separately-racing updates.
type InboundEffect struct {
	Message       model.Message
	ResolvedEvent *model.OutreachEvent
}

// OnInboundMessage records a received conversational turn and silently
// resolves the pending connection request it answers: the contact's most
// recent note_sent event still at pending or accepted moves to replied.
//
// At most one event transitions per inbound message. If none qualifies the
// message is still recorded and ResolvedEvent is nil; that is a no-op, not
// an error.
func (sm *StateMachine) OnInboundMessage(contact model.Contact, channel, content string, events []model.OutreachEvent) InboundEffect {
	msg := model.Message{
		ID:        sm.IDs.NewID(),
		ContactID: contact.ID,
		Direction: model.DirectionReceived,
		Channel:   channel,
		Content:   content,
		Seq:       sm.Clock.Next(),
		CreatedAt: sm.Now(),
	}

	effect := InboundEffect{Message: msg}

	if target, ok := latestResolvable(contact.ID, events); ok {
		resolved, advanced := sm.advance(target, model.OutcomeReplied)
		if advanced {
			effect.ResolvedEvent = &resolved
		}
	}
	return effect
}

// latestResolvable finds the contact's most recent note_sent event whose
// outcome can still move to replied. Recency is by logical seq.
func latestResolvable(contactID string, events []model.OutreachEvent) (model.OutreachEvent, bool) {
	var best model.OutreachEvent
	found := false
	for _, ev := range events {
		if ev.ContactID != contactID || ev.Action != model.ActionNoteSent {
			continue
		}
		if ev.Outcome != model.OutcomePending && ev.Outcome != model.OutcomeAccepted {
			continue
		}
		if !found || ev.Seq > best.Seq {
			best = ev
			found = true
		}
	}
	return best, found
}

// advance applies a forward-only outcome write. Backward or same-value
// requests leave the event unchanged and report false.
func (sm *StateMachine) advance(ev model.OutreachEvent, next model.Outcome) (model.OutreachEvent, bool) {
	if !ev.Outcome.CanAdvanceTo(next) {
		sm.logger().Debug("outcome transition rejected",
			"event", ev.ID, "from", string(ev.Outcome), "to", string(next))
		return ev, false
	}
	ev.Outcome = next
	ev.UpdatedAt = sm.Now()
	sm.logger().Debug("outcome advanced", "event", ev.ID, "to", string(next))
	return ev, true
}

func (sm *StateMachine) logger() *slog.Logger {
	if sm.Log != nil {
		return sm.Log
	}
	return slog.Default()
}

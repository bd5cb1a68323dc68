package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
)

func seedEvent(t *testing.T, s *Store, id, contactID string, action model.OutreachAction, outcome model.Outcome, seq int64) model.OutreachEvent {
	t.Helper()
	ev := model.OutreachEvent{
		ID: id, ContactID: contactID, Action: action, Outcome: outcome, Seq: seq,
		CreatedAt: storeTestNow, UpdatedAt: storeTestNow,
	}
	require.NoError(t, s.AppendEvent(context.Background(), ev))
	return ev
}

func TestAppendEvent_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")

	ev := seedEvent(t, s, "e-1", "c-1", model.ActionNoteSent, model.OutcomePending, 1)

	// Re-applying the same effect is silently ignored.
	require.NoError(t, s.AppendEvent(ctx, ev))

	events, err := s.ListEventsByContact(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAppendEvent_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")

	err := s.AppendEvent(ctx, model.OutreachEvent{
		ID: "e-1", ContactID: "c-1", Action: "poked", Outcome: model.OutcomePending,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestAdvanceOutcome_ForwardOnlyAtRowLevel(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")
	seedEvent(t, s, "e-1", "c-1", model.ActionNoteSent, model.OutcomePending, 1)

	later := storeTestNow.Add(time.Minute)

	advanced, err := s.AdvanceOutcome(ctx, "e-1", model.OutcomeAccepted, later)
	require.NoError(t, err)
	assert.True(t, advanced)

	// Same-value write: no row matches the guarded sources.
	advanced, err = s.AdvanceOutcome(ctx, "e-1", model.OutcomeAccepted, later)
	require.NoError(t, err)
	assert.False(t, advanced)

	advanced, err = s.AdvanceOutcome(ctx, "e-1", model.OutcomeReplied, later)
	require.NoError(t, err)
	assert.True(t, advanced)

	// Backward writes can never match: a replied row stays replied.
	advanced, err = s.AdvanceOutcome(ctx, "e-1", model.OutcomePending, later)
	require.NoError(t, err)
	assert.False(t, advanced)

	ev, err := s.GetEvent(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeReplied, ev.Outcome)
}

func TestAdvanceOutcome_OrderIndependent(t *testing.T) {
	// accepted-then-replied and replied-then-accepted converge.
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")
	seedEvent(t, s, "e-1", "c-1", model.ActionNoteSent, model.OutcomePending, 1)
	seedEvent(t, s, "e-2", "c-1", model.ActionNoteSent, model.OutcomePending, 2)

	later := storeTestNow.Add(time.Minute)

	_, err := s.AdvanceOutcome(ctx, "e-1", model.OutcomeAccepted, later)
	require.NoError(t, err)
	_, err = s.AdvanceOutcome(ctx, "e-1", model.OutcomeReplied, later)
	require.NoError(t, err)

	_, err = s.AdvanceOutcome(ctx, "e-2", model.OutcomeReplied, later)
	require.NoError(t, err)
	_, err = s.AdvanceOutcome(ctx, "e-2", model.OutcomeAccepted, later)
	require.NoError(t, err)

	for _, id := range []string{"e-1", "e-2"} {
		ev, err := s.GetEvent(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.OutcomeReplied, ev.Outcome, "event %s", id)
	}
}

func TestApplySend_Atomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	contact := seedContact(t, s, "c-1")

	machine := &engagement.StateMachine{
		IDs:   model.NewFixedIDGenerator("e-1", "m-1"),
		Clock: engagement.NewClock(),
		Now:   func() time.Time { return storeTestNow },
	}
	eff := machine.MarkSent(contact, model.KindConnectionNote, "t-1", "linkedin", "Hi")

	require.NoError(t, s.ApplySend(ctx, eff))

	got, err := s.GetContact(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRequested, got.Status)

	events, err := s.ListEventsByContact(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.OutcomePending, events[0].Outcome)

	messages, err := s.ListMessagesByContact(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.DirectionSent, messages[0].Direction)

	// Re-applying the whole effect is idempotent on the append tables.
	require.NoError(t, s.ApplySend(ctx, eff))
	events, err = s.ListEventsByContact(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestApplyInbound_OutcomeAndEligibilityMoveTogether(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	contact := seedContact(t, s, "c-1")
	seedEvent(t, s, "e-1", "c-1", model.ActionNoteSent, model.OutcomeAccepted, 1)

	queue, err := s.FollowUpQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1, "accepted and silent contact is due for follow-up")

	machine := &engagement.StateMachine{
		IDs:   model.NewFixedIDGenerator("m-1"),
		Clock: engagement.NewClockAt(1),
		Now:   func() time.Time { return storeTestNow.Add(time.Hour) },
	}
	events, err := s.ListEventsByContact(ctx, "c-1")
	require.NoError(t, err)

	eff := machine.OnInboundMessage(contact, "linkedin", "sounds great", events)
	require.NotNil(t, eff.ResolvedEvent)
	require.NoError(t, s.ApplyInbound(ctx, eff))

	// Both effects are now visible: replied outcome, empty queue.
	ev, err := s.GetEvent(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeReplied, ev.Outcome)

	queue, err = s.FollowUpQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestListEventsByContact_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")
	seedContact(t, s, "c-2")

	seedEvent(t, s, "e-3", "c-1", model.ActionFollowUpSent, model.OutcomePending, 3)
	seedEvent(t, s, "e-1", "c-1", model.ActionNoteSent, model.OutcomeAccepted, 1)
	seedEvent(t, s, "e-2", "c-1", model.ActionFollowUpSent, model.OutcomePending, 2)
	seedEvent(t, s, "e-9", "c-2", model.ActionNoteSent, model.OutcomePending, 9)

	events, err := s.ListEventsByContact(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"e-1", "e-2", "e-3"}, []string{events[0].ID, events[1].ID, events[2].ID})
}

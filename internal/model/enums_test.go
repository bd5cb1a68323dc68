package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_CanAdvanceTo(t *testing.T) {
	testCases := []struct {
		name string
		from Outcome
		to   Outcome
		want bool
	}{
		{"pending to accepted", OutcomePending, OutcomeAccepted, true},
		{"pending to replied", OutcomePending, OutcomeReplied, true},
		{"accepted to replied", OutcomeAccepted, OutcomeReplied, true},
		{"accepted to pending is backward", OutcomeAccepted, OutcomePending, false},
		{"replied to accepted is backward", OutcomeReplied, OutcomeAccepted, false},
		{"replied to pending is backward", OutcomeReplied, OutcomePending, false},
		{"same value is not an advance", OutcomeAccepted, OutcomeAccepted, false},
		{"unknown source", Outcome("bogus"), OutcomeReplied, false},
		{"unknown target", OutcomePending, Outcome("bogus"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to))
		})
	}
}

func TestOutcome_ForwardWritesCommute(t *testing.T) {
	// A human clicking "accepted" and an inbound reply racing on the same
	// event must converge on the same final outcome in either order.
	apply := func(cur Outcome, writes ...Outcome) Outcome {
		for _, w := range writes {
			if cur.CanAdvanceTo(w) {
				cur = w
			}
		}
		return cur
	}

	acceptedFirst := apply(OutcomePending, OutcomeAccepted, OutcomeReplied)
	repliedFirst := apply(OutcomePending, OutcomeReplied, OutcomeAccepted)

	assert.Equal(t, OutcomeReplied, acceptedFirst)
	assert.Equal(t, OutcomeReplied, repliedFirst)
}

func TestActionForKind(t *testing.T) {
	assert.Equal(t, ActionNoteSent, ActionForKind(KindConnectionNote))
	assert.Equal(t, ActionNoteSent, ActionForKind(KindMessage))
	assert.Equal(t, ActionNoteSent, ActionForKind(KindInMail))
	assert.Equal(t, ActionFollowUpSent, ActionForKind(KindFollowUp))
}

func TestStatusAfterSend(t *testing.T) {
	assert.Equal(t, StatusRequested, StatusAfterSend(KindConnectionNote))
	assert.Equal(t, StatusMessaged, StatusAfterSend(KindMessage))
	assert.Equal(t, StatusMessaged, StatusAfterSend(KindFollowUp))
}

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome("accepted")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, o)

	_, err = ParseOutcome("done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown outcome")
}

package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/store"
)

// EvaluateAssertions checks each assertion against the final store state
// and returns one message per failure. An empty slice means all passed.
func EvaluateAssertions(ctx context.Context, st *store.Store, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if msg := evaluateAssertion(ctx, st, a); msg != "" {
			failures = append(failures, fmt.Sprintf("assertions[%d] (%s): %s", i, a.Type, msg))
		}
	}
	return failures
}

func evaluateAssertion(ctx context.Context, st *store.Store, a Assertion) string {
	switch a.Type {
	case AssertState:
		return assertState(ctx, st, a)
	case AssertQueue:
		return assertQueue(ctx, st, a)
	case AssertOutcome:
		return assertOutcome(ctx, st, a)
	case AssertFollowUpCount:
		return assertFollowUpCount(ctx, st, a)
	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
}

func assertState(ctx context.Context, st *store.Store, a Assertion) string {
	history, err := st.GetContactHistory(ctx, a.Contact)
	if err != nil {
		return fmt.Sprintf("contact %q: %v", a.Contact, err)
	}
	got := engagement.DeriveState(history.Contact, history.Events, history.Messages)
	if string(got) != a.Expect {
		return fmt.Sprintf("contact %q: expected state %s, got %s", a.Contact, a.Expect, got)
	}
	return ""
}

func assertQueue(ctx context.Context, st *store.Store, a Assertion) string {
	queued, err := st.FollowUpQueue(ctx)
	if err != nil {
		return fmt.Sprintf("follow-up queue: %v", err)
	}
	got := make([]string, 0, len(queued))
	for _, c := range queued {
		got = append(got, c.ID)
	}
	want := a.Contacts
	if len(got) != len(want) {
		return fmt.Sprintf("expected queue [%s], got [%s]",
			strings.Join(want, ", "), strings.Join(got, ", "))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Sprintf("expected queue [%s], got [%s]",
				strings.Join(want, ", "), strings.Join(got, ", "))
		}
	}
	return ""
}

// assertOutcome checks the outcome of the contact's most recent event.
func assertOutcome(ctx context.Context, st *store.Store, a Assertion) string {
	events, err := st.ListEventsByContact(ctx, a.Contact)
	if err != nil {
		return fmt.Sprintf("contact %q: %v", a.Contact, err)
	}
	if len(events) == 0 {
		return fmt.Sprintf("contact %q has no events", a.Contact)
	}
	latest := events[len(events)-1]
	if string(latest.Outcome) != a.Expect {
		return fmt.Sprintf("contact %q: expected outcome %s, got %s on event %s",
			a.Contact, a.Expect, latest.Outcome, latest.ID)
	}
	return ""
}

func assertFollowUpCount(ctx context.Context, st *store.Store, a Assertion) string {
	events, err := st.ListEventsByContact(ctx, a.Contact)
	if err != nil {
		return fmt.Sprintf("contact %q: %v", a.Contact, err)
	}
	got := engagement.FollowUpCount(a.Contact, events)
	if got != a.Count {
		return fmt.Sprintf("contact %q: expected %d follow-ups sent, got %d", a.Contact, a.Count, got)
	}
	return ""
}

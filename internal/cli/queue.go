package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
)

// QueueEntry is one contact due for a follow-up.
type QueueEntry struct {
	Contact       model.Contact `json:"contact"`
	FollowUpsSent int           `json:"follow_ups_sent"`
	NextSequence  int           `json:"next_sequence"`
}

// StateEntry is one contact with its derived engagement state.
type StateEntry struct {
	Contact model.Contact `json:"contact"`
	State   string        `json:"state"`
}

// NewQueueCommand creates the queue command.
func NewQueueCommand(rootOpts *RootOptions) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List contacts due for a follow-up",
		Long: `List contacts whose connection was accepted but who have not yet
replied. Membership is computed from the event streams on every run; a
reply recorded a moment ago removes the contact immediately.

With --state, list contacts in the given derived engagement state
instead (NOT_CONTACTED, CONNECTION_SENT,
CONNECTION_ACCEPTED_AWAITING_REPLY, ENGAGED, WARM_INTRO_REQUESTED).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state != "" {
				return runQueueByState(rootOpts, cmd, state)
			}
			return runQueue(rootOpts, cmd)
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "filter by derived engagement state")

	return cmd
}

func runQueue(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	contacts, err := rt.Store.FollowUpQueue(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read follow-up queue", err)
	}

	entries := make([]QueueEntry, 0, len(contacts))
	for _, c := range contacts {
		events, err := rt.Store.ListEventsByContact(ctx, c.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		sent := engagement.FollowUpCount(c.ID, events)
		entries = append(entries, QueueEntry{
			Contact:       c,
			FollowUpsSent: sent,
			NextSequence:  sent + 1,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No contacts due for follow-up")
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d contact(s) due for follow-up:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "  %s  %s (%s) - next: follow-up #%d\n",
			e.Contact.ID, e.Contact.FullName(), e.Contact.CompanyName, e.NextSequence)
	}
	return nil
}

func runQueueByState(opts *RootOptions, cmd *cobra.Command, state string) error {
	formatter := newFormatter(opts, cmd)

	want := model.EngagementState(strings.ToUpper(state))
	switch want {
	case model.StateNotContacted, model.StateConnectionSent,
		model.StateConnectionAcceptedAwaitingReply, model.StateEngaged,
		model.StateWarmIntroRequested:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown engagement state %q", state))
	}

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	contacts, err := rt.Store.ListContacts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list contacts", err)
	}

	var entries []StateEntry
	for _, c := range contacts {
		history, err := rt.Store.GetContactHistory(ctx, c.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read contact history", err)
		}
		got := engagement.DeriveState(history.Contact, history.Events, history.Messages)
		if got == want {
			entries = append(entries, StateEntry{Contact: c, State: string(got)})
		}
	}

	if formatter.Format == "json" {
		if entries == nil {
			entries = []StateEntry{}
		}
		return formatter.Success(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(formatter.Writer, "No contacts in state %s\n", want)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%d contact(s) in state %s:\n", len(entries), want)
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "  %s  %s (%s)\n",
			e.Contact.ID, e.Contact.FullName(), e.Contact.CompanyName)
	}
	return nil
}

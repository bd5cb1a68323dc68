package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
)

// ContactView is the JSON payload for contact show.
type ContactView struct {
	Contact         model.Contact         `json:"contact"`
	State           model.EngagementState `json:"state"`
	FollowUpsSent   int                   `json:"follow_ups_sent"`
	FollowUpDue     bool                  `json:"follow_up_due"`
	EventCount      int                   `json:"event_count"`
	MessageCount    int                   `json:"message_count"`
	LastOutcome     string                `json:"last_outcome,omitempty"`
	ProfileOverride string                `json:"profile_override,omitempty"`
}

// NewContactCommand creates the contact command group.
func NewContactCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage contact records",
	}

	cmd.AddCommand(newContactAddCommand(rootOpts))
	cmd.AddCommand(newContactShowCommand(rootOpts))
	cmd.AddCommand(newContactOverrideCommand(rootOpts))
	cmd.AddCommand(newContactStatusCommand(rootOpts))

	return cmd
}

type contactAddOptions struct {
	*RootOptions
	FirstName string
	LastName  string
	Title     string
	Company   string
}

func newContactAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &contactAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Long: `Add a contact record.

Example:
  reach contact add --first Jane --last Doe --title "VP of Sales" --company Acme`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContactAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&opts.Title, "title", "", "job title (required)")
	cmd.Flags().StringVar(&opts.Company, "company", "", "company name (required)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}

func runContactAdd(opts *contactAddOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rt, err := openRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	now := time.Now()
	contact := model.Contact{
		ID:          model.UUIDv7Generator{}.NewID(),
		FirstName:   opts.FirstName,
		LastName:    opts.LastName,
		Title:       opts.Title,
		CompanyName: opts.Company,
		Status:      model.StatusNotContacted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := rt.Store.UpsertContact(ctx, contact); err != nil {
		return WrapExitError(ExitCommandError, "failed to store contact", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(contact)
	}
	fmt.Fprintf(formatter.Writer, "Added contact %s (%s)\n", contact.FullName(), contact.ID)
	return nil
}

func newContactShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <contact-id>",
		Short: "Show a contact's derived engagement state",
		Long: `Show a contact's record alongside its true pipeline position,
reconstructed from the event and message history rather than read from the
stored status field.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContactShow(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runContactShow(opts *RootOptions, contactID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	history, err := rt.Store.GetContactHistory(ctx, contactID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read contact", err)
	}

	view := ContactView{
		Contact:         history.Contact,
		State:           engagement.DeriveState(history.Contact, history.Events, history.Messages),
		FollowUpsSent:   engagement.FollowUpCount(contactID, history.Events),
		FollowUpDue:     engagement.FollowUpEligible(contactID, history.Events, history.Messages),
		EventCount:      len(history.Events),
		MessageCount:    len(history.Messages),
		ProfileOverride: history.Contact.ProfileOverrideID,
	}
	if n := len(history.Events); n > 0 {
		view.LastOutcome = string(history.Events[n-1].Outcome)
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	fmt.Fprintf(formatter.Writer, "%s - %s at %s\n",
		history.Contact.FullName(), history.Contact.Title, history.Contact.CompanyName)
	fmt.Fprintf(formatter.Writer, "  state:            %s\n", view.State)
	fmt.Fprintf(formatter.Writer, "  stored status:    %s\n", history.Contact.Status)
	fmt.Fprintf(formatter.Writer, "  events:           %d\n", view.EventCount)
	fmt.Fprintf(formatter.Writer, "  messages:         %d\n", view.MessageCount)
	fmt.Fprintf(formatter.Writer, "  follow-ups sent:  %d\n", view.FollowUpsSent)
	fmt.Fprintf(formatter.Writer, "  follow-up due:    %v\n", view.FollowUpDue)
	if view.ProfileOverride != "" {
		fmt.Fprintf(formatter.Writer, "  profile override: %s\n", view.ProfileOverride)
	}
	return nil
}

func newContactOverrideCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override <contact-id> <profile-id>",
		Short: "Pin a contact to a profile, bypassing title matching",
		Long: `Pin a contact to a profile. Drafting for this contact skips title
matching and uses the pinned profile directly. Pass an empty profile ID to
clear the override.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContactOverride(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runContactOverride(opts *RootOptions, contactID, profileID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	if err := rt.Store.SetProfileOverride(ctx, contactID, profileID); err != nil {
		return WrapExitError(ExitCommandError, "failed to set override", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"contact_id": contactID, "profile_id": profileID})
	}
	if profileID == "" {
		fmt.Fprintf(formatter.Writer, "Cleared profile override for %s\n", contactID)
	} else {
		fmt.Fprintf(formatter.Writer, "Pinned %s to profile %s\n", contactID, profileID)
	}
	return nil
}

type contactStatusOptions struct {
	*RootOptions
	Referrer string
}

func newContactStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &contactStatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status <contact-id> <status>",
		Short: "Set a contact's stored status directly",
		Long: `Set a contact's stored status. This is the operator-driven edit
path; sends advance the status automatically.

The asked_for_intro status takes a referrer:
  reach contact status c-42 asked_for_intro --referrer "Sam Obi"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContactStatus(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Referrer, "referrer", "", "who was asked for a warm introduction")

	return cmd
}

func runContactStatus(opts *contactStatusOptions, contactID, status string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rt, err := openRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	if err := rt.Store.SetStatus(ctx, contactID, model.ContactStatus(status), opts.Referrer); err != nil {
		return WrapExitError(ExitFailure, "failed to set status", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"contact_id": contactID, "status": status})
	}
	fmt.Fprintf(formatter.Writer, "Set %s to %s\n", contactID, status)
	return nil
}

// commandContext returns the command's context, defaulting to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

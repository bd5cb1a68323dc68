package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/model"
	"github.com/dfaua/papooga-reach/internal/pipeline"
)

// DraftView is the JSON payload for a single draft.
type DraftView struct {
	ContactID    string `json:"contact_id"`
	ProfileID    string `json:"profile_id"`
	ProfileName  string `json:"profile_name"`
	MatchedRole  string `json:"matched_role,omitempty"`
	Tier         string `json:"tier"`
	TemplateID   string `json:"template_id"`
	TemplateName string `json:"template_name"`
	Content      string `json:"content"`
	Personalized bool   `json:"personalized"`
	Warning      string `json:"warning,omitempty"`
}

type draftOptions struct {
	*RootOptions
	Kind    string
	Profile string
}

// NewDraftCommand creates the draft command.
func NewDraftCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &draftOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draft <contact-id>",
		Short: "Draft the next message for a contact",
		Long: `Draft a message for one contact: match a profile by title (or use
an override), resolve the template for the requested kind, and personalize
it when a generation endpoint is configured.

Nothing is recorded; use send to log the message once it actually goes out.

Example:
  reach draft c-42 --kind connection_note
  reach draft c-42 --kind follow_up --profile p-executives`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "connection_note", "template kind (connection_note|message|inmail|follow_up)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "pin the draft to a profile ID, bypassing matching")

	return cmd
}

func runDraft(opts *draftOptions, contactID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	kind := model.TemplateKind(opts.Kind)
	if !kind.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown kind %q", opts.Kind))
	}

	rt, err := openRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	history, err := rt.Store.GetContactHistory(ctx, contactID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read contact", err)
	}
	profiles, templates, err := rt.Catalog(ctx)
	if err != nil {
		return err
	}
	orch, err := rt.Orchestrator(ctx)
	if err != nil {
		return err
	}

	draft, err := orch.DraftMessage(ctx, pipeline.DraftRequest{
		Contact:           history.Contact,
		Kind:              kind,
		Profiles:          profiles,
		Templates:         templates,
		Events:            history.Events,
		OverrideProfileID: opts.Profile,
	})
	if err != nil {
		var draftErr *pipeline.DraftError
		if errors.As(err, &draftErr) {
			_ = formatter.Error(string(draftErr.Code), draftErr.Message, nil)
			return NewExitError(ExitFailure, draftErr.Error())
		}
		return WrapExitError(ExitCommandError, "drafting failed", err)
	}

	return outputDraft(formatter, contactID, draft)
}

func outputDraft(formatter *OutputFormatter, contactID string, draft pipeline.Draft) error {
	view := draftView(contactID, draft)

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	fmt.Fprintf(formatter.Writer, "Profile:  %s (%s)\n", view.ProfileName, view.Tier)
	if view.MatchedRole != "" {
		fmt.Fprintf(formatter.Writer, "Role:     %s\n", view.MatchedRole)
	}
	fmt.Fprintf(formatter.Writer, "Template: %s (%s)\n", view.TemplateName, view.TemplateID)
	if view.Warning != "" {
		fmt.Fprintf(formatter.Writer, "Warning:  %s\n", view.Warning)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, view.Content)
	return nil
}

func draftView(contactID string, draft pipeline.Draft) DraftView {
	view := DraftView{
		ContactID:    contactID,
		ProfileID:    draft.Profile.ID,
		ProfileName:  draft.Profile.Name,
		MatchedRole:  draft.MatchedRole,
		Tier:         string(draft.Tier),
		TemplateID:   draft.Template.ID,
		TemplateName: draft.Template.Name,
		Content:      draft.Content,
		Personalized: draft.Personalized,
	}
	if draft.Warning != nil {
		view.Warning = draft.Warning.Message
	}
	return view
}

type draftBatchOptions struct {
	*RootOptions
	Kind string
}

// BatchView is the JSON payload for draft-batch.
type BatchView struct {
	Company string          `json:"company"`
	Drafts  []DraftView     `json:"drafts"`
	Failed  []BatchFailView `json:"failed,omitempty"`
}

// BatchFailView is one contact's failure slot in a batch.
type BatchFailView struct {
	ContactID string `json:"contact_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// NewDraftBatchCommand creates the draft-batch command.
func NewDraftBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &draftBatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "draft-batch <company>",
		Short: "Draft the same kind for every contact at a company",
		Long: `Draft in bulk for all contacts at one company. Contacts are
drafted in parallel and independently: one contact without a matching
profile fails in its own slot without aborting the rest.

Example:
  reach draft-batch Acme --kind connection_note`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraftBatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "connection_note", "template kind (connection_note|message|inmail|follow_up)")

	return cmd
}

func runDraftBatch(opts *draftBatchOptions, company string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	kind := model.TemplateKind(opts.Kind)
	if !kind.Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown kind %q", opts.Kind))
	}

	rt, err := openRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	contacts, err := rt.Store.ListContactsByCompany(ctx, company)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list contacts", err)
	}
	if len(contacts) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no contacts at company %q", company))
	}

	eventsByContact := make(map[string][]model.OutreachEvent, len(contacts))
	for _, c := range contacts {
		events, err := rt.Store.ListEventsByContact(ctx, c.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read events", err)
		}
		eventsByContact[c.ID] = events
	}

	profiles, templates, err := rt.Catalog(ctx)
	if err != nil {
		return err
	}
	orch, err := rt.Orchestrator(ctx)
	if err != nil {
		return err
	}

	items := orch.DraftBatch(ctx, pipeline.BatchRequest{
		Contacts:        contacts,
		Kind:            kind,
		Profiles:        profiles,
		Templates:       templates,
		EventsByContact: eventsByContact,
	})

	view := BatchView{Company: company}
	for _, item := range items {
		if item.Err != nil {
			fail := BatchFailView{ContactID: item.Contact.ID, Message: item.Err.Error()}
			var draftErr *pipeline.DraftError
			if errors.As(item.Err, &draftErr) {
				fail.Code = string(draftErr.Code)
				fail.Message = draftErr.Message
			}
			view.Failed = append(view.Failed, fail)
			continue
		}
		view.Drafts = append(view.Drafts, draftView(item.Contact.ID, item.Draft))
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}

	fmt.Fprintf(formatter.Writer, "%d draft(s), %d failed\n", len(view.Drafts), len(view.Failed))
	for _, d := range view.Drafts {
		fmt.Fprintf(formatter.Writer, "\n--- %s (%s via %s)\n%s\n", d.ContactID, d.ProfileName, d.Tier, d.Content)
	}
	for _, f := range view.Failed {
		fmt.Fprintf(formatter.Writer, "\n--- %s FAILED [%s]: %s\n", f.ContactID, f.Code, f.Message)
	}
	if len(view.Failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d contact(s) failed to draft", len(view.Failed)))
	}
	return nil
}

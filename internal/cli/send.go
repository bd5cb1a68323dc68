package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/model"
)

type sendOptions struct {
	*RootOptions
	Kind     string
	Template string
	Channel  string
	Content  string
}

// SendView is the JSON payload for send.
type SendView struct {
	EventID   string `json:"event_id"`
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Seq       int64  `json:"seq"`
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &sendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send <contact-id>",
		Short: "Record that a message went out",
		Long: `Record an outbound send: appends the outreach event (outcome
pending) and the sent message turn, and advances the contact's stored
status, all in one transaction.

Example:
  reach send c-42 --kind connection_note --template t-1 --content "Hi Jane..."`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "connection_note", "template kind (connection_note|message|inmail|follow_up)")
	cmd.Flags().StringVar(&opts.Template, "template", "", "template ID the content came from")
	cmd.Flags().StringVar(&opts.Channel, "channel", "linkedin", "channel the message went out on")
	cmd.Flags().StringVar(&opts.Content, "content", "", "message content as sent (required)")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func runSend(opts *sendOptions, contactID string, cmd *cobra.Command) error {
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
	contact, err := rt.Store.GetContact(ctx, contactID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read contact", err)
	}

	machine, err := rt.Machine(ctx)
	if err != nil {
		return err
	}

	eff := machine.MarkSent(contact, kind, opts.Template, opts.Channel, opts.Content)
	if err := rt.Store.ApplySend(ctx, eff); err != nil {
		return WrapExitError(ExitCommandError, "failed to record send", err)
	}

	view := SendView{
		EventID:   eff.Event.ID,
		MessageID: eff.Message.ID,
		Status:    string(eff.Contact.Status),
		Seq:       eff.Event.Seq,
	}
	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	fmt.Fprintf(formatter.Writer, "Recorded send: event %s, status now %s\n", view.EventID, view.Status)
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type inboundOptions struct {
	*RootOptions
	Channel string
	Content string
}

// InboundView is the JSON payload for inbound.
type InboundView struct {
	MessageID       string `json:"message_id"`
	ResolvedEventID string `json:"resolved_event_id,omitempty"`
}

// NewInboundCommand creates the inbound command.
func NewInboundCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &inboundOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inbound <contact-id>",
		Short: "Record a message received from a contact",
		Long: `Record an inbound conversational turn. If the contact has a
pending or accepted connection request, its outcome silently advances to
replied in the same transaction, so the contact leaves the follow-up
queue the moment the reply is recorded.

Example:
  reach inbound c-42 --content "Thanks for reaching out!"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInbound(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Channel, "channel", "linkedin", "channel the message arrived on")
	cmd.Flags().StringVar(&opts.Content, "content", "", "message content (required)")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func runInbound(opts *inboundOptions, contactID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

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

	machine, err := rt.Machine(ctx)
	if err != nil {
		return err
	}

	eff := machine.OnInboundMessage(history.Contact, opts.Channel, opts.Content, history.Events)
	if err := rt.Store.ApplyInbound(ctx, eff); err != nil {
		return WrapExitError(ExitCommandError, "failed to record inbound message", err)
	}

	view := InboundView{MessageID: eff.Message.ID}
	if eff.ResolvedEvent != nil {
		view.ResolvedEventID = eff.ResolvedEvent.ID
	}

	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	fmt.Fprintf(formatter.Writer, "Recorded inbound message %s\n", view.MessageID)
	if view.ResolvedEventID != "" {
		fmt.Fprintf(formatter.Writer, "Event %s resolved to replied\n", view.ResolvedEventID)
	}
	return nil
}

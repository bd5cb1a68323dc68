package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/model"
)

// NewAcceptCommand creates the accept command.
func NewAcceptCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept <event-id>",
		Short: "Mark a connection request as accepted",
		Long: `Advance an outreach event's outcome from pending to accepted.

Outcomes only move forward. Accepting an already-accepted event is a
no-op, and an event that reached replied stays there; both report
"unchanged" rather than failing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccept(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runAccept(opts *RootOptions, eventID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	advanced, err := rt.Store.AdvanceOutcome(ctx, eventID, model.OutcomeAccepted, time.Now())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to advance outcome", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"event_id": eventID, "advanced": advanced})
	}
	if advanced {
		fmt.Fprintf(formatter.Writer, "Event %s accepted\n", eventID)
	} else {
		fmt.Fprintf(formatter.Writer, "Event %s unchanged\n", eventID)
	}
	return nil
}

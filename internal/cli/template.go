package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/model"
	"github.com/dfaua/papooga-reach/internal/templates"
)

// IterateView is the JSON payload for iterate.
type IterateView struct {
	DeactivatedID string `json:"deactivated_id"`
	CreatedID     string `json:"created_id"`
	CreatedName   string `json:"created_name"`
}

// NewIterateCommand creates the iterate command.
func NewIterateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iterate <template-id>",
		Short: "Spawn the next version of a template",
		Long: `Deactivate a template and create a fresh copy with the trailing
version marker bumped: "Cold Intro" becomes "Cold Intro v2", "Cold Intro
v2" becomes "Cold Intro v3". The old row keeps its ID and its history;
the copy gets a new ID and becomes current.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIterate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runIterate(opts *RootOptions, templateID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	tmpl, err := rt.Store.GetTemplate(ctx, templateID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read template", err)
	}

	versioner := templates.NewVersioner(model.UUIDv7Generator{})
	deactivated, created := versioner.Iterate(tmpl)

	if err := rt.Store.UpdateTemplateCurrent(ctx, deactivated.ID, false); err != nil {
		return WrapExitError(ExitCommandError, "failed to deactivate template", err)
	}
	if err := rt.Store.InsertTemplate(ctx, created); err != nil {
		return WrapExitError(ExitCommandError, "failed to store new version", err)
	}

	view := IterateView{
		DeactivatedID: deactivated.ID,
		CreatedID:     created.ID,
		CreatedName:   created.Name,
	}
	if formatter.Format == "json" {
		return formatter.Success(view)
	}
	fmt.Fprintf(formatter.Writer, "Created %q (%s), deactivated %s\n", view.CreatedName, view.CreatedID, view.DeactivatedID)
	return nil
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <template-id>",
		Short: "Flip a template's current flag",
		Long: `Flip whether a template is current. Nothing cascades: siblings
keep their flags, and holding several current templates of the same kind
is legal (resolution picks the most recent).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runToggle(opts *RootOptions, templateID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := commandContext(cmd)
	tmpl, err := rt.Store.GetTemplate(ctx, templateID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read template", err)
	}

	versioner := templates.NewVersioner(model.UUIDv7Generator{})
	toggled := versioner.ToggleCurrent(tmpl)

	if err := rt.Store.UpdateTemplateCurrent(ctx, toggled.ID, toggled.IsCurrent); err != nil {
		return WrapExitError(ExitCommandError, "failed to update template", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"template_id": toggled.ID, "is_current": toggled.IsCurrent})
	}
	fmt.Fprintf(formatter.Writer, "Template %s is_current=%v\n", toggled.ID, toggled.IsCurrent)
	return nil
}

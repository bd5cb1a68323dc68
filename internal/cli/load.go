package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/catalog"
	"github.com/dfaua/papooga-reach/internal/model"
)

// LoadResultSummary reports what a load run wrote into the database.
type LoadResultSummary struct {
	Files     int `json:"files"`
	Profiles  int `json:"profiles"`
	Templates int `json:"templates"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <playbook-dir>",
		Short: "Compile CUE playbooks and load them into the database",
		Long: `Compile CUE playbooks and upsert the resulting profiles and
templates into the database.

Profiles are keyed by name: reloading a playbook updates the existing
profile in place. Templates are always inserted as new records with fresh
IDs; use validate first if you only want a syntax check.

Example:
  reach load ./playbooks
  reach load --db ./reach.db ./playbooks`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLoad(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, loadErrors := catalog.LoadDir(dir, catalog.LoadModeFailFast)
	if len(loadErrors) > 0 {
		err := loadErrors[0]
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitFailure, loadErr.Error())
		}
		_ = formatter.Error(catalog.ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	formatter.VerboseLog("Compiled %d profile(s) from %d file(s)", len(result.Entries), result.FileCount)

	rt, err := openRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	summary, err := persistLoadResult(ctx, formatter, rt, result)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "Loaded %d profile(s) and %d template(s) from %d file(s)\n",
		summary.Profiles, summary.Templates, summary.Files)
	return nil
}

// persistLoadResult writes compiled entries to the store. Database write
// failures are reported under E007 so JSON consumers can tell a bad write
// from a bad playbook.
func persistLoadResult(ctx context.Context, formatter *OutputFormatter, rt *runtime, result *catalog.LoadResult) (LoadResultSummary, error) {
	summary, err := storeEntries(ctx, rt, result.Entries)
	if err != nil {
		_ = formatter.Error(catalog.ErrCodeWriteFailed, err.Error(), nil)
		return summary, err
	}
	summary.Files = result.FileCount
	return summary, nil
}

// storeEntries upserts compiled entries. Existing profiles (matched by
// name) keep their IDs so contact overrides stay valid across reloads.
func storeEntries(ctx context.Context, rt *runtime, entries []catalog.Entry) (LoadResultSummary, error) {
	existing, err := rt.Store.ListProfiles(ctx)
	if err != nil {
		return LoadResultSummary{}, WrapExitError(ExitCommandError, "failed to list profiles", err)
	}
	idByName := make(map[string]string, len(existing))
	for _, p := range existing {
		idByName[p.Name] = p.ID
	}

	ids := model.UUIDv7Generator{}
	now := time.Now()
	var summary LoadResultSummary

	for _, entry := range entries {
		profile := entry.Profile
		if id, ok := idByName[profile.Name]; ok {
			profile.ID = id
		} else {
			profile.ID = ids.NewID()
			profile.CreatedAt = now
		}
		if err := rt.Store.UpsertProfile(ctx, profile); err != nil {
			return summary, WrapExitError(ExitCommandError,
				fmt.Sprintf("failed to store profile %q", profile.Name), err)
		}
		summary.Profiles++

		for _, tmpl := range entry.Templates {
			tmpl.ID = ids.NewID()
			tmpl.ProfileID = profile.ID
			tmpl.CreatedAt = now
			if err := rt.Store.InsertTemplate(ctx, tmpl); err != nil {
				return summary, WrapExitError(ExitCommandError,
					fmt.Sprintf("failed to store template %q", tmpl.Name), err)
			}
			summary.Templates++
		}
	}
	return summary, nil
}

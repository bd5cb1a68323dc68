package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
	"github.com/dfaua/papooga-reach/internal/personalize"
	"github.com/dfaua/papooga-reach/internal/pipeline"
	"github.com/dfaua/papooga-reach/internal/store"
	"github.com/dfaua/papooga-reach/internal/templates"
	"github.com/dfaua/papooga-reach/internal/testutil"
)

// Harness executes one scenario against a fresh in-memory store.
//
// Determinism comes from three sources: sequential IDs, a ticking wall
// clock, and the placeholder Renderer in place of the network
// personalization service. Everything else is the production pipeline.
type Harness struct {
	store   *store.Store
	gen     *testutil.SequentialIDGenerator
	wall    *testutil.TickingClock
	machine *engagement.StateMachine
	orch    *pipeline.Orchestrator

	profileIDByName  map[string]string
	templateIDByName map[string]string

	// lastDraft chains a contact's draft into its next send.
	lastDraft map[string]pipeline.Draft
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation:
//  1. Load the playbook (profiles and templates).
//  2. Create contacts.
//  3. Execute steps in order, tracing each outcome.
//  4. Evaluate assertions over the final state.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := testutil.NewSequentialIDGenerator()
	wall := testutil.NewTickingClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Second)

	machine := &engagement.StateMachine{
		IDs:   gen,
		Clock: engagement.NewClock(),
		Now:   wall.Now,
		Log:   quiet,
	}
	orch := pipeline.New(machine, personalize.Renderer{}, "renderer")
	orch.Log = quiet

	h := &Harness{
		store:            st,
		gen:              gen,
		wall:             wall,
		machine:          machine,
		orch:             orch,
		profileIDByName:  map[string]string{},
		templateIDByName: map[string]string{},
		lastDraft:        map[string]pipeline.Draft{},
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.loadPlaybook(ctx, scenario.Profiles); err != nil {
		return nil, fmt.Errorf("failed to load playbook: %w", err)
	}
	if err := h.loadContacts(ctx, scenario.Contacts); err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, st, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// loadPlaybook inserts profiles and templates with sequential IDs, in
// declaration order.
func (h *Harness) loadPlaybook(ctx context.Context, profiles []ProfileDef) error {
	for _, def := range profiles {
		profile := model.Profile{
			ID:         h.gen.NewID(),
			Name:       def.Name,
			Roles:      def.Roles,
			Industry:   def.Industry,
			PainPoints: def.PainPoints,
			CreatedAt:  h.wall.Now(),
		}
		if err := h.store.UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("profile %q: %w", def.Name, err)
		}
		h.profileIDByName[def.Name] = profile.ID

		for _, tdef := range def.Templates {
			current := true
			if tdef.Current != nil {
				current = *tdef.Current
			}
			tmpl := model.Template{
				ID:             h.gen.NewID(),
				ProfileID:      profile.ID,
				Name:           tdef.Name,
				Kind:           model.TemplateKind(tdef.Kind),
				Content:        tdef.Content,
				IsCurrent:      current,
				SequenceNumber: tdef.Sequence,
				CreatedAt:      h.wall.Now(),
			}
			if err := h.store.InsertTemplate(ctx, tmpl); err != nil {
				return fmt.Errorf("template %q: %w", tdef.Name, err)
			}
			h.templateIDByName[tdef.Name] = tmpl.ID
		}
	}
	return nil
}

func (h *Harness) loadContacts(ctx context.Context, contacts []ContactDef) error {
	for _, def := range contacts {
		now := h.wall.Now()
		contact := model.Contact{
			ID:          def.ID,
			FirstName:   def.First,
			LastName:    def.Last,
			Title:       def.Title,
			CompanyName: def.Company,
			Status:      model.StatusNotContacted,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := h.store.UpsertContact(ctx, contact); err != nil {
			return fmt.Errorf("contact %q: %w", def.ID, err)
		}
	}
	return nil
}

func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		var err error
		switch step.Op {
		case OpDraft:
			err = h.stepDraft(ctx, i, step, result)
		case OpSend:
			err = h.stepSend(ctx, i, step, result)
		case OpAccept:
			err = h.stepAccept(ctx, i, step, result)
		case OpInbound:
			err = h.stepInbound(ctx, i, step, result)
		case OpIterate:
			err = h.stepIterate(ctx, i, step, result)
		case OpToggle:
			err = h.stepToggle(ctx, i, step, result)
		default:
			err = fmt.Errorf("unknown op %q", step.Op)
		}
		if err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
	}
	return nil
}

func (h *Harness) stepDraft(ctx context.Context, i int, step Step, result *Result) error {
	history, err := h.store.GetContactHistory(ctx, step.Contact)
	if err != nil {
		return err
	}
	profiles, err := h.store.ListProfiles(ctx)
	if err != nil {
		return err
	}
	tmpls, err := h.store.ListTemplates(ctx)
	if err != nil {
		return err
	}

	overrideID := ""
	if step.Profile != "" {
		overrideID = h.profileIDByName[step.Profile]
		if overrideID == "" {
			return fmt.Errorf("unknown profile %q", step.Profile)
		}
	}

	kind := model.KindConnectionNote
	if step.Kind != "" {
		kind = model.TemplateKind(step.Kind)
	}

	draft, err := h.orch.DraftMessage(ctx, pipeline.DraftRequest{
		Contact:           history.Contact,
		Kind:              kind,
		Profiles:          profiles,
		Templates:         tmpls,
		Events:            history.Events,
		OverrideProfileID: overrideID,
	})
	if err != nil {
		code := ""
		var draftErr *pipeline.DraftError
		if errors.As(err, &draftErr) {
			code = string(draftErr.Code)
		}
		result.Trace = append(result.Trace, TraceEvent{Op: OpDraft, Contact: step.Contact, Error: code})
		if step.Expect == nil || step.Expect.Error != code {
			result.AddError(fmt.Sprintf("steps[%d]: draft failed: %v", i, err))
		}
		return nil
	}

	if step.Expect != nil {
		if step.Expect.Error != "" {
			result.AddError(fmt.Sprintf("steps[%d]: expected draft error %q, got success", i, step.Expect.Error))
		}
		if step.Expect.Profile != "" && step.Expect.Profile != draft.Profile.Name {
			result.AddError(fmt.Sprintf("steps[%d]: expected profile %q, got %q", i, step.Expect.Profile, draft.Profile.Name))
		}
		if step.Expect.Tier != "" && step.Expect.Tier != string(draft.Tier) {
			result.AddError(fmt.Sprintf("steps[%d]: expected tier %q, got %q", i, step.Expect.Tier, draft.Tier))
		}
		if step.Expect.Template != "" && step.Expect.Template != draft.Template.Name {
			result.AddError(fmt.Sprintf("steps[%d]: expected template %q, got %q", i, step.Expect.Template, draft.Template.Name))
		}
	}

	h.lastDraft[step.Contact] = draft
	result.Trace = append(result.Trace, TraceEvent{
		Op:       OpDraft,
		Contact:  step.Contact,
		Profile:  draft.Profile.Name,
		Tier:     string(draft.Tier),
		Template: draft.Template.Name,
		Content:  draft.Content,
	})
	return nil
}

func (h *Harness) stepSend(ctx context.Context, i int, step Step, result *Result) error {
	contact, err := h.store.GetContact(ctx, step.Contact)
	if err != nil {
		return err
	}

	content := step.Content
	templateID := ""
	kind := model.TemplateKind(step.Kind)
	if last, ok := h.lastDraft[step.Contact]; ok {
		if content == "" {
			content = last.Content
		}
		templateID = last.Template.ID
		if kind == "" {
			kind = last.Template.Kind
		}
	}
	if kind == "" {
		kind = model.KindConnectionNote
	}
	if content == "" {
		return fmt.Errorf("no content: no prior draft for %q and no content given", step.Contact)
	}

	channel := step.Channel
	if channel == "" {
		channel = "linkedin"
	}

	eff := h.machine.MarkSent(contact, kind, templateID, channel, content)
	if err := h.store.ApplySend(ctx, eff); err != nil {
		return err
	}

	result.Trace = append(result.Trace, TraceEvent{
		Op:        OpSend,
		Contact:   step.Contact,
		EventID:   eff.Event.ID,
		MessageID: eff.Message.ID,
		Status:    string(eff.Contact.Status),
	})
	return nil
}

func (h *Harness) stepAccept(ctx context.Context, i int, step Step, result *Result) error {
	events, err := h.store.ListEventsByContact(ctx, step.Contact)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("no events for contact %q", step.Contact)
	}
	latest := events[len(events)-1]

	advanced, err := h.store.AdvanceOutcome(ctx, latest.ID, model.OutcomeAccepted, h.wall.Now())
	if err != nil {
		return err
	}

	result.Trace = append(result.Trace, TraceEvent{
		Op:       OpAccept,
		Contact:  step.Contact,
		EventID:  latest.ID,
		Advanced: advanced,
	})
	return nil
}

func (h *Harness) stepInbound(ctx context.Context, i int, step Step, result *Result) error {
	history, err := h.store.GetContactHistory(ctx, step.Contact)
	if err != nil {
		return err
	}

	channel := step.Channel
	if channel == "" {
		channel = "linkedin"
	}

	eff := h.machine.OnInboundMessage(history.Contact, channel, step.Content, history.Events)
	if err := h.store.ApplyInbound(ctx, eff); err != nil {
		return err
	}

	ev := TraceEvent{Op: OpInbound, Contact: step.Contact, MessageID: eff.Message.ID}
	if eff.ResolvedEvent != nil {
		ev.Resolved = eff.ResolvedEvent.ID
	}
	result.Trace = append(result.Trace, ev)
	return nil
}

func (h *Harness) stepIterate(ctx context.Context, i int, step Step, result *Result) error {
	id := h.templateIDByName[step.Template]
	if id == "" {
		return fmt.Errorf("unknown template %q", step.Template)
	}
	tmpl, err := h.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}

	versioner := &templates.Versioner{IDs: h.gen, Now: h.wall.Now}
	deactivated, created := versioner.Iterate(tmpl)

	if err := h.store.UpdateTemplateCurrent(ctx, deactivated.ID, false); err != nil {
		return err
	}
	if err := h.store.InsertTemplate(ctx, created); err != nil {
		return err
	}
	h.templateIDByName[created.Name] = created.ID

	result.Trace = append(result.Trace, TraceEvent{Op: OpIterate, Template: created.Name})
	return nil
}

func (h *Harness) stepToggle(ctx context.Context, i int, step Step, result *Result) error {
	id := h.templateIDByName[step.Template]
	if id == "" {
		return fmt.Errorf("unknown template %q", step.Template)
	}
	tmpl, err := h.store.GetTemplate(ctx, id)
	if err != nil {
		return err
	}

	next := !tmpl.IsCurrent
	if err := h.store.UpdateTemplateCurrent(ctx, id, next); err != nil {
		return err
	}

	status := "retired"
	if next {
		status = "current"
	}
	result.Trace = append(result.Trace, TraceEvent{Op: OpToggle, Template: step.Template, Status: status})
	return nil
}

// Package pipeline composes matching, template resolution, and the
// engagement state machine into the two operator-facing actions: "what
// should I send this person next" and "mark this message as sent and
// advance state".
//
// The orchestrator is stateless over caller-supplied data. Per-contact
// profile overrides arrive as values on the request, never as process-wide
// state.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/match"
	"github.com/dfaua/papooga-reach/internal/model"
	"github.com/dfaua/papooga-reach/internal/personalize"
	"github.com/dfaua/papooga-reach/internal/templates"
)

// Orchestrator wires the drafting pipeline together.
type Orchestrator struct {
	Machine      *engagement.StateMachine
	Personalizer personalize.Personalizer
	Model        string // generation model name, passed through to the service
	Log          *slog.Logger
}

// New creates an Orchestrator. Personalizer may be nil, in which case
// drafts carry raw template content.
func New(machine *engagement.StateMachine, p personalize.Personalizer, modelName string) *Orchestrator {
	return &Orchestrator{Machine: machine, Personalizer: p, Model: modelName, Log: slog.Default()}
}

// DraftRequest carries everything DraftMessage needs; the orchestrator
// reads records, it never fetches them.
type DraftRequest struct {
	Contact  model.Contact
	Kind     model.TemplateKind
	Profiles []model.Profile

	// Templates holds the candidate templates of all profiles; the
	// orchestrator filters by the matched profile's ID.
	Templates []model.Template

	// Events is the contact's outreach history, used to derive the
	// follow-up sequence position.
	Events []model.OutreachEvent

	// OverrideProfileID pins the draft to a profile, bypassing matching.
	// Falls back to the contact's stored override when empty. A stale
	// override (profile no longer exists) is ignored and matching runs.
	OverrideProfileID string
}

// Draft is a successful drafting result.
type Draft struct {
	Profile     model.Profile
	MatchedRole string // empty for manual overrides
	Tier        match.Tier
	Template    model.Template
	Content     string

	// Personalized reports whether Content came from the generation
	// service. When false and Warning is set, Content is the raw template
	// (never lost) and Warning explains the service failure.
	Personalized bool
	Warning      *DraftError
}

// TierOverride marks drafts pinned by a manual override rather than
// produced by a matching tier.
const TierOverride match.Tier = "override"

// DraftMessage answers "what should I send this person next".
//
// Profile selection honors a valid override, otherwise runs the matcher.
// Template resolution is by kind; follow-ups derive their sequence position
// from the contact's event history. Failures are typed
// (no_profile_match, no_template_for_kind) with no partial mutation.
func (o *Orchestrator) DraftMessage(ctx context.Context, req DraftRequest) (Draft, error) {
	profile, matchedRole, tier, err := o.selectProfile(req)
	if err != nil {
		return Draft{}, err
	}

	tmpl, err := o.selectTemplate(req, profile)
	if err != nil {
		return Draft{}, err
	}

	draft := Draft{
		Profile:     profile,
		MatchedRole: matchedRole,
		Tier:        tier,
		Template:    tmpl,
		Content:     tmpl.Content,
	}

	if o.Personalizer == nil {
		return draft, nil
	}

	genReq := personalize.NewRequest(tmpl.Content, req.Contact, profile, matchedRole, tmpl.Kind.MaxChars(), o.Model)
	text, genErr := o.Personalizer.Generate(ctx, genReq)
	if genErr != nil {
		// The raw template stays usable; report the failure alongside it.
		o.logger().Warn("personalization failed, keeping raw template",
			"contact", req.Contact.ID, "template", tmpl.ID, "err", genErr)
		draft.Warning = &DraftError{
			Code:      CodePersonalizationFailed,
			ContactID: req.Contact.ID,
			Message:   "generation service failed",
			Err:       genErr,
		}
		return draft, nil
	}

	draft.Content = text
	draft.Personalized = true
	return draft, nil
}

// selectProfile honors overrides, then falls through to title matching.
func (o *Orchestrator) selectProfile(req DraftRequest) (model.Profile, string, match.Tier, error) {
	overrideID := req.OverrideProfileID
	if overrideID == "" {
		overrideID = req.Contact.ProfileOverrideID
	}
	if overrideID != "" {
		for _, p := range req.Profiles {
			if p.ID == overrideID {
				return p, "", TierOverride, nil
			}
		}
		// Stale override: the profile is gone, fall back to matching.
		o.logger().Debug("ignoring stale profile override",
			"contact", req.Contact.ID, "profile", overrideID)
	}

	r, ok := match.Match(req.Contact.Title, req.Profiles)
	if !ok {
		return model.Profile{}, "", "", &DraftError{
			Code:      CodeNoProfileMatch,
			ContactID: req.Contact.ID,
			Message:   fmt.Sprintf("no profile matches title %q", req.Contact.Title),
		}
	}
	return r.Profile, r.MatchedRole, r.Tier, nil
}

// selectTemplate resolves the template for the requested kind within the
// matched profile's templates.
func (o *Orchestrator) selectTemplate(req DraftRequest, profile model.Profile) (model.Template, error) {
	var candidates []model.Template
	for _, t := range req.Templates {
		if t.ProfileID == profile.ID {
			candidates = append(candidates, t)
		}
	}

	var tmpl model.Template
	var ok bool
	if req.Kind == model.KindFollowUp {
		completed := engagement.FollowUpCount(req.Contact.ID, req.Events)
		tmpl, ok = templates.ResolveFollowUp(candidates, completed)
	} else {
		tmpl, ok = templates.ResolveCurrent(candidates, req.Kind)
	}
	if !ok {
		return model.Template{}, &DraftError{
			Code:      CodeNoTemplateForKind,
			ContactID: req.Contact.ID,
			Message:   fmt.Sprintf("profile %q has no current %s template", profile.Name, req.Kind),
		}
	}
	return tmpl, nil
}

// RecordSend records an outbound send and advances the contact's stored
// status: note_sent for connection/message/inmail kinds, follow_up_sent for
// follow-ups. Returns the records to persist together.
func (o *Orchestrator) RecordSend(contact model.Contact, kind model.TemplateKind, templateID, channel, content string) engagement.SendEffect {
	return o.Machine.MarkSent(contact, kind, templateID, channel, content)
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

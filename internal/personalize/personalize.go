// Package personalize wraps the external text-generation service that
// turns a resolved template into prose for one contact.
//
// The service is a black box behind the Personalizer interface. Failures
// never lose content: the orchestrator keeps the raw resolved template and
// surfaces personalization_failed alongside it.
package personalize

import (
	"context"
	"strings"

	"github.com/dfaua/papooga-reach/internal/model"
)

// Request carries everything the generation service needs for one draft.
type Request struct {
	// TemplateContent is the raw resolved template text.
	TemplateContent string `json:"template_content"`

	// Contact context.
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Title       string `json:"title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	MatchedRole string `json:"matched_role,omitempty"`
	Referrer    string `json:"referrer,omitempty"`

	// Profile context.
	ProfileName string   `json:"profile_name,omitempty"`
	Industry    string   `json:"industry,omitempty"`
	PainPoints  []string `json:"pain_points,omitempty"`

	// MaxChars caps the generated text at the kind's character budget.
	MaxChars int `json:"max_chars"`

	// Model names the generation model to use, from configuration.
	Model string `json:"model,omitempty"`
}

// NewRequest assembles a Request from domain records.
func NewRequest(templateContent string, contact model.Contact, profile model.Profile, matchedRole string, maxChars int, modelName string) Request {
	return Request{
		TemplateContent: templateContent,
		MaxChars:        maxChars,
		FirstName:       contact.FirstName,
		LastName:        contact.LastName,
		Title:           contact.Title,
		CompanyName:     contact.CompanyName,
		MatchedRole:     matchedRole,
		Referrer:        contact.WarmIntroReferrer,
		ProfileName:     profile.Name,
		Industry:        profile.Industry,
		PainPoints:      profile.PainPoints,
		Model:           modelName,
	}
}

// Personalizer generates outreach prose from a template plus context.
type Personalizer interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Renderer is a deterministic local Personalizer: plain placeholder
// substitution, no network. Used as the test implementation and as the
// degenerate service for installs without a generation endpoint.
//
// Recognized placeholders: {first_name}, {last_name}, {full_name},
// {company}, {title}, {matched_role}, {referrer}. Unknown placeholders are
// left untouched.
type Renderer struct{}

// Generate substitutes placeholders and truncates to MaxChars.
func (Renderer) Generate(_ context.Context, req Request) (string, error) {
	fullName := strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	out := strings.NewReplacer(
		"{first_name}", req.FirstName,
		"{last_name}", req.LastName,
		"{full_name}", fullName,
		"{company}", req.CompanyName,
		"{title}", req.Title,
		"{matched_role}", req.MatchedRole,
		"{referrer}", req.Referrer,
	).Replace(req.TemplateContent)

	if req.MaxChars > 0 {
		if runes := []rune(out); len(runes) > req.MaxChars {
			out = string(runes[:req.MaxChars])
		}
	}
	return out, nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one outreach flow test: a playbook, contacts, steps,
// and assertions over the final state.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profiles is the playbook: profiles with their templates.
	Profiles []ProfileDef `yaml:"profiles"`

	// Contacts are created before the flow runs.
	Contacts []ContactDef `yaml:"contacts"`

	// Steps is the main flow, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final derived state.
	// Supported types: state, queue, outcome, follow_up_count
	Assertions []Assertion `yaml:"assertions"`
}

// ProfileDef declares one profile and its templates.
type ProfileDef struct {
	Name       string        `yaml:"name"`
	Roles      []string      `yaml:"roles"`
	Industry   string        `yaml:"industry,omitempty"`
	PainPoints []string      `yaml:"pain_points,omitempty"`
	Templates  []TemplateDef `yaml:"templates"`
}

// TemplateDef declares one template. Current defaults to true.
type TemplateDef struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Content  string `yaml:"content"`
	Sequence *int   `yaml:"sequence,omitempty"`
	Current  *bool  `yaml:"current,omitempty"`
}

// ContactDef declares one contact. IDs are scenario-chosen so traces and
// assertions can reference them.
type ContactDef struct {
	ID      string `yaml:"id"`
	First   string `yaml:"first,omitempty"`
	Last    string `yaml:"last,omitempty"`
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
}

// Step is one flow action.
//
// Ops:
//   - draft: draft for Contact with Kind (default connection_note).
//     Profile pins an override by profile name. The draft's content and
//     template feed the contact's next send.
//   - send: record the contact's last draft as sent. Content overrides
//     the drafted text when set.
//   - accept: advance the contact's latest event to accepted.
//   - inbound: record a received message with Content.
//   - iterate: version-bump the template named by Template.
//   - toggle: flip the current flag of the template named by Template.
type Step struct {
	Op       string `yaml:"op"`
	Contact  string `yaml:"contact,omitempty"`
	Kind     string `yaml:"kind,omitempty"`
	Channel  string `yaml:"channel,omitempty"`
	Content  string `yaml:"content,omitempty"`
	Template string `yaml:"template,omitempty"`
	Profile  string `yaml:"profile,omitempty"`

	// Expect validates the step outcome. For draft, Error names the
	// expected failure code; without it a draft failure fails the run.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step behavior. Subset match: only
// set fields are validated.
type ExpectClause struct {
	Error    string `yaml:"error,omitempty"`
	Profile  string `yaml:"profile,omitempty"`
	Tier     string `yaml:"tier,omitempty"`
	Template string `yaml:"template,omitempty"`
}

// Assertion validates final state after the flow.
type Assertion struct {
	// Type is one of: state, queue, outcome, follow_up_count.
	Type string `yaml:"type"`

	// Contact targets one contact (state, outcome, follow_up_count).
	Contact string `yaml:"contact,omitempty"`

	// Expect is the expected value (state name or outcome).
	Expect string `yaml:"expect,omitempty"`

	// Contacts is the exact expected queue membership, in store order.
	Contacts []string `yaml:"contacts"`

	// Count is the expected number of follow-ups sent.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertState         = "state"
	AssertQueue         = "queue"
	AssertOutcome       = "outcome"
	AssertFollowUpCount = "follow_up_count"
)

// Step op constants.
const (
	OpDraft   = "draft"
	OpSend    = "send"
	OpAccept  = "accept"
	OpInbound = "inbound"
	OpIterate = "iterate"
	OpToggle  = "toggle"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos like "assertion:" fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Profiles) == 0 {
		return fmt.Errorf("profiles list is required and must be non-empty")
	}
	if len(s.Contacts) == 0 {
		return fmt.Errorf("contacts list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	templateNames := map[string]bool{}
	for i, p := range s.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profiles[%d]: name is required", i)
		}
		if len(p.Roles) == 0 {
			return fmt.Errorf("profiles[%d]: roles list is required", i)
		}
		for j, tmpl := range p.Templates {
			if tmpl.Name == "" {
				return fmt.Errorf("profiles[%d].templates[%d]: name is required", i, j)
			}
			if templateNames[tmpl.Name] {
				return fmt.Errorf("profiles[%d].templates[%d]: duplicate template name %q", i, j, tmpl.Name)
			}
			templateNames[tmpl.Name] = true
		}
	}

	contactIDs := map[string]bool{}
	for i, c := range s.Contacts {
		if c.ID == "" {
			return fmt.Errorf("contacts[%d]: id is required", i)
		}
		if contactIDs[c.ID] {
			return fmt.Errorf("contacts[%d]: duplicate contact id %q", i, c.ID)
		}
		contactIDs[c.ID] = true
		if c.Title == "" {
			return fmt.Errorf("contacts[%d]: title is required", i)
		}
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpDraft, OpSend, OpAccept, OpInbound:
			if step.Contact == "" {
				return fmt.Errorf("steps[%d]: contact is required for %s", i, step.Op)
			}
			if !contactIDs[step.Contact] {
				return fmt.Errorf("steps[%d]: unknown contact %q", i, step.Contact)
			}
		case OpIterate, OpToggle:
			if step.Template == "" {
				return fmt.Errorf("steps[%d]: template is required for %s", i, step.Op)
			}
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Op == OpInbound && step.Content == "" {
			return fmt.Errorf("steps[%d]: content is required for inbound", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, contactIDs); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, contactIDs map[string]bool) error {
	switch a.Type {
	case AssertState, AssertOutcome:
		if a.Contact == "" {
			return fmt.Errorf("assertions[%d]: contact is required for %s", index, a.Type)
		}
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertFollowUpCount:
		if a.Contact == "" {
			return fmt.Errorf("assertions[%d]: contact is required for follow_up_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertQueue:
		// Empty contacts list is legal: it asserts an empty queue.
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Contact != "" && !contactIDs[a.Contact] {
		return fmt.Errorf("assertions[%d]: unknown contact %q", index, a.Contact)
	}
	return nil
}

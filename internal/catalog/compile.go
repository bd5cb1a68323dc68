package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/dfaua/papooga-reach/internal/model"
)

// CompileError is a structured playbook compilation error with the CUE
// source position when available.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Entry is one compiled playbook profile with its templates. IDs are not
// assigned here; the loader mints them when upserting into the store.
type Entry struct {
	Profile   model.Profile
	Templates []model.Template
}

// CompileProfile parses one CUE profile struct into an Entry.
//
// The CUE value is the profile struct itself, labeled with the profile
// name, e.g.:
//
//	profile: Executives: {
//		roles: ["CEO", "Chief Executive Officer"]
//		industry: "SaaS"
//		pain_points: ["churn"]
//		template: coldIntro: {
//			kind: "connection_note"
//			content: "Hi {first_name}"
//			current: true
//		}
//	}
func CompileProfile(v cue.Value) (*Entry, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Field: "profile", Message: err.Error(), Pos: v.Pos()}
	}

	entry := &Entry{}

	// Profile name comes from the struct label.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		entry.Profile.Name = labelName(labels[len(labels)-1])
	}

	roles, err := parseStringList(v.LookupPath(cue.ParsePath("roles")))
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, &CompileError{Field: "roles", Message: "at least one role is required", Pos: v.Pos()}
	}
	entry.Profile.Roles = roles

	if industryVal := v.LookupPath(cue.ParsePath("industry")); industryVal.Exists() {
		industry, err := industryVal.String()
		if err != nil {
			return nil, &CompileError{Field: "industry", Message: err.Error(), Pos: industryVal.Pos()}
		}
		entry.Profile.Industry = industry
	}

	if ppVal := v.LookupPath(cue.ParsePath("pain_points")); ppVal.Exists() {
		painPoints, err := parseStringList(ppVal)
		if err != nil {
			return nil, err
		}
		entry.Profile.PainPoints = painPoints
	}

	tmplVal := v.LookupPath(cue.ParsePath("template"))
	if tmplVal.Exists() {
		iter, err := tmplVal.Fields()
		if err != nil {
			return nil, &CompileError{Field: "template", Message: err.Error(), Pos: tmplVal.Pos()}
		}
		for iter.Next() {
			tmpl, err := compileTemplate(labelName(iter.Selector()), iter.Value())
			if err != nil {
				return nil, err
			}
			entry.Templates = append(entry.Templates, tmpl)
		}
	}

	return entry, nil
}

// compileTemplate parses one template struct. The record is validated
// here, so an invalid kind/sequence combination fails compilation with a
// source position instead of surfacing later at insert time.
func compileTemplate(name string, v cue.Value) (model.Template, error) {
	tmpl := model.Template{Name: name}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return model.Template{}, &CompileError{Field: "kind", Message: "kind is required", Pos: v.Pos()}
	}
	kind, err := kindVal.String()
	if err != nil {
		return model.Template{}, &CompileError{Field: "kind", Message: err.Error(), Pos: kindVal.Pos()}
	}
	tmpl.Kind = model.TemplateKind(kind)

	contentVal := v.LookupPath(cue.ParsePath("content"))
	if !contentVal.Exists() {
		return model.Template{}, &CompileError{Field: "content", Message: "content is required", Pos: v.Pos()}
	}
	if tmpl.Content, err = contentVal.String(); err != nil {
		return model.Template{}, &CompileError{Field: "content", Message: err.Error(), Pos: contentVal.Pos()}
	}

	if notesVal := v.LookupPath(cue.ParsePath("notes")); notesVal.Exists() {
		if tmpl.Notes, err = notesVal.String(); err != nil {
			return model.Template{}, &CompileError{Field: "notes", Message: err.Error(), Pos: notesVal.Pos()}
		}
	}

	if currentVal := v.LookupPath(cue.ParsePath("current")); currentVal.Exists() {
		if tmpl.IsCurrent, err = currentVal.Bool(); err != nil {
			return model.Template{}, &CompileError{Field: "current", Message: err.Error(), Pos: currentVal.Pos()}
		}
	} else {
		// Authored templates default to active.
		tmpl.IsCurrent = true
	}

	if seqVal := v.LookupPath(cue.ParsePath("sequence")); seqVal.Exists() {
		seq64, err := seqVal.Int64()
		if err != nil {
			return model.Template{}, &CompileError{Field: "sequence", Message: err.Error(), Pos: seqVal.Pos()}
		}
		seq := int(seq64)
		tmpl.SequenceNumber = &seq
	}

	if err := tmpl.Validate(); err != nil {
		return model.Template{}, &CompileError{Field: "template." + name, Message: err.Error(), Pos: v.Pos()}
	}
	return tmpl, nil
}

// labelName unwraps a field label: quoted string labels ("Sales Leaders")
// lose their quotes, identifier labels pass through unchanged.
func labelName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func parseStringList(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "list", Message: err.Error(), Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: "list", Message: err.Error(), Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

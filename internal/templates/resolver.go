package templates

import (
	"github.com/dfaua/papooga-reach/internal/model"
)

// ResolveCurrent returns the current template of the requested kind from
// tmpls, which holds one profile's templates in any order.
//
// If several rows qualify (duplicate is_current is legal, see package doc),
// the most recently created one wins. Returns false when no row qualifies;
// no partial state exists, so callers can retry with another kind.
func ResolveCurrent(tmpls []model.Template, kind model.TemplateKind) (model.Template, bool) {
	var best model.Template
	found := false
	for _, t := range tmpls {
		if !t.IsCurrent || t.Kind != kind {
			continue
		}
		if !found || newerThan(t, best) {
			best = t
			found = true
		}
	}
	return best, found
}

// ResolveFollowUp returns the follow-up template for a contact who has
// already completed completedFollowUps follow-up sends.
//
// target = completedFollowUps + 1. An is_current follow_up row with exactly
// that sequence wins. Failing that, the is_current follow_up row with the
// LARGEST sequence <= target is reused, so a two-step sequence keeps
// sending step 2 forever instead of going silent once the contact has been
// followed up with more times than steps exist. That fallback is a design
// choice, not an oversight. Returns false only when no candidate exists.
func ResolveFollowUp(tmpls []model.Template, completedFollowUps int) (model.Template, bool) {
	if completedFollowUps < 0 {
		completedFollowUps = 0
	}
	target := completedFollowUps + 1

	var best model.Template
	found := false
	for _, t := range tmpls {
		if !t.IsCurrent || t.Kind != model.KindFollowUp || t.SequenceNumber == nil {
			continue
		}
		seq := *t.SequenceNumber
		if seq > target {
			continue
		}
		switch {
		case !found:
			best = t
			found = true
		case seq > best.Seq():
			best = t
		case seq == best.Seq() && newerThan(t, best):
			best = t
		}
	}
	return best, found
}

// newerThan orders templates by creation time, newest first, breaking exact
// timestamp ties by ID. IDs are UUIDv7, so the lexicographic comparison
// stays aligned with insertion order.
func newerThan(a, b model.Template) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

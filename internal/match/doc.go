// Package match maps a contact's free-text job title onto the best-fit
// outreach profile.
//
// Matching runs three tiers in strict priority order, first hit wins:
//
//  1. Exact: the title equals a profile role, case-insensitively.
//  2. Substring: a profile role occurs inside the title. Roles across ALL
//     profiles are tried longest-first so "Project Manager" beats "Manager"
//     when both would match.
//  3. Alias: a fixed table of word-boundary patterns canonicalizes common
//     C-level/VP spellings ("chief executive officer" -> "CEO"); the
//     canonical role is then looked up in the profiles' role lists.
//
// The matcher is stateless. Manual per-contact overrides bypass it entirely
// and live with the caller (see pipeline.Orchestrator).
package match

// Package catalog compiles CUE playbook files into profile and template
// records.
//
// Playbooks are how operators author targeting: each profile declares its
// roles, industry, pain points, and template set in CUE, and compilation
// enforces the creation-time invariants before anything reaches the store:
// a follow_up template must carry sequence >= 1, any other kind must not
// carry one, and content must fit the kind's character budget.
//
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
package catalog

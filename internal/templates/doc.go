// Package templates resolves which template to send and governs template
// versioning.
//
// Resolution is a pure function over the template rows supplied by the
// caller. The store permits more than one is_current row per
// profile/kind/sequence (the versioner's ToggleCurrent never cascades), so
// every selection point applies the same deterministic policy: most
// recently created wins, with the time-sortable row ID breaking exact
// creation-time ties. Replaying the same rows always yields the same pick.
package templates

// Package store is the SQLite record store behind the outreach pipeline.
//
// It holds contacts, profiles, templates, and the two append-only event
// streams (outreach_events, messages) that engagement state derives from.
//
// Write discipline:
//   - Event and message inserts use ON CONFLICT DO NOTHING, so re-applying
//     an effect is idempotent.
//   - Outcome updates are guarded at the row level: the UPDATE names the
//     outcomes it may move from, so concurrent forward writes commute and
//     a backward move matches zero rows instead of corrupting state.
//   - An inbound message and the outcome it resolves commit in one
//     transaction; eligibility loss and the replied outcome are observed
//     together or not at all.
//
// Reads order by the logical clock seq (ID breaks exact ties), never by
// wall-clock timestamps.
package store

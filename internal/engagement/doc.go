// Package engagement reconstructs a contact's true pipeline position from
// the append-only OutreachEvent and Message streams.
//
// The stored Contact.Status is set manually at send time and can be stale
// (a reply may land before anyone updates it), so nothing here trusts it:
// work-queue membership and follow-up eligibility are pure functions over
// the two streams.
//
// All outcome writes are forward-only (pending -> accepted -> replied,
// pending -> replied). Forward-only writes commute: an inbound reply racing
// a human clicking "mark accepted" on the same event converges on the same
// final outcome under any interleaving, and a backward move is rejected as
// a silent no-op rather than an error.
//
// Ordering uses the logical clock seq stamped on every event and message,
// never wall-clock timestamps.
package engagement

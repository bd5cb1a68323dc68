// Package model defines the outreach domain records and their closed enums.
//
// Records mirror the rows owned by the external store: Contact, Profile,
// Template, OutreachEvent, Message. Two of them (OutreachEvent, Message)
// are append-only event streams; engagement state is always derived from
// those streams, never trusted from a stored field.
//
// Outcome is a closed tagged enum with an explicit forward-only transition
// table. All outcome writes in the system go through Outcome.CanAdvanceTo,
// so a backward move is impossible regardless of caller interleaving.
package model

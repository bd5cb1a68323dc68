// Package harness runs YAML-defined outreach scenarios end to end.
//
// A scenario declares a playbook (profiles and templates), a set of
// contacts, and a sequence of pipeline steps: draft, send, accept,
// inbound, iterate, toggle. Each scenario executes against a fresh
// in-memory SQLite store with sequential IDs and a fixed clock, so the
// same scenario always produces byte-identical traces. Golden files
// under testdata/golden pin those traces; assertions check derived
// state, queue membership, and outcomes after the flow completes.
package harness

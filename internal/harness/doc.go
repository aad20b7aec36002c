// Package harness runs shopping-session scenarios end to end.
//
// A scenario is a YAML file describing a canned catalog, a sequence of
// shopper steps (searches, cart edits, checkout actions, clock
// advances), and assertions over the resulting trace and final state.
// Each run uses a fresh in-memory database, a manually advanced clock,
// and a scripted catalog, so every suspension point (debounce windows,
// simulated payment latency) resumes exactly when the scenario says it
// does. Runs are fully deterministic and their traces can be compared
// against golden files.
package harness

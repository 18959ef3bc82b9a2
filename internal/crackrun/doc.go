// Package crackrun wires one crack run end to end.
//
// Run installs signal handling, assigns a run id, takes the per-state-dir run
// lock, builds the run logger, runs preflight checks, records the run in the
// history ledger, publishes notifications, and drives search.Coordinator. After
// a successful search it optionally extracts the archive.
package crackrun

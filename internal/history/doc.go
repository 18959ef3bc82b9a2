// Package history records crack runs in a SQLite ledger.
//
// Each run is inserted as running when the search starts and finished with
// its terminal status, attempt counters and elapsed time. The found password
// is never written to the database. Runs left in the running state by a
// process that died are marked failed by ReconcileInterrupted.
package history

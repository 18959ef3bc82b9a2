// Package preflight provides readiness checks run before a crack search
// starts.
//
// RunAll checks the target archive (present, readable, a ZIP with encrypted
// entries), the output location, and the state directory when history is
// enabled. Advisory results are reported as warnings; any other failed result
// aborts the run before workers are launched.
package preflight

// Package logs finds and reads the per-run JSON logs that crack runs write
// under log_dir.
//
// Run logs are named zipcrack-<run id>.log. Locate resolves a run id (or a
// unique prefix of one, as printed by `zipcrack history`) to its file, Tail
// reads the last lines and optionally waits for more while a search is still
// running, and Format renders a JSON record as a compact console line.
package logs

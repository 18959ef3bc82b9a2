// Package search runs a parallel brute-force password search.
//
// A Coordinator splits the alphabet into first-symbol partitions, launches one
// Worker per non-empty partition, and polls a shared ResultChannel with a
// bounded wait until a worker reports the password, every worker finishes, or
// the caller cancels. Workers observe a shared StopSignal before every
// candidate. Shutdown cancels the workers' context and joins each one with a
// bounded timeout; a worker that misses the deadline is logged and abandoned.
//
// The found password is handed to a Sink. FileSink writes it verbatim to the
// output path.
package search

// Package keyspace models the fixed-length password space searched by the
// crack engine.
//
// An Alphabet is an ordered, duplicate-free symbol set. Split distributes the
// alphabet's symbols round-robin into first-character partitions, one per
// worker, so the partitions cover the alphabet exactly once. A Generator
// lazily enumerates every candidate that starts with one of its partition's
// symbols, trailing positions varying fastest, without materializing the
// keyspace.
package keyspace

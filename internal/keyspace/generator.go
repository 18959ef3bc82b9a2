package keyspace

import "iter"

// Generator enumerates the candidates of one partition.
type Generator struct {
	First    []rune
	Alphabet Alphabet
	Length   int
}

// Candidates yields every candidate in deterministic order: first symbols in
// partition order, then the remaining Length-1 positions over the full
// alphabet with the rightmost position varying fastest. stop is consulted
// before each candidate is produced; once it reports true the sequence ends.
// A nil stop never stops. Length below 1 yields nothing.
func (g Generator) Candidates(stop func() bool) iter.Seq[string] {
	if stop == nil {
		stop = func() bool { return false }
	}
	return func(yield func(string) bool) {
		if g.Length < 1 || len(g.First) == 0 {
			return
		}
		if g.Length > 1 && len(g.Alphabet) == 0 {
			return
		}

		buf := make([]rune, g.Length)
		odometer := make([]int, g.Length-1)
		for _, first := range g.First {
			if stop() {
				return
			}
			buf[0] = first
			for i := range odometer {
				odometer[i] = 0
				buf[i+1] = g.Alphabet[0]
			}
			for {
				if stop() {
					return
				}
				if !yield(string(buf)) {
					return
				}
				if !g.advance(odometer, buf) {
					break
				}
			}
		}
	}
}

// advance steps the trailing positions to the next combination and reports
// false once every combination has been produced.
func (g Generator) advance(odometer []int, buf []rune) bool {
	for pos := len(odometer) - 1; pos >= 0; pos-- {
		odometer[pos]++
		if odometer[pos] < len(g.Alphabet) {
			buf[pos+1] = g.Alphabet[odometer[pos]]
			return true
		}
		odometer[pos] = 0
		buf[pos+1] = g.Alphabet[0]
	}
	return false
}

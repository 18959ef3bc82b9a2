package keyspace

import (
	"math/big"

	"github.com/samber/lo"
)

// Partition is the ordered set of first symbols assigned to one worker.
type Partition struct {
	Index int
	First []rune
}

// Empty reports whether the partition has no first symbols.
func (p Partition) Empty() bool { return len(p.First) == 0 }

// Size returns the number of candidates the partition covers for the given
// alphabet and password length.
func (p Partition) Size(alphabetLen, length int) *big.Int {
	per := PerFirstSymbol(alphabetLen, length)
	return per.Mul(per, big.NewInt(int64(len(p.First))))
}

// Split assigns the symbol at index i to partition i mod n. It always returns
// n partitions (n < 1 is treated as 1); partitions beyond the alphabet size
// are empty.
func Split(alphabet Alphabet, n int) []Partition {
	if n < 1 {
		n = 1
	}
	parts := make([]Partition, n)
	for i := range parts {
		parts[i].Index = i
	}
	for i, symbol := range alphabet {
		slot := &parts[i%n]
		slot.First = append(slot.First, symbol)
	}
	return parts
}

// NonEmpty drops partitions without first symbols; those workers are never launched.
func NonEmpty(parts []Partition) []Partition {
	return lo.Filter(parts, func(p Partition, _ int) bool {
		return !p.Empty()
	})
}

package keyspace

import (
	"errors"
	"fmt"
	"math/big"
)

// DefaultAlphabet is lowercase ASCII letters followed by digits.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ErrEmptyAlphabet is returned when an alphabet has no symbols.
var ErrEmptyAlphabet = errors.New("alphabet must contain at least one symbol")

// Alphabet is an ordered set of distinct symbols.
type Alphabet []rune

// NewAlphabet parses symbols in order and rejects empty or repeated input.
func NewAlphabet(symbols string) (Alphabet, error) {
	if symbols == "" {
		return nil, ErrEmptyAlphabet
	}
	runes := []rune(symbols)
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		if _, dup := seen[r]; dup {
			return nil, fmt.Errorf("alphabet symbol %q repeated", r)
		}
		seen[r] = struct{}{}
	}
	return Alphabet(runes), nil
}

// Len reports the number of symbols.
func (a Alphabet) Len() int { return len(a) }

func (a Alphabet) String() string { return string(a) }

// Size returns |alphabet|^length, the number of candidates in the keyspace.
// Lengths below 1 yield zero.
func Size(alphabetLen, length int) *big.Int {
	if alphabetLen < 1 || length < 1 {
		return big.NewInt(0)
	}
	return new(big.Int).Exp(big.NewInt(int64(alphabetLen)), big.NewInt(int64(length)), nil)
}

// PerFirstSymbol returns the number of candidates sharing one first symbol,
// |alphabet|^(length-1).
func PerFirstSymbol(alphabetLen, length int) *big.Int {
	if alphabetLen < 1 || length < 1 {
		return big.NewInt(0)
	}
	return new(big.Int).Exp(big.NewInt(int64(alphabetLen)), big.NewInt(int64(length-1)), nil)
}

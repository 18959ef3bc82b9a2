package keyspace_test

import (
	"math/big"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zipcrack/internal/keyspace"
)

func mustAlphabet(t *testing.T, symbols string) keyspace.Alphabet {
	t.Helper()
	alphabet, err := keyspace.NewAlphabet(symbols)
	require.NoError(t, err)
	return alphabet
}

func TestNewAlphabetRejectsEmptyAndDuplicates(t *testing.T) {
	_, err := keyspace.NewAlphabet("")
	require.ErrorIs(t, err, keyspace.ErrEmptyAlphabet)

	_, err = keyspace.NewAlphabet("abca")
	require.Error(t, err)

	alphabet := mustAlphabet(t, keyspace.DefaultAlphabet)
	require.Equal(t, 36, alphabet.Len())
	require.Equal(t, keyspace.DefaultAlphabet, alphabet.String())
}

func TestSplitCoversAlphabetExactlyOnce(t *testing.T) {
	alphabet := mustAlphabet(t, keyspace.DefaultAlphabet)
	for n := -1; n <= 40; n++ {
		parts := keyspace.Split(alphabet, n)
		wantParts := max(n, 1)
		require.Len(t, parts, wantParts, "n=%d", n)

		var union []rune
		for i, part := range parts {
			require.Equal(t, i, part.Index)
			union = append(union, part.First...)
		}
		sorted := slices.Clone(union)
		slices.Sort(sorted)
		want := slices.Clone([]rune(alphabet))
		slices.Sort(want)
		require.Equal(t, want, sorted, "n=%d: partitions must cover the alphabet exactly once", n)
	}
}

func TestSplitIsRoundRobin(t *testing.T) {
	alphabet := mustAlphabet(t, "abcdefg")
	parts := keyspace.Split(alphabet, 3)
	require.Equal(t, "adg", string(parts[0].First))
	require.Equal(t, "be", string(parts[1].First))
	require.Equal(t, "cf", string(parts[2].First))

	sizes := make([]int, len(parts))
	for i, p := range parts {
		sizes[i] = len(p.First)
	}
	sort.Ints(sizes)
	require.LessOrEqual(t, sizes[len(sizes)-1]-sizes[0], 1, "partition sizes must differ by at most one")
}

func TestNonEmptyDropsSurplusWorkers(t *testing.T) {
	alphabet := mustAlphabet(t, "ab")
	parts := keyspace.NonEmpty(keyspace.Split(alphabet, 5))
	require.Len(t, parts, 2)
	require.Equal(t, "a", string(parts[0].First))
	require.Equal(t, "b", string(parts[1].First))
}

func TestSizes(t *testing.T) {
	require.Equal(t, "2176782336", keyspace.Size(36, 6).String())
	require.Equal(t, int64(0), keyspace.Size(36, 0).Int64())
	require.Equal(t, int64(0), keyspace.Size(0, 3).Int64())
	require.Equal(t, int64(1), keyspace.PerFirstSymbol(36, 1).Int64())

	huge := keyspace.Size(62, 20)
	want := new(big.Int).Exp(big.NewInt(62), big.NewInt(20), nil)
	require.Zero(t, want.Cmp(huge))

	part := keyspace.Partition{First: []rune("abc")}
	require.Equal(t, int64(3*36*36), part.Size(36, 3).Int64())
}

func collect(g keyspace.Generator, stop func() bool) []string {
	var out []string
	for candidate := range g.Candidates(stop) {
		out = append(out, candidate)
	}
	return out
}

func TestGeneratorIsExhaustiveAndLexicographic(t *testing.T) {
	alphabet := mustAlphabet(t, "abc")
	g := keyspace.Generator{First: []rune("ca"), Alphabet: alphabet, Length: 3}
	got := collect(g, nil)

	require.Len(t, got, 2*9)
	require.Equal(t, []string{"caa", "cab", "cac", "cba"}, got[:4])
	require.Equal(t, "ccc", got[8])
	require.Equal(t, "aaa", got[9])
	require.Equal(t, "acc", got[17])

	for _, first := range []string{"c", "a"} {
		var trailing []string
		for _, candidate := range got {
			if strings.HasPrefix(candidate, first) {
				trailing = append(trailing, candidate[1:])
			}
		}
		require.Len(t, trailing, 9)
		require.True(t, slices.IsSorted(trailing), "trailing positions for %q must be lexicographic", first)
		require.Len(t, slicesCompactCopy(trailing), 9, "no duplicates for %q", first)
	}
}

func slicesCompactCopy(values []string) []string {
	cp := slices.Clone(values)
	slices.Sort(cp)
	return slices.Compact(cp)
}

func TestGeneratorCountMatchesPerFirstSymbol(t *testing.T) {
	alphabet := mustAlphabet(t, "ab12")
	for length := 1; length <= 5; length++ {
		g := keyspace.Generator{First: []rune("b2"), Alphabet: alphabet, Length: length}
		want := 2 * keyspace.PerFirstSymbol(alphabet.Len(), length).Int64()
		require.Equal(t, want, int64(len(collect(g, nil))), "length=%d", length)
	}
}

func TestGeneratorLengthOneYieldsFirstSymbols(t *testing.T) {
	alphabet := mustAlphabet(t, "xyz")
	g := keyspace.Generator{First: []rune("zx"), Alphabet: alphabet, Length: 1}
	require.Equal(t, []string{"z", "x"}, collect(g, nil))
}

func TestGeneratorInvalidLengthYieldsNothing(t *testing.T) {
	alphabet := mustAlphabet(t, "xyz")
	for _, length := range []int{0, -3} {
		g := keyspace.Generator{First: []rune("x"), Alphabet: alphabet, Length: length}
		require.Empty(t, collect(g, nil))
	}
}

func TestGeneratorHonoursStop(t *testing.T) {
	alphabet := mustAlphabet(t, "abc")
	g := keyspace.Generator{First: []rune("abc"), Alphabet: alphabet, Length: 4}

	produced := 0
	stop := func() bool { return produced >= 5 }
	for range g.Candidates(stop) {
		produced++
	}
	require.Equal(t, 5, produced)

	require.Empty(t, collect(g, func() bool { return true }))
}

func TestGeneratorEarlyBreak(t *testing.T) {
	alphabet := mustAlphabet(t, "ab")
	g := keyspace.Generator{First: []rune("ab"), Alphabet: alphabet, Length: 2}
	var got []string
	for candidate := range g.Candidates(nil) {
		got = append(got, candidate)
		if candidate == "ba" {
			break
		}
	}
	require.Equal(t, []string{"aa", "ab", "ba"}, got)
}

func TestGeneratorIsRepeatable(t *testing.T) {
	alphabet := mustAlphabet(t, "a1")
	g := keyspace.Generator{First: []rune("1"), Alphabet: alphabet, Length: 3}
	require.Equal(t, collect(g, nil), collect(g, nil))
	require.Equal(t, []string{"1aa", "1a1", "11a", "111"}, collect(g, nil))
}

func TestFormatCount(t *testing.T) {
	huge, ok := new(big.Int).SetString("1234567890123456789012", 10)
	require.True(t, ok)

	tests := []struct {
		in   *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{big.NewInt(999), "999"},
		{keyspace.Size(36, 6), "2,176,782,336"},
		{huge, "1,234,567,890,123,456,789,012"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, keyspace.FormatCount(tc.in))
	}
}

// Package seq holds the continuous sequence representation used by the
// design driver: a logits tensor over (sequence, position, residue), the
// residue alphabet, additive bias constraints, and derived sequence metrics.
package seq

import (
	"fmt"
	"strings"
)

// #region alphabet

// Residues lists the 20 standard amino acids in the residue-type order the
// structure oracle expects.
const Residues = "ARNDCQEGHILKMFPSTWYV"

// AlphabetSize is len(Residues).
const AlphabetSize = 20

var residueIndex = func() map[byte]int {
	m := make(map[byte]int, len(Residues))
	for i := 0; i < len(Residues); i++ {
		m[Residues[i]] = i
	}
	return m
}()

// ResidueIndex returns the alphabet index of a one-letter residue code.
func ResidueIndex(r byte) (int, bool) {
	i, ok := residueIndex[r]
	return i, ok
}

// Encode converts a one-letter residue string to alphabet indices.
func Encode(s string) ([]int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		idx, ok := residueIndex[s[i]]
		if !ok {
			return nil, fmt.Errorf("encode sequence: unknown residue %q at position %d", s[i], i)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode converts alphabet indices back to a one-letter residue string.
// Out-of-range indices decode as 'X'.
func Decode(idx []int) string {
	var b strings.Builder
	b.Grow(len(idx))
	for _, v := range idx {
		if v < 0 || v >= len(Residues) {
			b.WriteByte('X')
			continue
		}
		b.WriteByte(Residues[v])
	}
	return b.String()
}

// #endregion alphabet

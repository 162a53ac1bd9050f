package seq

import "fmt"

// #region bias

// ForceOffset is the additive logit magnitude used to pin or forbid a
// residue identity. It dominates any value the optimizer can reach without
// overflowing float32 softmax inputs.
const ForceOffset = 1e8

// Bias is a (Length, Alphabet) additive offset matrix applied to every
// sequence row before the oracle consumes the logits. Large positive
// entries force an identity, large negative entries forbid one.
type Bias struct {
	Data     []float32
	Length   int
	Alphabet int
}

// NewBias returns a zero bias for the given shape.
func NewBias(length, alphabet int) Bias {
	return Bias{Data: make([]float32, length*alphabet), Length: length, Alphabet: alphabet}
}

// Clone returns a deep copy.
func (b Bias) Clone() Bias {
	out := b
	out.Data = make([]float32, len(b.Data))
	copy(out.Data, b.Data)
	return out
}

// At returns the offset at (position, residue).
func (b Bias) At(l, a int) float32 {
	return b.Data[l*b.Alphabet+a]
}

// Add accumulates an offset at (position, residue).
func (b Bias) Add(l, a int, v float32) {
	b.Data[l*b.Alphabet+a] += v
}

// IsZero reports whether every entry is zero.
func (b Bias) IsZero() bool {
	for _, v := range b.Data {
		if v != 0 {
			return false
		}
	}
	return true
}

// ForbidResidues subtracts ForceOffset for each listed one-letter residue
// at every position, removing those identities from the search.
func (b Bias) ForbidResidues(residues string) error {
	for i := 0; i < len(residues); i++ {
		r := residues[i]
		if r == ',' || r == ' ' {
			continue
		}
		a, ok := ResidueIndex(r)
		if !ok {
			return fmt.Errorf("forbid residues: unknown residue %q", r)
		}
		for l := 0; l < b.Length; l++ {
			b.Add(l, a, -ForceOffset)
		}
	}
	return nil
}

// ForceSequence adds ForceOffset toward the given sequence's identity at
// each position, pinning the design to it.
func (b Bias) ForceSequence(s string) error {
	idx, err := Encode(s)
	if err != nil {
		return fmt.Errorf("force sequence: %w", err)
	}
	if len(idx) != b.Length {
		return fmt.Errorf("force sequence: length %d does not match bias length %d", len(idx), b.Length)
	}
	for l, a := range idx {
		b.Add(l, a, ForceOffset)
	}
	return nil
}

// #endregion bias

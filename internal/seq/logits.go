package seq

import (
	"fmt"
	"math"

	"github.com/vxh357/ColabDesign/internal/prng"
)

// #region tensor

// Logits is a dense float32 tensor shaped (Seqs, Length, Alphabet) of
// unnormalized per-position residue scores. The design driver owns the
// current Logits exclusively and replaces it on every accepted update;
// methods here return new tensors and never mutate their receiver unless
// named InPlace.
type Logits struct {
	Data     []float32
	Seqs     int
	Length   int
	Alphabet int
}

// NewLogits returns a zero tensor of the given shape.
func NewLogits(seqs, length, alphabet int) Logits {
	return Logits{
		Data:     make([]float32, seqs*length*alphabet),
		Seqs:     seqs,
		Length:   length,
		Alphabet: alphabet,
	}
}

// ShapeEquals reports whether two tensors have identical dimensions.
func (x Logits) ShapeEquals(y Logits) bool {
	return x.Seqs == y.Seqs && x.Length == y.Length && x.Alphabet == y.Alphabet
}

func (x Logits) index(s, l, a int) int {
	return (s*x.Length+l)*x.Alphabet + a
}

// At returns the score at (seq, position, residue).
func (x Logits) At(s, l, a int) float32 {
	return x.Data[x.index(s, l, a)]
}

// Set writes the score at (seq, position, residue).
func (x Logits) Set(s, l, a int, v float32) {
	x.Data[x.index(s, l, a)] = v
}

// Clone returns a deep copy.
func (x Logits) Clone() Logits {
	y := x
	y.Data = make([]float32, len(x.Data))
	copy(y.Data, x.Data)
	return y
}

// #endregion tensor

// #region fills

// FillNormal overwrites the tensor with scale * N(0,1) draws.
func (x Logits) FillNormal(stream *prng.Stream, scale float64) {
	for i := range x.Data {
		x.Data[i] = float32(scale * stream.Normal())
	}
}

// FillGumbel overwrites the tensor with scale * Gumbel(0,1) draws.
func (x Logits) FillGumbel(stream *prng.Stream, scale float64) {
	for i := range x.Data {
		x.Data[i] = float32(scale * stream.Gumbel())
	}
}

// #endregion fills

// #region ops

// Add returns x + y elementwise.
func (x Logits) Add(y Logits) (Logits, error) {
	if !x.ShapeEquals(y) {
		return Logits{}, fmt.Errorf("add logits: shape mismatch (%d,%d,%d) vs (%d,%d,%d)",
			x.Seqs, x.Length, x.Alphabet, y.Seqs, y.Length, y.Alphabet)
	}
	out := x.Clone()
	for i, v := range y.Data {
		out.Data[i] += v
	}
	return out, nil
}

// AddBias returns a copy of x with the (Length, Alphabet) bias matrix added
// to every sequence row.
func (x Logits) AddBias(b Bias) (Logits, error) {
	if b.Length != x.Length || b.Alphabet != x.Alphabet {
		return Logits{}, fmt.Errorf("add bias: shape mismatch (%d,%d) vs logits (%d,%d)",
			b.Length, b.Alphabet, x.Length, x.Alphabet)
	}
	out := x.Clone()
	for s := 0; s < x.Seqs; s++ {
		base := s * x.Length * x.Alphabet
		for i, v := range b.Data {
			out.Data[base+i] += v
		}
	}
	return out, nil
}

// Scale returns x with every entry multiplied by v.
func (x Logits) Scale(v float32) Logits {
	out := x.Clone()
	for i := range out.Data {
		out.Data[i] *= v
	}
	return out
}

// Softmax returns the temperature-scaled softmax over the alphabet axis.
// The row maximum is subtracted before exponentiation so large bias offsets
// stay finite. temp must be > 0.
func (x Logits) Softmax(temp float64) Logits {
	out := x.Clone()
	for s := 0; s < x.Seqs; s++ {
		for l := 0; l < x.Length; l++ {
			row := out.Data[out.index(s, l, 0) : out.index(s, l, 0)+x.Alphabet]
			maxv := row[0]
			for _, v := range row[1:] {
				if v > maxv {
					maxv = v
				}
			}
			var sum float64
			for i, v := range row {
				e := math.Exp(float64(v-maxv) / temp)
				row[i] = float32(e)
				sum += e
			}
			for i := range row {
				row[i] = float32(float64(row[i]) / sum)
			}
		}
	}
	return out
}

// Argmax returns the highest-scoring residue index per (sequence, position),
// first index winning ties.
func (x Logits) Argmax() [][]int {
	out := make([][]int, x.Seqs)
	for s := 0; s < x.Seqs; s++ {
		out[s] = make([]int, x.Length)
		for l := 0; l < x.Length; l++ {
			best, bestV := 0, x.At(s, l, 0)
			for a := 1; a < x.Alphabet; a++ {
				if v := x.At(s, l, a); v > bestV {
					best, bestV = a, v
				}
			}
			out[s][l] = best
		}
	}
	return out
}

// OneHot builds a 0/1 tensor from per-sequence residue index rows.
func OneHot(rows [][]int, alphabet int) Logits {
	seqs := len(rows)
	length := 0
	if seqs > 0 {
		length = len(rows[0])
	}
	out := NewLogits(seqs, length, alphabet)
	for s, row := range rows {
		for l, a := range row {
			if a >= 0 && a < alphabet {
				out.Set(s, l, a, 1)
			}
		}
	}
	return out
}

// Blend returns (1-w)*x + w*y elementwise.
func Blend(x, y Logits, w float64) (Logits, error) {
	if !x.ShapeEquals(y) {
		return Logits{}, fmt.Errorf("blend logits: shape mismatch")
	}
	out := x.Clone()
	for i := range out.Data {
		out.Data[i] = float32((1-w)*float64(x.Data[i]) + w*float64(y.Data[i]))
	}
	return out, nil
}

// #endregion ops

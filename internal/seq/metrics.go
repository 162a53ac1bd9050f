package seq

import "math"

// #region metrics

// Identity returns the fraction of positions where the two index slices
// agree, over the shorter common range. Zero-length input yields 0.
func Identity(a, b []int) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	match := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			match++
		}
	}
	return float64(match) / float64(n)
}

// MeanEntropy returns the mean per-position Shannon entropy (nats) of a
// probability tensor, averaged over sequences and positions.
func MeanEntropy(p Logits) float64 {
	if p.Seqs == 0 || p.Length == 0 {
		return 0
	}
	var total float64
	for s := 0; s < p.Seqs; s++ {
		for l := 0; l < p.Length; l++ {
			for a := 0; a < p.Alphabet; a++ {
				v := float64(p.At(s, l, a))
				if v > 0 {
					total -= v * math.Log(v)
				}
			}
		}
	}
	return total / float64(p.Seqs*p.Length)
}

// #endregion metrics

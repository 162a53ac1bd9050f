package design

import (
	"context"
	"fmt"
	"log"

	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/prng"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region config

// SemigreedyConfig controls the discrete local search.
type SemigreedyConfig struct {
	Iters int
	Tries int

	Dropout bool
	// UsePLDDT biases mutation positions toward low predicted confidence.
	UsePLDDT bool
	SaveBest bool
}

// DefaultSemigreedyConfig matches the usual post-design polish settings.
func DefaultSemigreedyConfig() SemigreedyConfig {
	return SemigreedyConfig{Iters: 100, Tries: 20, UsePLDDT: true, SaveBest: true}
}

// Validate rejects settings the search cannot run.
func (c SemigreedyConfig) Validate() error {
	if c.Iters < 1 {
		return fmt.Errorf("semigreedy config: iters must be >= 1, got %d", c.Iters)
	}
	if c.Tries < 1 {
		return fmt.Errorf("semigreedy config: tries must be >= 1, got %d", c.Tries)
	}
	return nil
}

// Decision records one accepted semigreedy mutation and the candidate
// losses it won against.
type Decision struct {
	Step     int       `json:"step"`
	Tries    int       `json:"tries"`
	Position int       `json:"position"`
	Identity string    `json:"identity"`
	Losses   []float64 `json:"losses"`
	Loss     float64   `json:"loss"`
}

// #endregion config

// #region search

// DesignSemigreedy runs a discrete local search over single-position
// mutations, using only gradient-free oracle calls. Each outer iteration
// proposes Tries candidates from the current discretized sequence and
// accepts the one with the lowest loss, improving or not.
func (s *Session) DesignSemigreedy(ctx context.Context, cfg SemigreedyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	Overrides{
		Hard:    f64p(1),
		Soft:    f64p(1),
		Temp:    f64p(1),
		Dropout: boolp(cfg.Dropout),
	}.apply(&s.opts)

	positions := s.mutablePositions()
	if len(positions) == 0 {
		return fmt.Errorf("semigreedy: no mutable positions")
	}
	log.Printf("[DESIGN] semigreedy: iters=%d tries=%d positions=%d", cfg.Iters, cfg.Tries, len(positions))

	// A fresh session has no discretized sequence or confidence yet; run
	// one evaluation-only pass to obtain them.
	if s.k == 0 {
		res, err := s.ad.Evaluate(ctx, s.state.Seq, s.opts, s.key.Split(), false)
		if err != nil {
			return fmt.Errorf("semigreedy: %w", err)
		}
		s.setResult(res)
	}

	for i := 0; i < cfg.Iters; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := s.aux.SeqHard
		plddt := s.mutationBias(positions, cfg.UsePLDDT)

		var (
			bestRes      oracle.Result
			bestCand     seq.Logits
			bestP, bestA int
			have         bool
		)
		tryLosses := make([]float64, 0, cfg.Tries)
		for t := 0; t < cfg.Tries; t++ {
			cand, p, a, err := s.mutate(base, positions, plddt)
			if err != nil {
				return fmt.Errorf("semigreedy: %w", err)
			}
			res, err := s.ad.Evaluate(ctx, cand, s.opts, s.key.Split(), false)
			if err != nil {
				return fmt.Errorf("semigreedy try %d: %w", t, err)
			}
			tryLosses = append(tryLosses, res.Loss)
			if !have || res.Loss < bestRes.Loss {
				bestRes, bestCand, bestP, bestA, have = res, cand, p, a, true
			}
		}

		s.state.Seq = bestCand
		s.setResult(bestRes)
		s.decisions = append(s.decisions, Decision{
			Step:     s.k,
			Tries:    cfg.Tries,
			Position: bestP,
			Identity: string(seq.Residues[bestA]),
			Losses:   tryLosses,
			Loss:     bestRes.Loss,
		})
		s.record(bestRes, cfg.SaveBest, true)
		s.k++
	}
	return nil
}

// mutablePositions lists the positions open to mutation: the unconstrained
// complement for partial designs, the whole designed region otherwise.
func (s *Session) mutablePositions() []int {
	if s.cfg.Protocol == ProtocolPartial {
		constrained := make(map[int]bool, len(s.opts.Pos))
		for _, p := range s.opts.Pos {
			constrained[p] = true
		}
		out := make([]int, 0, s.cfg.Length-len(constrained))
		for i := 0; i < s.cfg.Length; i++ {
			if !constrained[i] {
				out = append(out, i)
			}
		}
		return out
	}
	out := make([]int, s.cfg.Length)
	for i := range out {
		out[i] = i
	}
	return out
}

// mutationBias gathers predicted confidence for the mutable positions.
// Binder designs index into the binder region of the prediction; a nil
// return means uniform position sampling.
func (s *Session) mutationBias(positions []int, use bool) []float32 {
	if !use || len(s.aux.PLDDT) == 0 {
		return nil
	}
	view := s.aux.PLDDT
	if s.cfg.Protocol == ProtocolBinder && len(view) > s.cfg.TargetLen {
		view = view[s.cfg.TargetLen:]
	}
	out := make([]float32, len(positions))
	for j, p := range positions {
		if p >= len(view) {
			return nil
		}
		out[j] = view[p]
	}
	return out
}

// #endregion search

// #region mutation

// maxResample bounds the rejection loop before the deterministic fallback.
const maxResample = 64

// mutate proposes one single-position mutation of the discretized
// sequence: sample a position (confidence-weighted when available), sample
// a replacement identity uniformly, retry while the draw reproduces the
// current identity. The position overwrite applies to every sequence in
// the batch.
func (s *Session) mutate(base seq.Logits, positions []int, plddt []float32) (seq.Logits, int, int, error) {
	for attempt := 0; attempt < maxResample; attempt++ {
		keyL, keyA := s.key.Split(), s.key.Split()
		p := positions[drawPosition(keyL, len(positions), plddt)]
		a := keyA.Intn(base.Alphabet)
		if base.At(0, p, a) == 0 {
			return mutated(base, p, a), p, a, nil
		}
	}

	// Bounded fallback: first alternative identity at a fresh position.
	p := positions[drawPosition(s.key.Split(), len(positions), plddt)]
	for a := 0; a < base.Alphabet; a++ {
		if base.At(0, p, a) == 0 {
			return mutated(base, p, a), p, a, nil
		}
	}
	return seq.Logits{}, 0, 0, fmt.Errorf("mutate: no alternative identity at position %d", p)
}

// drawPosition samples an index in [0,n), weighted toward low confidence
// when a matching plddt slice is supplied.
func drawPosition(stream *prng.Stream, n int, plddt []float32) int {
	if len(plddt) != n {
		return stream.Intn(n)
	}
	var total float64
	for _, v := range plddt {
		if w := 1 - float64(v); w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return stream.Intn(n)
	}
	u := stream.Float64() * total
	var cum float64
	for i, v := range plddt {
		if w := 1 - float64(v); w > 0 {
			cum += w
		}
		if u < cum {
			return i
		}
	}
	return n - 1
}

func mutated(base seq.Logits, p, a int) seq.Logits {
	out := base.Clone()
	setRow(out, p, a)
	return out
}

// #endregion mutation

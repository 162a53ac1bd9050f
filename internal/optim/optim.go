// Package optim converts a raw gradient on the sequence logits into a
// bounded update: per-sequence norm rescaling followed by a configurable
// update rule (plain gradient descent or Adam). Updates are pure functions
// from (state, gradient) to a new state.
package optim

import (
	"fmt"
	"math"

	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region config

// Update rules.
const (
	RuleSGD  = "sgd"
	RuleAdam = "adam"
)

// normEps keeps the rescale finite when the gradient is exactly zero.
const normEps = 1e-7

// Config selects the update rule and its hyperparameters. LRScale is a
// session-level multiplier on the rule's base learning rate (0.1 for SGD,
// 0.02 for Adam).
type Config struct {
	Rule    string
	LRScale float64

	Beta1 float64
	Beta2 float64
	Eps   float64
}

// DefaultConfig returns the standard settings: SGD with unit scale, and the
// usual Adam moments for when the rule is switched.
func DefaultConfig() Config {
	return Config{Rule: RuleSGD, LRScale: 1.0, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
}

// Validate rejects configurations the stepper cannot run.
func (c Config) Validate() error {
	if c.Rule != RuleSGD && c.Rule != RuleAdam {
		return fmt.Errorf("optimizer config: unknown rule %q", c.Rule)
	}
	if c.LRScale <= 0 {
		return fmt.Errorf("optimizer config: lr scale must be > 0, got %v", c.LRScale)
	}
	if c.Rule == RuleAdam {
		if c.Beta1 <= 0 || c.Beta1 >= 1 || c.Beta2 <= 0 || c.Beta2 >= 1 {
			return fmt.Errorf("optimizer config: betas must lie in (0,1), got b1=%v b2=%v", c.Beta1, c.Beta2)
		}
		if c.Eps <= 0 {
			return fmt.Errorf("optimizer config: eps must be > 0, got %v", c.Eps)
		}
	}
	return nil
}

// LR returns the effective learning rate for the configured rule.
func (c Config) LR() (float64, error) {
	switch c.Rule {
	case RuleSGD:
		return 0.1 * c.LRScale, nil
	case RuleAdam:
		return 0.02 * c.LRScale, nil
	}
	return 0, fmt.Errorf("unknown update rule %q", c.Rule)
}

// #endregion config

// #region state

// State bundles the current logits with the rule's accumulators. SGD keeps
// no accumulators; Adam carries first/second moment estimates and the update
// count driving bias correction.
type State struct {
	Seq  seq.Logits
	M    seq.Logits
	V    seq.Logits
	Step int
}

// Init builds a fresh optimizer state around the given logits.
func Init(cfg Config, x seq.Logits) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	st := State{Seq: x.Clone()}
	if cfg.Rule == RuleAdam {
		st.M = seq.NewLogits(x.Seqs, x.Length, x.Alphabet)
		st.V = seq.NewLogits(x.Seqs, x.Length, x.Alphabet)
	}
	return st, nil
}

// #endregion state

// #region normalize

// NormalizeGradient rescales each sequence's gradient so its norm over the
// (position, alphabet) axes becomes lrScale * sqrt(length). The returned
// slice holds the pre-rescale norms per sequence.
func NormalizeGradient(g seq.Logits, lrScale float64) (seq.Logits, []float64) {
	out := g.Clone()
	norms := make([]float64, g.Seqs)
	perSeq := g.Length * g.Alphabet
	for s := 0; s < g.Seqs; s++ {
		block := out.Data[s*perSeq : (s+1)*perSeq]
		var sum float64
		for _, v := range block {
			sum += float64(v) * float64(v)
		}
		norms[s] = math.Sqrt(sum)
		scale := lrScale * math.Sqrt(float64(g.Length)) / (norms[s] + normEps)
		for i := range block {
			block[i] = float32(float64(block[i]) * scale)
		}
	}
	return out, norms
}

// #endregion normalize

// #region apply

// Metrics reports what one update did.
type Metrics struct {
	Rule      string
	LR        float64
	LRScale   float64
	GradNorms []float64
}

// Apply normalizes the gradient with the per-step lrScale and applies the
// configured rule, returning the next state. Inputs are never mutated.
func Apply(cfg Config, st State, grad seq.Logits, lrScale float64) (State, Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, Metrics{}, err
	}
	if !st.Seq.ShapeEquals(grad) {
		return State{}, Metrics{}, fmt.Errorf("apply update: gradient shape (%d,%d,%d) does not match state (%d,%d,%d)",
			grad.Seqs, grad.Length, grad.Alphabet, st.Seq.Seqs, st.Seq.Length, st.Seq.Alphabet)
	}
	lr, err := cfg.LR()
	if err != nil {
		return State{}, Metrics{}, err
	}

	g, norms := NormalizeGradient(grad, lrScale)
	m := Metrics{Rule: cfg.Rule, LR: lr, LRScale: lrScale, GradNorms: norms}

	next := State{Seq: st.Seq.Clone(), Step: st.Step + 1}
	switch cfg.Rule {
	case RuleSGD:
		for i, v := range g.Data {
			next.Seq.Data[i] -= float32(lr * float64(v))
		}
	case RuleAdam:
		next.M = st.M.Clone()
		next.V = st.V.Clone()
		t := float64(st.Step + 1)
		c1 := 1.0 - math.Pow(cfg.Beta1, t)
		c2 := 1.0 - math.Pow(cfg.Beta2, t)
		for i, v := range g.Data {
			gv := float64(v)
			mv := cfg.Beta1*float64(st.M.Data[i]) + (1-cfg.Beta1)*gv
			vv := cfg.Beta2*float64(st.V.Data[i]) + (1-cfg.Beta2)*gv*gv
			next.M.Data[i] = float32(mv)
			next.V.Data[i] = float32(vv)
			mhat := mv / c1
			vhat := vv / c2
			next.Seq.Data[i] -= float32(lr * mhat / (math.Sqrt(vhat) + cfg.Eps))
		}
	}
	return next, m, nil
}

// #endregion apply

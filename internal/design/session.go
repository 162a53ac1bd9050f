package design

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"

	"github.com/vxh357/ColabDesign/internal/optim"
	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/prng"
	"github.com/vxh357/ColabDesign/internal/seq"
	"github.com/vxh357/ColabDesign/internal/trajectory"
)

// #region session

// Session is one design run against a fixed oracle. All stochasticity
// derives from a counter-based stream seeded at the last restart, so a
// seed plus call order reproduces a run exactly.
type Session struct {
	cfg Config
	ad  *oracle.Adapter
	rec *trajectory.Recorder

	defaults oracle.Options
	opts     oracle.Options

	optimCfg optim.Config
	state    optim.State

	key  *prng.Stream
	seed int64
	k    int

	ref []int

	loss   float64
	losses map[string]float64
	aux    oracle.Aux
	models []int

	decisions []Decision
}

// New validates the configuration and starts a session with a freshly
// drawn seed. Call Restart with an explicit seed for reproducible runs.
func New(cfg Config, ad *oracle.Adapter) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ref, err := cfg.referenceIndices()
	if err != nil {
		return nil, err
	}

	info := ad.Info()
	s := &Session{
		cfg:      cfg,
		ad:       ad,
		rec:      trajectory.New(info.HasStructure),
		defaults: cfg.Options.Clone(),
		optimCfg: cfg.Optimizer,
		ref:      ref,
	}
	if !info.HasStructure {
		pruneStructureWeights(s.defaults.Weights)
	}
	if cfg.Protocol == ProtocolFixbb || (cfg.Protocol == ProtocolBinder && cfg.Redesign) {
		s.rec.SetReference(ref)
	}

	if err := s.Restart(RestartOptions{}); err != nil {
		return nil, err
	}
	return s, nil
}

// #endregion session

// #region restart

// RestartOptions controls one session reset. Zero value: fresh seed, fresh
// history, gaussian initialization, unchanged defaults.
type RestartOptions struct {
	// Seed fixes the random stream; nil draws a fresh one.
	Seed *int64
	// KeepHistory preserves the trajectory, best checkpoint, and current
	// options instead of resetting them to the session defaults.
	KeepHistory bool
	// SetDefaults folds Weights and Options into the session defaults
	// before they are applied, so later restarts inherit them.
	SetDefaults bool

	Weights   map[string]float64
	Options   *Overrides
	Optimizer *optim.Config

	Init InitConfig
}

// Restart resets the session: options, optimizer, random stream, sequence
// distribution, and (unless history is kept) the trajectory.
func (s *Session) Restart(o RestartOptions) error {
	if o.SetDefaults {
		for k, v := range o.Weights {
			s.defaults.Weights[k] = v
		}
		if o.Options != nil {
			o.Options.apply(&s.defaults)
		}
		if !s.ad.Info().HasStructure {
			pruneStructureWeights(s.defaults.Weights)
		}
	}

	if !o.KeepHistory {
		s.opts = s.defaults.Clone()
	}
	for k, v := range o.Weights {
		s.opts.Weights[k] = v
	}
	if o.Options != nil {
		o.Options.apply(&s.opts)
	}

	if o.Optimizer != nil {
		if err := o.Optimizer.Validate(); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
		s.optimCfg = *o.Optimizer
	}

	if o.Seed != nil {
		s.seed = *o.Seed
	} else {
		s.seed = rand.Int64N(1 << 31)
	}
	s.key = prng.New(s.seed)
	s.k = 0

	if err := s.initSeq(o.Init); err != nil {
		return fmt.Errorf("restart: %w", err)
	}

	if !o.KeepHistory {
		s.rec.Reset()
		s.decisions = nil
	}
	s.loss, s.losses, s.aux, s.models = 0, nil, oracle.Aux{}, nil

	log.Printf("[DESIGN] restart: protocol=%s seed=%d len=%d seqs=%d",
		s.cfg.Protocol, s.seed, s.cfg.Length, s.cfg.NumSeqs)
	return nil
}

// initSeq builds the initial distribution and optimizer state from the
// given initialization settings.
func (s *Session) initSeq(ic InitConfig) error {
	child := s.key.Split()
	x := seq.NewLogits(s.cfg.NumSeqs, s.cfg.Length, s.cfg.Alphabet)
	if ic.Gumbel {
		x.FillGumbel(child, 0.5)
	} else {
		x.FillNormal(child, 0.01)
	}
	if ic.Soft {
		x = x.Scale(2).Softmax(1)
	}

	bias := seq.NewBias(s.cfg.Length, s.cfg.Alphabet)
	useBias := false

	if ic.Wildtype {
		if len(s.ref) == 0 {
			return fmt.Errorf("init: wildtype mode requires a reference sequence")
		}
		if s.cfg.Protocol == ProtocolPartial {
			pos := s.opts.Pos
			if len(pos) != len(s.ref) {
				return fmt.Errorf("init: reference covers %d residues for %d constrained positions", len(s.ref), len(pos))
			}
			for j, p := range pos {
				setRow(x, p, s.ref[j])
				if ic.AddSeq {
					bias.Add(p, s.ref[j], seq.ForceOffset)
					useBias = true
				}
			}
		} else {
			ref := s.ref
			if s.cfg.Protocol == ProtocolFixbb && len(ref) > s.cfg.Length {
				ref = ref[:s.cfg.Length]
			}
			if len(ref) != s.cfg.Length {
				return fmt.Errorf("init: reference length %d does not match design length %d", len(ref), s.cfg.Length)
			}
			for l, a := range ref {
				setRow(x, l, a)
				if ic.AddSeq {
					bias.Add(l, a, seq.ForceOffset)
					useBias = true
				}
			}
		}
	}

	if ic.Sequence != "" {
		idx, err := seq.Encode(ic.Sequence)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if len(idx) != s.cfg.Length {
			return fmt.Errorf("init: starting sequence length %d does not match design length %d", len(idx), s.cfg.Length)
		}
		for l, a := range idx {
			for sq := 0; sq < x.Seqs; sq++ {
				x.Set(sq, l, a, x.At(sq, l, a)+1)
			}
			if ic.AddSeq {
				bias.Add(l, a, seq.ForceOffset)
				useBias = true
			}
		}
	}

	if ic.Logits.Data != nil {
		y := ic.Logits
		if !x.ShapeEquals(y) {
			return fmt.Errorf("init: starting logits shape (%d,%d,%d) does not match (%d,%d,%d)",
				y.Seqs, y.Length, y.Alphabet, x.Seqs, x.Length, x.Alphabet)
		}
		var err error
		x, err = x.Add(y)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if ic.AddSeq {
			for l := 0; l < y.Length; l++ {
				for a := 0; a < y.Alphabet; a++ {
					if v := y.At(0, l, a); v != 0 {
						bias.Add(l, a, v*seq.ForceOffset)
					}
				}
			}
			useBias = true
		}
	}

	if ic.RmAA != "" {
		if err := bias.ForbidResidues(ic.RmAA); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		useBias = true
	}
	if useBias {
		s.opts.Bias = bias
	}

	st, err := optim.Init(s.optimCfg, x)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	s.state = st
	return nil
}

// setRow overwrites one position of every sequence with a one-hot row.
func setRow(x seq.Logits, l, a int) {
	for sq := 0; sq < x.Seqs; sq++ {
		for b := 0; b < x.Alphabet; b++ {
			x.Set(sq, l, b, 0)
		}
		x.Set(sq, l, a, 1)
	}
}

// #endregion restart

// #region step

// StepConfig adjusts one gradient step. Overrides merge persistently into
// the session options before the oracle call; a zero LRScale means 1.
type StepConfig struct {
	Overrides Overrides
	LRScale   float64
	SaveBest  bool
	Verbose   bool
}

// Step runs one gradient step: evaluate with gradient, normalize, apply
// the update rule, record. On error the distribution, optimizer state, and
// step counter are left untouched.
func (s *Session) Step(ctx context.Context, sc StepConfig) error {
	sc.Overrides.apply(&s.opts)
	lr := sc.LRScale
	if lr == 0 {
		lr = 1
	}

	res, err := s.ad.Evaluate(ctx, s.state.Seq, s.opts, s.key.Split(), true)
	if err != nil {
		return fmt.Errorf("step %d: %w", s.k, err)
	}
	next, _, err := optim.Apply(s.optimCfg, s.state, res.Gradient, lr)
	if err != nil {
		return fmt.Errorf("step %d: %w", s.k, err)
	}

	s.state = next
	s.setResult(res)
	s.record(res, sc.SaveBest, sc.Verbose)
	s.k++
	return nil
}

func (s *Session) setResult(res oracle.Result) {
	s.loss = res.Loss
	s.losses = res.Losses
	s.aux = res.Aux
	s.models = res.Models
}

func (s *Session) record(res oracle.Result, saveBest, verbose bool) {
	s.rec.Record(trajectory.Entry{
		Step:     s.k,
		Models:   len(res.Models),
		Recycles: res.Aux.Recycles,
		Loss:     res.Loss,
		Terms:    res.Losses,
		Soft:     s.opts.Soft,
		Hard:     s.opts.Hard,
		Temp:     s.opts.Temp,
		Weights:  s.opts.Weights,
		Aux:      res.Aux,
	}, saveBest, verbose)
}

// #endregion step

// #region accessors

// StepCount reports completed steps since the last restart.
func (s *Session) StepCount() int { return s.k }

// Seed returns the seed of the current random stream.
func (s *Session) Seed() int64 { return s.seed }

// Loss returns the scalar loss of the last completed evaluation.
func (s *Session) Loss() float64 { return s.loss }

// Losses returns a copy of the last evaluation's sub-losses.
func (s *Session) Losses() map[string]float64 {
	out := make(map[string]float64, len(s.losses))
	for k, v := range s.losses {
		out[k] = v
	}
	return out
}

// Aux returns the last evaluation's auxiliary output.
func (s *Session) Aux() oracle.Aux { return s.aux }

// Options returns a copy of the current session options.
func (s *Session) Options() oracle.Options { return s.opts.Clone() }

// Logits returns a copy of the current sequence distribution.
func (s *Session) Logits() seq.Logits { return s.state.Seq.Clone() }

// Trajectory exposes the session recorder.
func (s *Session) Trajectory() *trajectory.Recorder { return s.rec }

// Best returns the best checkpoint observed so far.
func (s *Session) Best() trajectory.Best { return s.rec.Best() }

// Decisions returns the accepted semigreedy mutations in order.
func (s *Session) Decisions() []Decision {
	return append([]Decision(nil), s.decisions...)
}

// Sequences decodes the current design. After an evaluation it reflects
// the oracle's discretized view (bias included); before one it falls back
// to the raw distribution argmax.
func (s *Session) Sequences() []string {
	x := s.state.Seq
	if s.aux.SeqHard.Seqs > 0 {
		x = s.aux.SeqHard
	}
	rows := x.Argmax()
	out := make([]string, len(rows))
	for i, idx := range rows {
		out[i] = seq.Decode(idx)
	}
	return out
}

// SetProgress directs per-step progress lines to w.
func (s *Session) SetProgress(w io.Writer) { s.rec.SetProgress(w) }

// #endregion accessors

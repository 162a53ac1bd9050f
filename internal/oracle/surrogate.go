package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/vxh357/ColabDesign/internal/prng"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region config

// SurrogateConfig shapes the in-process oracle: pool size, compiled recycle
// count, and whether it produces structure outputs or a contact map.
type SurrogateConfig struct {
	Name          string
	Replicas      int
	FixedRecycles int
	HasStructure  bool
}

// DefaultSurrogateConfig mirrors the usual five-replica structure predictor.
func DefaultSurrogateConfig() SurrogateConfig {
	return SurrogateConfig{Name: "surrogate", Replicas: 5, FixedRecycles: 3, HasStructure: true}
}

func (c SurrogateConfig) validate() error {
	if c.Replicas < 1 {
		return fmt.Errorf("surrogate config: replicas must be >= 1, got %d", c.Replicas)
	}
	if c.FixedRecycles < 0 {
		return fmt.Errorf("surrogate config: fixed recycles must be >= 0, got %d", c.FixedRecycles)
	}
	return nil
}

// Surrogate is a deterministic, differentiable stand-in for the structure
// oracle, used by tests, the replay harness, and local runs. Each replica
// carries its own target residue profile and pairwise coupling matrix; the
// loss measures how well the softened sequence matches them. It is
// stateless, so concurrent replica calls need no locking.
type Surrogate struct {
	cfg SurrogateConfig
}

// NewSurrogate validates the config and returns the oracle.
func NewSurrogate(cfg SurrogateConfig) (*Surrogate, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = "surrogate"
	}
	return &Surrogate{cfg: cfg}, nil
}

// Info implements Oracle.
func (s *Surrogate) Info(ctx context.Context) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	return Info{
		Name:          s.cfg.Name,
		Replicas:      s.cfg.Replicas,
		FixedRecycles: s.cfg.FixedRecycles,
		HasStructure:  s.cfg.HasStructure,
	}, nil
}

// #endregion config

// #region params

// replicaParams derives the replica's target profile (length x alphabet,
// rows normalized) and coupling matrix (alphabet x alphabet) from the
// replica index alone, so every call sees identical parameters.
func (s *Surrogate) replicaParams(replica, length, alphabet int) (profile, coupling []float64) {
	stream := prng.New(int64(7919*(replica+1) + 13))
	profile = make([]float64, length*alphabet)
	for l := 0; l < length; l++ {
		row := profile[l*alphabet : (l+1)*alphabet]
		var maxv float64 = math.Inf(-1)
		for a := range row {
			row[a] = 2.0 * stream.Normal()
			if row[a] > maxv {
				maxv = row[a]
			}
		}
		var sum float64
		for a := range row {
			row[a] = math.Exp(row[a] - maxv)
			sum += row[a]
		}
		for a := range row {
			row[a] /= sum
		}
	}
	coupling = make([]float64, alphabet*alphabet)
	for i := 0; i < alphabet; i++ {
		for j := i; j < alphabet; j++ {
			v := 2.0*stream.Float64() - 1.0
			coupling[i*alphabet+j] = v
			coupling[j*alphabet+i] = v
		}
	}
	return profile, coupling
}

// #endregion params

// #region evaluate

const (
	dropoutKeep = 0.9
	caSpacing   = 3.8
)

// Evaluate implements Oracle. The forward path mirrors the real predictor's
// input pipeline: logits plus bias (plus optional gumbel noise), softmax at
// the given temperature, straight-through hard decoding, then a soft/hard
// blend. Recycle passes refine a running profile fed back through the
// recycle bundle, and the gradient is exact for the weighted loss.
func (s *Surrogate) Evaluate(ctx context.Context, req EvalRequest) (EvalResult, error) {
	if err := ctx.Err(); err != nil {
		return EvalResult{}, err
	}
	x := req.Seq
	if x.Seqs < 1 || x.Length < 1 || x.Alphabet < 2 {
		return EvalResult{}, fmt.Errorf("surrogate: degenerate sequence shape (%d,%d,%d)", x.Seqs, x.Length, x.Alphabet)
	}
	o := req.Options
	if err := o.Validate(); err != nil {
		return EvalResult{}, err
	}
	if req.Replica < 0 || req.Replica >= s.cfg.Replicas {
		return EvalResult{}, fmt.Errorf("surrogate: replica %d outside pool of %d", req.Replica, s.cfg.Replicas)
	}
	S, L, A := x.Seqs, x.Length, x.Alphabet
	stream := prng.New(int64(req.Key))

	// input pipeline
	z := x.Clone()
	if o.Bias.Data != nil {
		zb, err := x.AddBias(o.Bias)
		if err != nil {
			return EvalResult{}, fmt.Errorf("surrogate: %w", err)
		}
		z = zb
	}
	if o.Gumbel {
		noise := seq.NewLogits(S, L, A)
		noise.FillGumbel(stream.Split(), 1.0)
		for i, v := range noise.Data {
			z.Data[i] += v
		}
	}
	psoft := z.Softmax(o.Temp)
	hardRows := psoft.Argmax()
	phard := seq.OneHot(hardRows, A)

	mix, err := seq.Blend(z, psoft, o.Soft)
	if err != nil {
		return EvalResult{}, fmt.Errorf("surrogate: %w", err)
	}
	pin, err := seq.Blend(mix, phard, o.Hard)
	if err != nil {
		return EvalResult{}, fmt.Errorf("surrogate: %w", err)
	}

	// replica parameters, with the template signal fading under
	// template_dropout
	profile, coupling := s.replicaParams(req.Replica, L, A)
	if td := o.TemplateDropout; td > 0 {
		uniform := 1.0 / float64(A)
		for i := range profile {
			profile[i] = (1-td)*profile[i] + td*uniform
		}
	}

	// mean input profile over sequences
	meanPin := make([]float64, L*A)
	for s2 := 0; s2 < S; s2++ {
		base := s2 * L * A
		for i := 0; i < L*A; i++ {
			meanPin[i] += float64(pin.Data[base+i])
		}
	}
	for i := range meanPin {
		meanPin[i] /= float64(S)
	}

	// recycle refinement: thread the running profile through the bundle,
	// tracking the current input's coefficient for the gradient chain. A
	// zeroed bundle starts from the replica's prior, so the pass count
	// shifts the refined profile whether passes run here or are threaded
	// call-to-call by the adapter.
	prev := req.Prev
	if prev.MSAFirstRow != nil && prev.Len != L {
		return EvalResult{}, fmt.Errorf("surrogate: recycle state length %d does not match sequence length %d", prev.Len, L)
	}
	running := make([]float64, L*A)
	empty := true
	if prev.MSAFirstRow != nil {
		for l := 0; l < L; l++ {
			for a := 0; a < A; a++ {
				v := float64(prev.MSAFirstRow[l*msaChannels+a])
				running[l*A+a] = v
				if v != 0 {
					empty = false
				}
			}
		}
	}
	if empty {
		copy(running, profile)
	}

	alpha := 0.0
	passes := o.Recycles + 1
	mask := make([]float64, A*A)
	for p := 0; p < passes; p++ {
		for i := range mask {
			mask[i] = 1.0
		}
		if o.Dropout {
			dropStream := stream.Split()
			for i := range mask {
				if dropStream.Float64() >= dropoutKeep {
					mask[i] = 0
				} else {
					mask[i] = 1.0 / dropoutKeep
				}
			}
		}
		for i := range running {
			running[i] = 0.5*running[i] + 0.5*meanPin[i]
		}
		alpha = 0.5*alpha + 0.5
	}
	masked := make([]float64, A*A)
	for i := range masked {
		masked[i] = coupling[i] * mask[i]
	}

	// per-residue confidence from the refined profile
	conf := make([]float64, L)
	confArg := make([]int, L)
	for l := 0; l < L; l++ {
		best, bestV := 0, running[l*A]
		for a := 1; a < A; a++ {
			if v := running[l*A+a]; v > bestV {
				best, bestV = a, v
			}
		}
		confArg[l] = best
		conf[l] = bestV
		if conf[l] < 0 {
			conf[l] = 0
		}
		if conf[l] > 1 {
			conf[l] = 1
		}
	}

	losses := s.subLosses(pin, psoft, profile, masked, conf)
	var loss float64
	for k, v := range losses {
		loss += o.Weights[k] * v
	}

	res := EvalResult{Loss: loss}
	res.Aux = s.buildAux(pin, phard, running, masked, conf)
	res.Aux.Losses = losses
	if req.WantGradient {
		res.Gradient = s.gradient(o, pin, psoft, profile, masked, conf, confArg, alpha)
	}
	return res, nil
}

// subLosses computes the raw (unweighted) loss terms.
func (s *Surrogate) subLosses(pin, psoft seq.Logits, profile, coupling []float64, conf []float64) map[string]float64 {
	S, L, A := pin.Seqs, pin.Length, pin.Alphabet

	var profileLoss float64
	for s2 := 0; s2 < S; s2++ {
		base := s2 * L * A
		for i := 0; i < L*A; i++ {
			d := float64(pin.Data[base+i]) - profile[i]
			profileLoss += d * d
		}
	}
	profileLoss /= float64(S * L)

	var conLoss float64
	if L > 1 {
		for s2 := 0; s2 < S; s2++ {
			for l := 0; l < L-1; l++ {
				for a := 0; a < A; a++ {
					pa := float64(pin.At(s2, l, a))
					if pa == 0 {
						continue
					}
					for b := 0; b < A; b++ {
						conLoss -= pa * coupling[a*A+b] * float64(pin.At(s2, l+1, b))
					}
				}
			}
		}
		conLoss /= float64(S * (L - 1))
	}

	var ent float64
	for _, v := range psoft.Data {
		p := float64(v)
		if p > 0 {
			ent -= p * math.Log(p)
		}
	}
	ent /= float64(S * L)

	var meanConf float64
	for _, c := range conf {
		meanConf += c
	}
	meanConf /= float64(L)

	return map[string]float64{
		"profile": profileLoss,
		"con":     conLoss,
		"msa_ent": ent,
		"plddt":   1.0 - meanConf,
	}
}

// buildAux assembles the auxiliary bundle: sequence representations,
// structure or contact outputs derived from the refined profile, and the
// updated recycle state.
func (s *Surrogate) buildAux(pin, phard seq.Logits, running []float64, coupling []float64, conf []float64) Aux {
	L, A := pin.Length, pin.Alphabet
	aux := Aux{
		SeqHard:   phard,
		SeqPseudo: pin,
		PLDDT:     make([]float32, L),
	}
	for l := 0; l < L; l++ {
		aux.PLDDT[l] = float32(conf[l])
	}

	prev := ZeroRecycleState(L, s.cfg.HasStructure)
	for l := 0; l < L; l++ {
		for a := 0; a < A && a < msaChannels; a++ {
			prev.MSAFirstRow[l*msaChannels+a] = float32(running[l*A+a])
		}
	}

	if s.cfg.HasStructure {
		aux.Coords = make([]float32, 3*L)
		for l := 0; l < L; l++ {
			theta := math.Pi * (1.0 - conf[l])
			aux.Coords[3*l] = float32(caSpacing * float64(l))
			aux.Coords[3*l+1] = float32(2.0 * math.Sin(theta))
			aux.Coords[3*l+2] = float32(2.0 * math.Cos(theta))
		}
		copy(prev.Pos, coordsToAtomSlots(aux.Coords, L))
		aux.PAE = make([]float32, L*L)
		for i := 0; i < L; i++ {
			for j := 0; j < L; j++ {
				aux.PAE[i*L+j] = float32(31.0 * (1.0 - conf[i]) * (1.0 - conf[j]))
			}
		}
	} else {
		aux.Contacts = make([]float32, L*L)
		for i := 0; i < L; i++ {
			for j := 0; j < L; j++ {
				var dot float64
				for a := 0; a < A; a++ {
					for b := 0; b < A; b++ {
						dot += running[i*A+a] * coupling[a*A+b] * running[j*A+b]
					}
				}
				aux.Contacts[i*L+j] = float32(1.0 / (1.0 + math.Exp(-dot)))
			}
		}
		for i := 0; i < L*L; i++ {
			prev.Distogram[i*dgramBins] = aux.Contacts[i]
		}
	}
	aux.Prev = prev
	return aux
}

// coordsToAtomSlots scatters CA coordinates into the 37-atom recycle layout.
func coordsToAtomSlots(coords []float32, length int) []float32 {
	out := make([]float32, length*atomSlots*3)
	for l := 0; l < length; l++ {
		base := (l*atomSlots + 1) * 3
		out[base] = coords[3*l]
		out[base+1] = coords[3*l+1]
		out[base+2] = coords[3*l+2]
	}
	return out
}

// #endregion evaluate

// #region gradient

// gradient backpropagates the weighted loss to the raw logits. The hard
// path uses the straight-through estimator, so its gradient flows as if
// through the softmax; the linear share of the soft blend passes through
// unchanged.
func (s *Surrogate) gradient(o Options, pin, psoft seq.Logits, profile, coupling []float64, conf []float64, confArg []int, alpha float64) seq.Logits {
	S, L, A := pin.Seqs, pin.Length, pin.Alphabet
	wProfile := o.Weights["profile"]
	wCon := o.Weights["con"]
	wEnt := o.Weights["msa_ent"]
	wPlddt := o.Weights["plddt"]

	// gradient in pin space
	gp := make([]float64, S*L*A)
	if wProfile != 0 {
		c := 2.0 * wProfile / float64(S*L)
		for s2 := 0; s2 < S; s2++ {
			base := s2 * L * A
			for i := 0; i < L*A; i++ {
				gp[base+i] += c * (float64(pin.Data[base+i]) - profile[i])
			}
		}
	}
	if wCon != 0 && L > 1 {
		c := wCon / float64(S*(L-1))
		for s2 := 0; s2 < S; s2++ {
			for l := 0; l < L; l++ {
				base := (s2*L + l) * A
				for a := 0; a < A; a++ {
					var g float64
					if l < L-1 {
						for b := 0; b < A; b++ {
							g += coupling[a*A+b] * float64(pin.At(s2, l+1, b))
						}
					}
					if l > 0 {
						for b := 0; b < A; b++ {
							g += coupling[b*A+a] * float64(pin.At(s2, l-1, b))
						}
					}
					gp[base+a] -= c * g
				}
			}
		}
	}
	if wPlddt != 0 && alpha > 0 {
		c := wPlddt * alpha / float64(S*L)
		for s2 := 0; s2 < S; s2++ {
			for l := 0; l < L; l++ {
				if conf[l] > 0 && conf[l] < 1 {
					gp[(s2*L+l)*A+confArg[l]] -= c
				}
			}
		}
	}

	// entropy gradient lives in softmax space only
	gsoft := make([]float64, S*L*A)
	if wEnt != 0 {
		c := wEnt / float64(S*L)
		for i, v := range psoft.Data {
			p := float64(v)
			if p > 0 {
				gsoft[i] += c * (-(math.Log(p) + 1.0))
			}
		}
	}

	// chain rule to the logits: the softmax share is
	// hard + (1-hard)*soft, the linear share (1-hard)*(1-soft)
	coefST := o.Hard + (1-o.Hard)*o.Soft
	coefLin := (1 - o.Hard) * (1 - o.Soft)

	grad := seq.NewLogits(S, L, A)
	row := make([]float64, A)
	for s2 := 0; s2 < S; s2++ {
		for l := 0; l < L; l++ {
			base := (s2*L + l) * A
			var dot float64
			for a := 0; a < A; a++ {
				row[a] = coefST*gp[base+a] + gsoft[base+a]
				dot += row[a] * float64(psoft.Data[base+a])
			}
			for a := 0; a < A; a++ {
				p := float64(psoft.Data[base+a])
				jt := p * (row[a] - dot) / o.Temp
				grad.Data[base+a] = float32(jt + coefLin*gp[base+a])
			}
		}
	}
	return grad
}

// #endregion gradient

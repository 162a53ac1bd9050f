package oracle

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vxh357/ColabDesign/internal/prng"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region contract

// An Oracle is one external predictor with a pool of independently
// parameterized replicas. Evaluate runs a single replica; the adapter owns
// everything above that.
type Oracle interface {
	Info(ctx context.Context) (Info, error)
	Evaluate(ctx context.Context, req EvalRequest) (EvalResult, error)
}

// Config selects the adapter's recycle mode and execution strategy.
type Config struct {
	RecycleMode string
	Parallel    bool
}

// DefaultConfig runs single-call recycling with serial replica execution.
func DefaultConfig() Config {
	return Config{RecycleMode: RecycleLast}
}

// Validate rejects unknown recycle modes.
func (c Config) Validate() error {
	switch c.RecycleMode {
	case RecycleLast, RecycleAverage, RecycleSample, RecycleAddPrev, RecycleBackprop:
		return nil
	}
	return fmt.Errorf("adapter config: unknown recycle mode %q", c.RecycleMode)
}

// #endregion contract

// #region adapter

// Adapter wraps an Oracle with replica selection, recycle-state threading,
// and deterministic mean aggregation. Both execution strategies share the
// same reduction code and reduce in replica-index order, so serial and
// parallel runs are numerically identical.
type Adapter struct {
	oracle Oracle
	info   Info
	cfg    Config
}

// NewAdapter queries the oracle once for its pool description and returns a
// ready adapter.
func NewAdapter(ctx context.Context, o Oracle, cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	info, err := o.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("oracle info: %w", err)
	}
	if info.Replicas < 1 {
		return nil, fmt.Errorf("oracle info: replica pool must be >= 1, got %d", info.Replicas)
	}
	return &Adapter{oracle: o, info: info, cfg: cfg}, nil
}

// Info returns the oracle description fetched at construction.
func (a *Adapter) Info() Info {
	return a.info
}

// Result is the aggregated outcome of one ensembled oracle call.
type Result struct {
	Loss     float64
	Losses   map[string]float64
	Gradient seq.Logits
	Aux      Aux
	Models   []int
}

// Evaluate runs the configured ensemble over the oracle and aggregates.
// Replica selection and all oracle-side stochasticity derive from the given
// stream, so identical streams reproduce identical results. Oracle failures
// are not retried; they abort the step.
func (a *Adapter) Evaluate(ctx context.Context, x seq.Logits, opts Options, key *prng.Stream, wantGrad bool) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if opts.Models > a.info.Replicas {
		return Result{}, fmt.Errorf("evaluate: %d models requested from a pool of %d", opts.Models, a.info.Replicas)
	}

	var models []int
	if opts.SampleModels && opts.Models != a.info.Replicas {
		models = key.Split().Choose(a.info.Replicas, opts.Models)
	} else {
		models = make([]int, opts.Models)
		for i := range models {
			models[i] = i
		}
	}

	// Every replica receives the same seed, so replica outputs differ only
	// through their parameters.
	evalSeed := key.Split().Uint64()

	outs := make([]EvalResult, len(models))
	if a.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, n := range models {
			g.Go(func() error {
				out, err := a.runReplica(gctx, x, opts, n, evalSeed, wantGrad)
				if err != nil {
					return fmt.Errorf("evaluate replica %d: %w", n, err)
				}
				outs[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	} else {
		for i, n := range models {
			out, err := a.runReplica(ctx, x, opts, n, evalSeed, wantGrad)
			if err != nil {
				return Result{}, fmt.Errorf("evaluate replica %d: %w", n, err)
			}
			outs[i] = out
		}
	}

	return reduce(outs, models, wantGrad)
}

// #endregion adapter

// #region recycling

// runReplica executes one replica under the configured recycle mode. The
// recycle bundle starts zeroed for every step.
func (a *Adapter) runReplica(ctx context.Context, x seq.Logits, opts Options, replica int, seed uint64, wantGrad bool) (EvalResult, error) {
	rs := prng.New(int64(seed))
	prev := ZeroRecycleState(x.Length, a.info.HasStructure)

	if a.cfg.RecycleMode == RecycleAverage {
		return a.runAveraged(ctx, x, opts, replica, rs, prev, wantGrad)
	}

	eff := opts.Clone()
	reported := opts.Recycles
	switch a.cfg.RecycleMode {
	case RecycleSample:
		// Drawn whether or not a gradient is requested, so evaluation-only
		// calls consume the stream identically.
		eff.Recycles = rs.Intn(opts.Recycles + 1)
		reported = eff.Recycles
	case RecycleAddPrev, RecycleBackprop:
		eff.Recycles = a.info.FixedRecycles
		reported = a.info.FixedRecycles
	}

	res, err := a.oracle.Evaluate(ctx, EvalRequest{
		Seq: x, Prev: prev, Options: eff, Replica: replica,
		Key: rs.Uint64(), WantGradient: wantGrad,
	})
	if err != nil {
		return EvalResult{}, err
	}
	if wantGrad && res.Gradient.Data == nil {
		return EvalResult{}, fmt.Errorf("oracle returned no gradient")
	}
	res.Aux.Recycles = reported
	return res, nil
}

// runAveraged runs recycles+1 single passes, threading the recycle bundle
// forward. The gradient is the elementwise mean across passes; loss and
// auxiliary outputs are those of the final pass.
func (a *Adapter) runAveraged(ctx context.Context, x seq.Logits, opts Options, replica int, rs *prng.Stream, prev RecycleState, wantGrad bool) (EvalResult, error) {
	passes := opts.Recycles + 1
	single := opts.Clone()
	single.Recycles = 0

	var gradSum seq.Logits
	var last EvalResult
	for p := 0; p < passes; p++ {
		sub := rs.Split()
		res, err := a.oracle.Evaluate(ctx, EvalRequest{
			Seq: x, Prev: prev, Options: single, Replica: replica,
			Key: sub.Uint64(), WantGradient: wantGrad,
		})
		if err != nil {
			return EvalResult{}, fmt.Errorf("recycle pass %d: %w", p, err)
		}
		if wantGrad {
			if res.Gradient.Data == nil {
				return EvalResult{}, fmt.Errorf("recycle pass %d: oracle returned no gradient", p)
			}
			if gradSum.Data == nil {
				gradSum = res.Gradient.Clone()
			} else {
				for i, v := range res.Gradient.Data {
					gradSum.Data[i] += v
				}
			}
		}
		prev = res.Aux.Prev
		last = res
	}

	if wantGrad {
		inv := float32(1.0 / float64(passes))
		for i := range gradSum.Data {
			gradSum.Data[i] *= inv
		}
		last.Gradient = gradSum
	}
	last.Aux.Recycles = opts.Recycles
	return last, nil
}

// #endregion recycling

// #region reduce

// reduce aggregates per-replica results: mean loss, per-key mean sub-losses,
// elementwise mean gradient, auxiliary outputs from the first replica.
func reduce(outs []EvalResult, models []int, wantGrad bool) (Result, error) {
	n := float64(len(outs))
	res := Result{Models: models, Aux: outs[0].Aux}

	for _, o := range outs {
		res.Loss += o.Loss
	}
	res.Loss /= n

	res.Losses = make(map[string]float64, len(outs[0].Aux.Losses))
	for k := range outs[0].Aux.Losses {
		var sum float64
		for _, o := range outs {
			sum += o.Aux.Losses[k]
		}
		res.Losses[k] = sum / n
	}

	if wantGrad {
		res.Gradient = outs[0].Gradient.Clone()
		for _, o := range outs[1:] {
			if !o.Gradient.ShapeEquals(res.Gradient) {
				return Result{}, fmt.Errorf("reduce: replica gradient shapes differ")
			}
			for i, v := range o.Gradient.Data {
				res.Gradient.Data[i] += v
			}
		}
		inv := float32(1.0 / n)
		for i := range res.Gradient.Data {
			res.Gradient.Data[i] *= inv
		}
	}
	return res, nil
}

// #endregion reduce

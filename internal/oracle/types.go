// Package oracle presents one interface to the external structure-prediction
// model regardless of ensembling or recycling strategy. The adapter owns
// replica selection, recycle-state threading, and deterministic aggregation
// of loss, sub-losses, gradient, and auxiliary outputs.
package oracle

import (
	"fmt"
	"sort"

	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region options

// Recycle modes.
const (
	RecycleLast     = "last"
	RecycleAverage  = "average"
	RecycleSample   = "sample"
	RecycleAddPrev  = "add_prev"
	RecycleBackprop = "backprop"
)

// Options carries the per-call design settings the oracle consumes. The
// annealing fields are normally scheduler-managed but remain overridable per
// step; Bias entries use offsets around ±1e8 to force or forbid identities
// without touching the optimizer machinery.
type Options struct {
	Weights map[string]float64

	Temp float64
	Soft float64
	Hard float64

	Dropout bool
	Gumbel  bool

	Recycles        int
	TemplateDropout float64

	Pos  []int
	Bias seq.Bias

	Models       int
	SampleModels bool
}

// DefaultOptions returns the session baseline: one replica, no softening,
// unit temperature, dropout on.
func DefaultOptions() Options {
	return Options{
		Weights: map[string]float64{},
		Temp:    1.0,
		Soft:    0.0,
		Hard:    0.0,
		Dropout: true,
		Models:  1,
	}
}

// Clone deep-copies the options so per-step records never alias session
// state.
func (o Options) Clone() Options {
	out := o
	out.Weights = make(map[string]float64, len(o.Weights))
	for k, v := range o.Weights {
		out.Weights[k] = v
	}
	if o.Pos != nil {
		out.Pos = append([]int(nil), o.Pos...)
	}
	if o.Bias.Data != nil {
		out.Bias = o.Bias.Clone()
	}
	return out
}

// Validate rejects settings no oracle call can honor.
func (o Options) Validate() error {
	if o.Temp <= 0 {
		return fmt.Errorf("options: temp must be > 0, got %v", o.Temp)
	}
	if o.Soft < 0 || o.Soft > 1 {
		return fmt.Errorf("options: soft must lie in [0,1], got %v", o.Soft)
	}
	if o.Hard < 0 || o.Hard > 1 {
		return fmt.Errorf("options: hard must lie in [0,1], got %v", o.Hard)
	}
	if o.Recycles < 0 {
		return fmt.Errorf("options: recycles must be >= 0, got %d", o.Recycles)
	}
	if o.Models < 1 {
		return fmt.Errorf("options: models must be >= 1, got %d", o.Models)
	}
	return nil
}

// WeightNames returns the loss-term names in sorted order.
func (o Options) WeightNames() []string {
	names := make([]string, 0, len(o.Weights))
	for k := range o.Weights {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// #endregion options

// #region recycle-state

// RecycleState is the oracle's short-lived internal bundle, zero-initialized
// before the first pass of a step and threaded pass-to-pass. Buffers are
// sized by sequence length; structure oracles carry atom positions, contact
// oracles a distogram.
type RecycleState struct {
	Len         int
	MSAFirstRow []float32
	Pair        []float32
	Pos         []float32
	Distogram   []float32
}

// Recycle buffer widths.
const (
	msaChannels  = 256
	pairChannels = 128
	atomSlots    = 37
	dgramBins    = 64
)

// ZeroRecycleState allocates the zeroed bundle for a design of the given
// length.
func ZeroRecycleState(length int, hasStructure bool) RecycleState {
	st := RecycleState{
		Len:         length,
		MSAFirstRow: make([]float32, length*msaChannels),
		Pair:        make([]float32, length*length*pairChannels),
	}
	if hasStructure {
		st.Pos = make([]float32, length*atomSlots*3)
	} else {
		st.Distogram = make([]float32, length*length*dgramBins)
	}
	return st
}

// #endregion recycle-state

// #region outputs

// Aux is the auxiliary output of one oracle call: named sub-losses, the
// discretized and softened sequence representations, the recycle passes
// actually used, protocol-dependent structure predictions, and the updated
// recycle bundle for the next pass.
type Aux struct {
	Losses map[string]float64

	SeqHard   seq.Logits
	SeqPseudo seq.Logits

	Recycles int

	Coords   []float32
	PLDDT    []float32
	PAE      []float32
	Contacts []float32

	Prev RecycleState
}

// Info describes a concrete oracle: its replica pool and compiled-in
// behavior the adapter must respect.
type Info struct {
	Name          string
	Replicas      int
	FixedRecycles int
	HasStructure  bool
}

// EvalRequest is one single-replica oracle call.
type EvalRequest struct {
	Seq          seq.Logits
	Prev         RecycleState
	Options      Options
	Replica      int
	Key          uint64
	WantGradient bool
}

// EvalResult is the oracle's reply: scalar loss, auxiliary output, and the
// gradient when one was requested.
type EvalResult struct {
	Loss     float64
	Aux      Aux
	Gradient seq.Logits
}

// #endregion outputs

// Package design drives a complete design session: it owns the sequence
// distribution and optimizer state, applies annealing schedules, calls the
// oracle adapter, and records every completed step. Steps are sequential
// and atomic; a failed oracle call leaves the session state untouched.
package design

import (
	"fmt"
	"strings"

	"github.com/vxh357/ColabDesign/internal/optim"
	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region config

// Protocols.
const (
	ProtocolFixbb         = "fixbb"
	ProtocolHallucination = "hallucination"
	ProtocolBinder        = "binder"
	ProtocolPartial       = "partial"
)

// Config describes one design session. Options holds the session defaults
// re-established on every restart; for the partial protocol the constrained
// position set lives in Options.Pos.
type Config struct {
	Protocol string
	Length   int
	NumSeqs  int
	Alphabet int

	// TargetLen is the length of the fixed target region preceding the
	// designed binder. Redesign marks a binder started from an existing
	// sequence, which enables the sequence-identity metric.
	TargetLen int
	Redesign  bool

	// Reference is the wild-type sequence for fixbb, binder redesign, and
	// wildtype initialization. For the partial protocol it covers the
	// constrained positions only, in Options.Pos order.
	Reference string

	Options   oracle.Options
	Optimizer optim.Config
}

// DefaultConfig returns a single-sequence hallucination session over the
// standard residue alphabet.
func DefaultConfig() Config {
	return Config{
		Protocol:  ProtocolHallucination,
		NumSeqs:   1,
		Alphabet:  seq.AlphabetSize,
		Options:   oracle.DefaultOptions(),
		Optimizer: optim.DefaultConfig(),
	}
}

// Validate rejects configurations no session can run.
func (c Config) Validate() error {
	switch c.Protocol {
	case ProtocolFixbb, ProtocolHallucination, ProtocolBinder, ProtocolPartial:
	default:
		return fmt.Errorf("config: unknown protocol %q", c.Protocol)
	}
	if c.Length < 1 {
		return fmt.Errorf("config: length must be >= 1, got %d", c.Length)
	}
	if c.NumSeqs < 1 {
		return fmt.Errorf("config: num seqs must be >= 1, got %d", c.NumSeqs)
	}
	if c.Alphabet < 2 {
		return fmt.Errorf("config: alphabet must be >= 2, got %d", c.Alphabet)
	}

	ref, err := c.referenceIndices()
	if err != nil {
		return err
	}
	switch c.Protocol {
	case ProtocolFixbb:
		if len(ref) < c.Length {
			return fmt.Errorf("config: fixbb needs a reference of at least %d residues, got %d", c.Length, len(ref))
		}
	case ProtocolBinder:
		if c.TargetLen < 1 {
			return fmt.Errorf("config: binder needs a target length >= 1, got %d", c.TargetLen)
		}
		if c.Redesign && len(ref) == 0 {
			return fmt.Errorf("config: binder redesign needs a reference sequence")
		}
	case ProtocolPartial:
		if len(c.Options.Pos) == 0 {
			return fmt.Errorf("config: partial needs constrained positions in options")
		}
		seen := make(map[int]bool, len(c.Options.Pos))
		for _, p := range c.Options.Pos {
			if p < 0 || p >= c.Length {
				return fmt.Errorf("config: constrained position %d outside [0,%d)", p, c.Length)
			}
			if seen[p] {
				return fmt.Errorf("config: constrained position %d repeated", p)
			}
			seen[p] = true
		}
	}

	if err := c.Options.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) referenceIndices() ([]int, error) {
	if c.Reference == "" {
		return nil, nil
	}
	idx, err := seq.Encode(c.Reference)
	if err != nil {
		return nil, fmt.Errorf("config: reference: %w", err)
	}
	return idx, nil
}

// #endregion config

// #region init

// InitConfig selects how the sequence distribution is initialized on
// restart. The base initialization is small gaussian logits; Gumbel and
// Soft reshape the noise, Wildtype and Sequence seed from known residues.
type InitConfig struct {
	// Gumbel replaces the gaussian base with half-scale gumbel noise.
	Gumbel bool
	// Soft replaces the logits with the softmax of their doubled values.
	Soft bool
	// Wildtype overwrites positions from the session reference: every
	// position for fixbb (trimmed to the design length), the constrained
	// positions for partial.
	Wildtype bool

	// Sequence is a starting sequence added to the logits as one-hot.
	Sequence string
	// Logits is an explicit starting tensor added elementwise.
	Logits seq.Logits

	// AddSeq pins the seeded residues with a large positive bias.
	AddSeq bool
	// RmAA forbids comma-separated residue codes with a large negative
	// bias, removing them from the search.
	RmAA string
}

// MigrateSeqInit maps the legacy single-string initialization shorthand
// onto an InitConfig. A string of design length that encodes cleanly is a
// starting sequence; anything else is matched for mode keywords.
func MigrateSeqInit(legacy string, length int) InitConfig {
	if len(legacy) == length {
		if _, err := seq.Encode(legacy); err == nil {
			return InitConfig{Sequence: legacy}
		}
	}
	mode := strings.ToLower(legacy)
	return InitConfig{
		Gumbel:   strings.Contains(mode, "gumbel"),
		Soft:     strings.Contains(mode, "soft"),
		Wildtype: strings.Contains(mode, "wildtype") || strings.Contains(mode, "wt"),
	}
}

// #endregion init

// #region overrides

// Overrides selects design options to change. Nil fields keep the current
// value; Weights entries merge key by key.
type Overrides struct {
	Temp            *float64
	Soft            *float64
	Hard            *float64
	Dropout         *bool
	Gumbel          *bool
	Recycles        *int
	TemplateDropout *float64
	Models          *int
	SampleModels    *bool

	Pos  []int
	Bias *seq.Bias

	Weights map[string]float64
}

func (ov Overrides) apply(o *oracle.Options) {
	if ov.Temp != nil {
		o.Temp = *ov.Temp
	}
	if ov.Soft != nil {
		o.Soft = *ov.Soft
	}
	if ov.Hard != nil {
		o.Hard = *ov.Hard
	}
	if ov.Dropout != nil {
		o.Dropout = *ov.Dropout
	}
	if ov.Gumbel != nil {
		o.Gumbel = *ov.Gumbel
	}
	if ov.Recycles != nil {
		o.Recycles = *ov.Recycles
	}
	if ov.TemplateDropout != nil {
		o.TemplateDropout = *ov.TemplateDropout
	}
	if ov.Models != nil {
		o.Models = *ov.Models
	}
	if ov.SampleModels != nil {
		o.SampleModels = *ov.SampleModels
	}
	if ov.Pos != nil {
		o.Pos = append([]int(nil), ov.Pos...)
	}
	if ov.Bias != nil {
		o.Bias = ov.Bias.Clone()
	}
	if len(ov.Weights) > 0 {
		if o.Weights == nil {
			o.Weights = make(map[string]float64, len(ov.Weights))
		}
		for k, v := range ov.Weights {
			o.Weights[k] = v
		}
	}
}

func f64p(v float64) *float64 { return &v }
func boolp(v bool) *bool      { return &v }

// #endregion overrides

// #region weights

// structureTerms lists the loss families only a structure oracle produces,
// matched against the suffix after the last underscore.
var structureTerms = map[string]bool{
	"rmsd":  true,
	"fape":  true,
	"plddt": true,
	"pae":   true,
}

// pruneStructureWeights drops structure-only loss weights, used when the
// session's oracle predicts contacts instead of coordinates.
func pruneStructureWeights(w map[string]float64) {
	for k := range w {
		parts := strings.Split(k, "_")
		if structureTerms[parts[len(parts)-1]] {
			delete(w, k)
		}
	}
}

// #endregion weights

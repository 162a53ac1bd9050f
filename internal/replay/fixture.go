package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vxh357/ColabDesign/internal/design"
	"github.com/vxh357/ColabDesign/internal/optim"
	"github.com/vxh357/ColabDesign/internal/oracle"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a complete
// run description plus the recorded per-step outcomes to compare against.
type Fixture struct {
	Description string     `json:"description,omitempty"`
	Spec        RunSpec    `json:"spec"`
	Steps       []Expected `json:"steps"`
}

// RunSpec describes a run completely enough to re-run it from scratch.
type RunSpec struct {
	Protocol  string `json:"protocol"`
	Length    int    `json:"length"`
	NumSeqs   int    `json:"num_seqs,omitempty"`
	TargetLen int    `json:"target_len,omitempty"`
	Redesign  bool   `json:"redesign,omitempty"`
	Reference string `json:"reference,omitempty"`
	Seed      int64  `json:"seed"`

	Weights map[string]float64 `json:"weights,omitempty"`
	Pos     []int              `json:"pos,omitempty"`

	Models       int  `json:"models,omitempty"`
	SampleModels bool `json:"sample_models,omitempty"`
	Recycles     int  `json:"recycles,omitempty"`

	Init      InitSpec      `json:"init"`
	Optimizer OptimizerSpec `json:"optimizer"`
	Oracle    OracleSpec    `json:"oracle"`
	Schedule  ScheduleSpec  `json:"schedule"`
}

// InitSpec mirrors design.InitConfig with JSON tags. Explicit logits
// tensors are not representable in fixtures and stay out.
type InitSpec struct {
	Gumbel   bool   `json:"gumbel,omitempty"`
	Soft     bool   `json:"soft,omitempty"`
	Wildtype bool   `json:"wildtype,omitempty"`
	Sequence string `json:"sequence,omitempty"`
	AddSeq   bool   `json:"add_seq,omitempty"`
	RmAA     string `json:"rm_aa,omitempty"`
}

// OptimizerSpec mirrors optim.Config; zero fields fall back to defaults.
type OptimizerSpec struct {
	Rule    string  `json:"rule,omitempty"`
	LRScale float64 `json:"lr_scale,omitempty"`
}

// OracleSpec selects the surrogate a fixture replays against. A zero spec
// means the default structure surrogate.
type OracleSpec struct {
	Name          string `json:"name,omitempty"`
	Replicas      int    `json:"replicas,omitempty"`
	FixedRecycles int    `json:"fixed_recycles,omitempty"`
	HasStructure  bool   `json:"has_structure"`
	RecycleMode   string `json:"recycle_mode,omitempty"`
	Parallel      bool   `json:"parallel,omitempty"`
}

// Schedule kinds.
const (
	ScheduleLogits     = "logits"
	ScheduleSoft       = "soft"
	ScheduleHard       = "hard"
	Schedule2Stage     = "2stage"
	Schedule3Stage     = "3stage"
	ScheduleTemplate   = "template"
	ScheduleSemigreedy = "semigreedy"
)

// ScheduleSpec names the stage protocol and its iteration counts. Zero
// counts use the protocol defaults.
type ScheduleSpec struct {
	Kind      string `json:"kind"`
	Iters     int    `json:"iters,omitempty"`
	SoftIters int    `json:"soft_iters,omitempty"`
	TempIters int    `json:"temp_iters,omitempty"`
	HardIters int    `json:"hard_iters,omitempty"`
	Tries     int    `json:"tries,omitempty"`
}

// Expected is one recorded step outcome.
type Expected struct {
	Step     int     `json:"step"`
	Loss     float64 `json:"loss"`
	Sequence string  `json:"sequence,omitempty"`
}

// #endregion fixture-types

// #region fixture-io

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes a fixture as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-io

// #region converters

// SessionConfig maps the run spec onto a session configuration.
func (r RunSpec) SessionConfig() design.Config {
	cfg := design.DefaultConfig()
	cfg.Protocol = r.Protocol
	cfg.Length = r.Length
	if r.NumSeqs > 0 {
		cfg.NumSeqs = r.NumSeqs
	}
	cfg.TargetLen = r.TargetLen
	cfg.Redesign = r.Redesign
	cfg.Reference = r.Reference
	if r.Weights != nil {
		w := make(map[string]float64, len(r.Weights))
		for k, v := range r.Weights {
			w[k] = v
		}
		cfg.Options.Weights = w
	}
	if len(r.Pos) > 0 {
		cfg.Options.Pos = append([]int(nil), r.Pos...)
	}
	if r.Models > 0 {
		cfg.Options.Models = r.Models
	}
	cfg.Options.SampleModels = r.SampleModels
	if r.Recycles > 0 {
		cfg.Options.Recycles = r.Recycles
	}
	cfg.Optimizer = r.Optimizer.Config()
	return cfg
}

// Config maps the init spec onto the session initialization settings.
func (i InitSpec) Config() design.InitConfig {
	return design.InitConfig{
		Gumbel:   i.Gumbel,
		Soft:     i.Soft,
		Wildtype: i.Wildtype,
		Sequence: i.Sequence,
		AddSeq:   i.AddSeq,
		RmAA:     i.RmAA,
	}
}

// Config maps the optimizer spec onto an optimizer configuration.
func (o OptimizerSpec) Config() optim.Config {
	cfg := optim.DefaultConfig()
	if o.Rule != "" {
		cfg.Rule = o.Rule
	}
	if o.LRScale > 0 {
		cfg.LRScale = o.LRScale
	}
	return cfg
}

// SurrogateConfig maps the oracle spec onto a surrogate configuration.
func (o OracleSpec) SurrogateConfig() oracle.SurrogateConfig {
	if o == (OracleSpec{}) {
		return oracle.DefaultSurrogateConfig()
	}
	return oracle.SurrogateConfig{
		Name:          o.Name,
		Replicas:      o.Replicas,
		FixedRecycles: o.FixedRecycles,
		HasStructure:  o.HasStructure,
	}
}

// AdapterConfig maps the oracle spec onto an adapter configuration.
func (o OracleSpec) AdapterConfig() oracle.Config {
	cfg := oracle.DefaultConfig()
	if o.RecycleMode != "" {
		cfg.RecycleMode = o.RecycleMode
	}
	cfg.Parallel = o.Parallel
	return cfg
}

// Validate rejects schedule kinds the harness cannot dispatch.
func (sp ScheduleSpec) Validate() error {
	switch sp.Kind {
	case ScheduleLogits, ScheduleSoft, ScheduleHard,
		Schedule2Stage, Schedule3Stage, ScheduleTemplate, ScheduleSemigreedy:
		return nil
	}
	return fmt.Errorf("schedule: unknown kind %q", sp.Kind)
}

// #endregion converters

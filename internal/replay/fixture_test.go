package replay

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vxh357/ColabDesign/internal/design"
	"github.com/vxh357/ColabDesign/internal/optim"
	"github.com/vxh357/ColabDesign/internal/oracle"
)

// #region fixture-tests

// TestFixture_SurrogateSession records a short surrogate run, writes it to
// disk as a fixture, loads it back, and replays it. This is the primary
// regression path: if stepper, scheduler, or stream logic changes, the
// reloaded fixture catches the drift.
func TestFixture_SurrogateSession(t *testing.T) {
	spec := surrogateSpec(ScheduleSpec{Kind: Schedule2Stage, SoftIters: 2, TempIters: 2, HardIters: 2}, 33)
	fx := &Fixture{
		Description: "two-stage hallucination, length 8",
		Spec:        spec,
		Steps:       runSpecTrajectory(t, spec),
	}

	path := filepath.Join(t.TempDir(), "session.json")
	if err := WriteFixture(path, fx); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, summary, err := Replay(context.Background(), loaded, 0)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.Total != len(fx.Steps) || summary.Passed != summary.Total {
		t.Fatalf("summary: %+v, want all %d steps passed", summary, len(fx.Steps))
	}
	for i, r := range results {
		if !r.OK {
			t.Errorf("step %d: delta=%g seq match=%v", i, r.Delta, r.SeqMatch)
		}
	}
}

// TestFixture_RoundTrip verifies write/load preserves every field.
func TestFixture_RoundTrip(t *testing.T) {
	fx := &Fixture{
		Description: "round trip",
		Spec: RunSpec{
			Protocol:  design.ProtocolPartial,
			Length:    6,
			NumSeqs:   2,
			Reference: "ARNDCQ",
			Seed:      99,
			Weights:   map[string]float64{"profile": 1, "plddt": 0.5},
			Pos:       []int{0, 2, 4},
			Models:    2,
			Recycles:  1,
			Init:      InitSpec{Wildtype: true, AddSeq: true, RmAA: "C,W"},
			Optimizer: OptimizerSpec{Rule: optim.RuleAdam, LRScale: 0.5},
			Oracle:    OracleSpec{Name: "surrogate", Replicas: 3, FixedRecycles: 2, HasStructure: true},
			Schedule:  ScheduleSpec{Kind: ScheduleSemigreedy, Iters: 4, Tries: 2},
		},
		Steps: []Expected{
			{Step: 0, Loss: 1.25, Sequence: "ARNDCQ"},
			{Step: 1, Loss: 1.125, Sequence: "ARNDCA"},
		},
	}

	path := filepath.Join(t.TempDir(), "rt.json")
	if err := WriteFixture(path, fx); err != nil {
		t.Fatalf("WriteFixture: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if !reflect.DeepEqual(fx, loaded) {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", loaded, fx)
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("testdata/nonexistent.json"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests

// #region converter-tests

func TestRunSpec_SessionConfig(t *testing.T) {
	r := RunSpec{
		Protocol:     design.ProtocolBinder,
		Length:       12,
		TargetLen:    30,
		Redesign:     true,
		Reference:    "AAA",
		Weights:      map[string]float64{"con": 2},
		Pos:          []int{1, 3},
		Models:       3,
		SampleModels: true,
		Recycles:     2,
		Optimizer:    OptimizerSpec{Rule: optim.RuleAdam, LRScale: 2},
	}
	cfg := r.SessionConfig()

	if cfg.Protocol != design.ProtocolBinder || cfg.Length != 12 || cfg.TargetLen != 30 {
		t.Fatalf("shape mapping: %+v", cfg)
	}
	if cfg.NumSeqs != 1 {
		t.Fatalf("zero NumSeqs should default to 1, got %d", cfg.NumSeqs)
	}
	if !cfg.Redesign || cfg.Reference != "AAA" {
		t.Fatalf("redesign mapping: %+v", cfg)
	}
	if cfg.Options.Weights["con"] != 2 {
		t.Fatalf("weights: %v", cfg.Options.Weights)
	}
	if got := cfg.Options.Pos; len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("pos: %v", got)
	}
	if cfg.Options.Models != 3 || !cfg.Options.SampleModels || cfg.Options.Recycles != 2 {
		t.Fatalf("model options: %+v", cfg.Options)
	}
	if cfg.Optimizer.Rule != optim.RuleAdam || cfg.Optimizer.LRScale != 2 {
		t.Fatalf("optimizer: %+v", cfg.Optimizer)
	}

	// The session config must not alias the RunSpec's weight map.
	r.Weights["con"] = 99
	if cfg.Options.Weights["con"] != 2 {
		t.Fatal("weights aliased into session config")
	}
}

func TestInitSpec_Config(t *testing.T) {
	i := InitSpec{Gumbel: true, Soft: true, Wildtype: true, Sequence: "ACD", AddSeq: true, RmAA: "C"}
	got := i.Config()
	want := design.InitConfig{Gumbel: true, Soft: true, Wildtype: true, Sequence: "ACD", AddSeq: true, RmAA: "C"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("init mapping: got=%+v want=%+v", got, want)
	}
}

func TestOptimizerSpec_Defaults(t *testing.T) {
	def := OptimizerSpec{}.Config()
	if def.Rule != optim.RuleSGD || def.LRScale != 1 {
		t.Fatalf("zero spec should keep defaults, got %+v", def)
	}
	got := OptimizerSpec{Rule: optim.RuleAdam, LRScale: 0.25}.Config()
	if got.Rule != optim.RuleAdam || got.LRScale != 0.25 {
		t.Fatalf("explicit spec: %+v", got)
	}
}

func TestOracleSpec_Defaults(t *testing.T) {
	if got, want := (OracleSpec{}).SurrogateConfig(), oracle.DefaultSurrogateConfig(); got != want {
		t.Fatalf("zero spec: got=%+v want=%+v", got, want)
	}
	got := OracleSpec{Name: "contact", Replicas: 2, FixedRecycles: 1}.SurrogateConfig()
	if got.Name != "contact" || got.Replicas != 2 || got.FixedRecycles != 1 || got.HasStructure {
		t.Fatalf("explicit spec: %+v", got)
	}

	ad := OracleSpec{}.AdapterConfig()
	if ad.RecycleMode != oracle.RecycleLast {
		t.Fatalf("default recycle mode: %+v", ad)
	}
	ad = OracleSpec{RecycleMode: oracle.RecycleSample, Parallel: true}.AdapterConfig()
	if ad.RecycleMode != oracle.RecycleSample || !ad.Parallel {
		t.Fatalf("explicit adapter spec: %+v", ad)
	}
}

func TestScheduleSpec_Validate(t *testing.T) {
	for _, kind := range []string{
		ScheduleLogits, ScheduleSoft, ScheduleHard,
		Schedule2Stage, Schedule3Stage, ScheduleTemplate, ScheduleSemigreedy,
	} {
		if err := (ScheduleSpec{Kind: kind}).Validate(); err != nil {
			t.Fatalf("kind %q: %v", kind, err)
		}
	}
	if err := (ScheduleSpec{Kind: "anneal"}).Validate(); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

// #endregion converter-tests

package design

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region stub

// stubOracle discretizes the incoming logits (bias honored) and scores
// them with a deterministic content-based loss, recording every call.
type stubOracle struct {
	mu     sync.Mutex
	losses []float64
	fail   error
	lossFn func(hard seq.Logits) float64
	plddt  []float32
}

func (o *stubOracle) Info(context.Context) (oracle.Info, error) {
	return oracle.Info{Name: "stub", Replicas: 1, HasStructure: true}, nil
}

func (o *stubOracle) Evaluate(_ context.Context, req oracle.EvalRequest) (oracle.EvalResult, error) {
	if o.fail != nil {
		return oracle.EvalResult{}, o.fail
	}
	x := req.Seq
	z := x
	if req.Options.Bias.Data != nil {
		var err error
		z, err = x.AddBias(req.Options.Bias)
		if err != nil {
			return oracle.EvalResult{}, err
		}
	}
	hard := seq.OneHot(z.Argmax(), x.Alphabet)

	loss := 0.0
	if o.lossFn != nil {
		loss = o.lossFn(hard)
	}
	o.mu.Lock()
	o.losses = append(o.losses, loss)
	o.mu.Unlock()

	res := oracle.EvalResult{Loss: loss}
	res.Aux.Losses = map[string]float64{"profile": loss}
	res.Aux.SeqHard = hard
	res.Aux.SeqPseudo = z.Softmax(1)
	if o.plddt != nil {
		res.Aux.PLDDT = append([]float32(nil), o.plddt...)
	} else {
		res.Aux.PLDDT = make([]float32, x.Length)
		for i := range res.Aux.PLDDT {
			res.Aux.PLDDT[i] = 0.5
		}
	}
	res.Aux.Coords = make([]float32, 3*x.Length)
	if req.WantGradient {
		g := seq.NewLogits(x.Seqs, x.Length, x.Alphabet)
		for i := range g.Data {
			g.Data[i] = 0.01
		}
		res.Gradient = g
	}
	return res, nil
}

func (o *stubOracle) recorded() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]float64(nil), o.losses...)
}

// contentLoss scores the discretized first sequence by its residue
// indices, so different sequences almost always score differently.
func contentLoss(hard seq.Logits) float64 {
	idx := hard.Argmax()[0]
	var total float64
	for l, a := range idx {
		total += float64((l+3)*a) / 7.0
	}
	return total
}

func newStubSession(t *testing.T, o *stubOracle, cfg Config) *Session {
	t.Helper()
	ad, err := oracle.NewAdapter(context.Background(), o, oracle.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	s, err := New(cfg, ad)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func testConfig(length int) Config {
	cfg := DefaultConfig()
	cfg.Length = length
	cfg.Options.Weights = map[string]float64{"profile": 1.0}
	return cfg
}

// #endregion stub

func TestConfig_ValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"protocol", func(c *Config) { c.Protocol = "denovo" }},
		{"length", func(c *Config) { c.Length = 0 }},
		{"numseqs", func(c *Config) { c.NumSeqs = 0 }},
		{"alphabet", func(c *Config) { c.Alphabet = 1 }},
		{"fixbb reference", func(c *Config) { c.Protocol = ProtocolFixbb; c.Reference = "AR" }},
		{"binder target", func(c *Config) { c.Protocol = ProtocolBinder; c.TargetLen = 0 }},
		{"partial positions", func(c *Config) { c.Protocol = ProtocolPartial }},
		{"partial range", func(c *Config) { c.Protocol = ProtocolPartial; c.Options.Pos = []int{99} }},
		{"partial repeat", func(c *Config) { c.Protocol = ProtocolPartial; c.Options.Pos = []int{1, 1} }},
		{"reference residue", func(c *Config) { c.Reference = "AB#" }},
	}
	for _, tc := range cases {
		cfg := testConfig(6)
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestSession_RestartFixedSeedReproducesInitialDistribution(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(8))
	seed := int64(42)

	if err := s.Restart(RestartOptions{Seed: &seed}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	first := s.Logits()
	if err := s.Restart(RestartOptions{Seed: &seed}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	second := s.Logits()

	if !first.ShapeEquals(second) {
		t.Fatalf("shape changed across restarts")
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("logit %d differs: %v vs %v", i, first.Data[i], second.Data[i])
		}
	}
}

func TestSession_RestartDrawsDistinctSeeds(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(8))
	seen := make(map[int64]bool)
	for i := 0; i < 4; i++ {
		if err := s.Restart(RestartOptions{}); err != nil {
			t.Fatalf("restart: %v", err)
		}
		seen[s.Seed()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("fresh restarts should draw fresh seeds, got %v", seen)
	}
}

func TestSession_InitSoftRowsAreDistributions(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(6))
	seed := int64(7)
	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Soft: true}}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	x := s.Logits()
	for l := 0; l < x.Length; l++ {
		var sum float64
		for a := 0; a < x.Alphabet; a++ {
			sum += float64(x.At(0, l, a))
		}
		if math.Abs(sum-1) > 1e-5 {
			t.Fatalf("position %d: row sums to %v, want 1", l, sum)
		}
	}
}

func TestSession_InitGumbelDiffersFromGaussian(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(6))
	seed := int64(7)

	if err := s.Restart(RestartOptions{Seed: &seed}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	gaussian := s.Logits()
	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Gumbel: true}}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	gumbel := s.Logits()

	same := true
	for i := range gaussian.Data {
		if gaussian.Data[i] != gumbel.Data[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("gumbel initialization should reshape the noise")
	}
}

func TestSession_InitWildtypeFixbb(t *testing.T) {
	cfg := testConfig(6)
	cfg.Protocol = ProtocolFixbb
	cfg.Reference = "ARNDCQ"
	s := newStubSession(t, &stubOracle{}, cfg)

	seed := int64(3)
	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Wildtype: true}}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	got := seq.Decode(s.Logits().Argmax()[0])
	if got != "ARNDCQ" {
		t.Fatalf("wildtype init: got=%q want=%q", got, "ARNDCQ")
	}
}

func TestSession_InitWildtypePartialPinsConstrainedPositions(t *testing.T) {
	cfg := testConfig(6)
	cfg.Protocol = ProtocolPartial
	cfg.Options.Pos = []int{1, 4}
	cfg.Reference = "AR"
	s := newStubSession(t, &stubOracle{}, cfg)

	seed := int64(3)
	err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Wildtype: true, AddSeq: true}})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	idx := s.Logits().Argmax()[0]
	if seq.Residues[idx[1]] != 'A' || seq.Residues[idx[4]] != 'R' {
		t.Fatalf("constrained positions not seeded: %v", idx)
	}
	bias := s.Options().Bias
	if bias.Data == nil || bias.At(1, 0) != seq.ForceOffset {
		t.Fatalf("add_seq should pin constrained positions with a large bias")
	}
}

func TestSession_InitStartingSequenceAndRmAA(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(4))
	seed := int64(11)
	err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Sequence: "AAAA", AddSeq: true, RmAA: "C,W"}})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}

	bias := s.Options().Bias
	if bias.Data == nil {
		t.Fatalf("bias expected")
	}
	if bias.At(0, 0) != seq.ForceOffset {
		t.Fatalf("starting sequence should be pinned, got %v", bias.At(0, 0))
	}
	ic, _ := seq.ResidueIndex('C')
	iw, _ := seq.ResidueIndex('W')
	for l := 0; l < 4; l++ {
		if bias.At(l, ic) != -seq.ForceOffset || bias.At(l, iw) != -seq.ForceOffset {
			t.Fatalf("position %d: removed residues not forbidden", l)
		}
	}
	if got := seq.Decode(s.Logits().Argmax()[0]); got != "AAAA" {
		t.Fatalf("starting sequence should dominate the init noise: %q", got)
	}
}

func TestSession_InitRejectsMismatchedInputs(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(4))
	seed := int64(1)

	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Sequence: "AAAAAA"}}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Wildtype: true}}); err == nil {
		t.Fatalf("expected missing reference error")
	}
	bad := seq.NewLogits(2, 4, seq.AlphabetSize)
	if err := s.Restart(RestartOptions{Seed: &seed, Init: InitConfig{Logits: bad}}); err == nil {
		t.Fatalf("expected logits shape error")
	}
}

func TestSession_StructureWeightsPrunedForContactOracle(t *testing.T) {
	cfg := testConfig(6)
	cfg.Options.Weights = map[string]float64{
		"profile": 1.0, "con": 0.5,
		"plddt": 0.1, "pae": 0.1, "i_pae": 0.1, "sc_rmsd": 0.2, "fape": 0.3,
	}
	sur, err := oracle.NewSurrogate(oracle.SurrogateConfig{Name: "contact", Replicas: 1, HasStructure: false})
	if err != nil {
		t.Fatalf("NewSurrogate: %v", err)
	}
	ad, err := oracle.NewAdapter(context.Background(), sur, oracle.DefaultConfig())
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	s, err := New(cfg, ad)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := s.Options().Weights
	for _, k := range []string{"plddt", "pae", "i_pae", "sc_rmsd", "fape"} {
		if _, ok := w[k]; ok {
			t.Fatalf("structure weight %q should be pruned", k)
		}
	}
	for _, k := range []string{"profile", "con"} {
		if _, ok := w[k]; !ok {
			t.Fatalf("weight %q should survive pruning", k)
		}
	}
}

func TestSession_StepMergesOverridesPersistently(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(5))
	err := s.Step(context.Background(), StepConfig{Overrides: Overrides{
		Temp:    f64p(0.7),
		Weights: map[string]float64{"con": 0.25},
	}})
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	o := s.Options()
	if o.Temp != 0.7 {
		t.Fatalf("temp override should persist: got=%v", o.Temp)
	}
	if o.Weights["con"] != 0.25 || o.Weights["profile"] != 1.0 {
		t.Fatalf("weights should merge: %v", o.Weights)
	}
	if s.StepCount() != 1 {
		t.Fatalf("step count: got=%d want=1", s.StepCount())
	}
}

func TestSession_StepLeavesStateUntouchedOnOracleError(t *testing.T) {
	stub := &stubOracle{}
	s := newStubSession(t, stub, testConfig(5))
	seed := int64(9)
	if err := s.Restart(RestartOptions{Seed: &seed}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	before := s.Logits()

	boom := errors.New("oracle down")
	stub.fail = boom
	err := s.Step(context.Background(), StepConfig{})
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped oracle error, got %v", err)
	}
	if s.StepCount() != 0 {
		t.Fatalf("failed step must not advance the counter")
	}
	after := s.Logits()
	for i := range before.Data {
		if before.Data[i] != after.Data[i] {
			t.Fatalf("failed step must not move the distribution")
		}
	}
	if s.Trajectory().Len() != 0 {
		t.Fatalf("failed step must not record")
	}
}

func TestSession_StepMovesDistribution(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(5))
	before := s.Logits()
	if err := s.Step(context.Background(), StepConfig{}); err != nil {
		t.Fatalf("step: %v", err)
	}
	after := s.Logits()

	moved := false
	for i := range before.Data {
		if before.Data[i] != after.Data[i] {
			moved = true
			break
		}
	}
	if !moved {
		t.Fatalf("gradient step should move the distribution")
	}
}

func TestSession_RestartKeepHistoryPreservesTrajectoryAndOptions(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(5))
	err := s.Step(context.Background(), StepConfig{Overrides: Overrides{Temp: f64p(0.5)}, SaveBest: true})
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	seed := int64(4)
	if err := s.Restart(RestartOptions{Seed: &seed, KeepHistory: true}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.Trajectory().Len() != 1 {
		t.Fatalf("keep history must preserve the trajectory")
	}
	if !s.Best().Set {
		t.Fatalf("keep history must preserve the best checkpoint")
	}
	if s.Options().Temp != 0.5 {
		t.Fatalf("keep history must preserve options: temp=%v", s.Options().Temp)
	}
	if s.StepCount() != 0 {
		t.Fatalf("restart must always reset the step counter")
	}

	if err := s.Restart(RestartOptions{Seed: &seed}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.Trajectory().Len() != 0 || s.Best().Set {
		t.Fatalf("plain restart must clear history")
	}
	if s.Options().Temp != 1.0 {
		t.Fatalf("plain restart must restore default options: temp=%v", s.Options().Temp)
	}
}

func TestSession_RestartSetDefaultsSticksAcrossRestarts(t *testing.T) {
	s := newStubSession(t, &stubOracle{}, testConfig(5))
	err := s.Restart(RestartOptions{
		SetDefaults: true,
		Weights:     map[string]float64{"con": 0.4},
		Options:     &Overrides{Recycles: intp(2)},
	})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := s.Restart(RestartOptions{}); err != nil {
		t.Fatalf("restart: %v", err)
	}

	o := s.Options()
	if o.Weights["con"] != 0.4 || o.Recycles != 2 {
		t.Fatalf("defaults should persist: weights=%v recycles=%d", o.Weights, o.Recycles)
	}
}

func TestMigrateSeqInit(t *testing.T) {
	ic := MigrateSeqInit("ARND", 4)
	if ic.Sequence != "ARND" || ic.Gumbel || ic.Soft || ic.Wildtype {
		t.Fatalf("length-matched residue string should become a starting sequence: %+v", ic)
	}

	ic = MigrateSeqInit("gumbel_soft", 4)
	if !ic.Gumbel || !ic.Soft || ic.Wildtype || ic.Sequence != "" {
		t.Fatalf("mode keywords not recognized: %+v", ic)
	}

	ic = MigrateSeqInit("wt", 4)
	if !ic.Wildtype {
		t.Fatalf("wt alias not recognized: %+v", ic)
	}

	ic = MigrateSeqInit("BBBB", 4)
	if ic.Sequence != "" || ic.Gumbel || ic.Soft || ic.Wildtype {
		t.Fatalf("undecodable same-length string should fall through to modes: %+v", ic)
	}
}

func intp(v int) *int { return &v }

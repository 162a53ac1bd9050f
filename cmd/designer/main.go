package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/vxh357/ColabDesign/internal/archive"
	"github.com/vxh357/ColabDesign/internal/design"
	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/replay"
	"github.com/vxh357/ColabDesign/internal/seq"
	"github.com/vxh357/ColabDesign/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("DESIGN_DB", "design_runs.db"), "path to the run database")
	oracleAddr := flag.String("oracle", envOr("ORACLE_ADDR", ""), "gRPC oracle address; empty runs the built-in surrogate")
	archivePath := flag.String("archive", "", "write the trajectory to this parquet file")
	fixturePath := flag.String("fixture", "", "write a replay fixture of the finished run to this file")
	quiet := flag.Bool("quiet", false, "suppress per-step progress lines")

	protocol := flag.String("protocol", design.ProtocolHallucination, "design protocol: fixbb, hallucination, binder, partial")
	length := flag.Int("length", 50, "designed sequence length")
	numSeqs := flag.Int("num-seqs", 1, "sequences designed in parallel")
	targetLen := flag.Int("target-len", 0, "target length for the binder protocol")
	reference := flag.String("reference", "", "reference sequence for fixbb, binder, and partial")
	redesign := flag.Bool("redesign", false, "start the binder from the reference instead of scratch")
	pos := flag.String("pos", "", "comma-separated constrained positions for the partial protocol")
	seed := flag.Int64("seed", -1, "random seed; negative draws a fresh one")

	schedule := flag.String("schedule", replay.Schedule3Stage, "stage schedule: logits, soft, hard, 2stage, 3stage, template, semigreedy")
	iters := flag.Int("iters", 0, "iterations for single-stage schedules (0 uses the default)")
	softIters := flag.Int("soft-iters", 0, "soft stage iterations for staged schedules")
	tempIters := flag.Int("temp-iters", 0, "temperature stage iterations for staged schedules")
	hardIters := flag.Int("hard-iters", 0, "hard stage iterations for staged schedules")
	tries := flag.Int("tries", 0, "mutations scored per semigreedy iteration")

	rule := flag.String("opt", "", "gradient rule: sgd or adam")
	lrScale := flag.Float64("lr-scale", 0, "learning rate multiplier")

	weights := flag.String("weights", "", "loss weights as term=value pairs, comma separated")
	models := flag.Int("models", 0, "oracle models averaged per step")
	sampleModels := flag.Bool("sample-models", false, "sample the model subset each step instead of using the first k")
	recycles := flag.Int("recycles", 0, "oracle recycle count")
	recycleMode := flag.String("recycle-mode", "", "recycle mode: last, average, sample, add_prev, backprop")

	wildtype := flag.Bool("wildtype", false, "initialize logits from the reference sequence")
	addSeq := flag.Bool("add-seq", false, "bias the design toward the starting sequence")
	startSeq := flag.String("start-seq", "", "initialize logits from this sequence")
	gumbel := flag.Bool("gumbel", false, "initialize logits with gumbel noise")
	softInit := flag.Bool("soft-init", false, "scale initial logits toward a soft distribution")
	rmAA := flag.String("rm-aa", "", "residue types to exclude, comma separated")
	initMode := flag.String("init", "", "legacy init shorthand (a sequence, or keywords like wt, gumbel, soft_gumbel); overrides the individual init flags")
	flag.Parse()

	if *initMode != "" {
		ic := design.MigrateSeqInit(*initMode, *length)
		*gumbel, *softInit, *wildtype, *startSeq = ic.Gumbel, ic.Soft, ic.Wildtype, ic.Sequence
	}

	spec := replay.RunSpec{
		Protocol:     *protocol,
		Length:       *length,
		NumSeqs:      *numSeqs,
		TargetLen:    *targetLen,
		Redesign:     *redesign,
		Reference:    *reference,
		Seed:         *seed,
		SampleModels: *sampleModels,
		Models:       *models,
		Recycles:     *recycles,
		Init: replay.InitSpec{
			Gumbel:   *gumbel,
			Soft:     *softInit,
			Wildtype: *wildtype,
			Sequence: *startSeq,
			AddSeq:   *addSeq,
			RmAA:     *rmAA,
		},
		Optimizer: replay.OptimizerSpec{Rule: *rule, LRScale: *lrScale},
		Oracle:    replay.OracleSpec{RecycleMode: *recycleMode},
		Schedule: replay.ScheduleSpec{
			Kind:      *schedule,
			Iters:     *iters,
			SoftIters: *softIters,
			TempIters: *tempIters,
			HardIters: *hardIters,
			Tries:     *tries,
		},
	}
	var err error
	if spec.Weights, err = parseWeights(*weights); err != nil {
		log.Fatalf("parse weights: %v", err)
	}
	if spec.Pos, err = parseInts(*pos); err != nil {
		log.Fatalf("parse pos: %v", err)
	}
	if err := spec.Schedule.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	db, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orc, closeOracle, info, err := openOracle(ctx, *oracleAddr, spec.Oracle)
	if err != nil {
		log.Fatalf("failed to open oracle: %v", err)
	}
	defer closeOracle()

	sess, err := design.New(spec.SessionConfig(), orc)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}
	if !*quiet {
		sess.SetProgress(os.Stdout)
	}

	restart := design.RestartOptions{Init: spec.Init.Config()}
	if spec.Seed >= 0 {
		restart.Seed = &spec.Seed
	}
	if err := sess.Restart(restart); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}
	spec.Seed = sess.Seed()

	configJSON, err := json.Marshal(spec)
	if err != nil {
		log.Fatalf("encode run spec: %v", err)
	}
	run, err := db.CreateRun(spec.Protocol, spec.Seed, string(configJSON))
	if err != nil {
		log.Fatalf("failed to create run: %v", err)
	}

	fmt.Printf("run %s: %s %s over %s\n", run.RunID, spec.Protocol, spec.Schedule.Kind, info)

	runErr := spec.Schedule.Run(ctx, sess)

	persist(db, run.RunID, spec.Protocol, sess, *archivePath)

	if runErr != nil {
		log.Fatalf("design failed: %v", runErr)
	}
	if *fixturePath != "" {
		fx := replay.Fixture{
			Description: fmt.Sprintf("run %s (%s %s)", run.RunID, spec.Protocol, spec.Schedule.Kind),
			Spec:        spec,
			Steps:       replay.FromTrajectory(sess.Trajectory().Rows(), sess.Trajectory().Snapshots()),
		}
		if err := replay.WriteFixture(*fixturePath, &fx); err != nil {
			log.Printf("write fixture: %v", err)
		} else {
			fmt.Printf("wrote fixture %s (%d steps)\n", *fixturePath, len(fx.Steps))
		}
	}
	fmt.Printf("completed %d steps\n", sess.StepCount())
	best := sess.Best()
	if best.Set {
		fmt.Printf("best loss %.4f at step %d\n", best.Loss, best.Step)
	}
	if seqs := sess.Sequences(); len(seqs) > 0 {
		fmt.Printf("final %s\n", seqs[0])
	}
	fmt.Printf("final distribution entropy %.3f nats\n", seq.MeanEntropy(sess.Logits().Softmax(1)))
}

// #endregion main

// #region oracle

// openOracle connects to the remote oracle when an address is set and
// falls back to the deterministic surrogate otherwise.
func openOracle(ctx context.Context, addr string, spec replay.OracleSpec) (*oracle.Adapter, func(), string, error) {
	if addr != "" {
		remote, err := oracle.NewRemote(addr)
		if err != nil {
			return nil, nil, "", err
		}
		ad, err := oracle.NewAdapter(ctx, remote, spec.AdapterConfig())
		if err != nil {
			remote.Close()
			return nil, nil, "", err
		}
		return ad, func() { remote.Close() }, "oracle " + addr, nil
	}
	sur, err := oracle.NewSurrogate(spec.SurrogateConfig())
	if err != nil {
		return nil, nil, "", err
	}
	ad, err := oracle.NewAdapter(ctx, sur, spec.AdapterConfig())
	if err != nil {
		return nil, nil, "", err
	}
	return ad, func() {}, "surrogate", nil
}

// #endregion oracle

// #region persist

// persist writes the trajectory, decisions, and checkpoints for a finished
// (or interrupted) run. Storage errors are logged, not fatal, so a long run
// never loses its stdout summary to a disk hiccup.
func persist(db *store.Store, runID, protocol string, sess *design.Session, archivePath string) {
	rows := sess.Trajectory().Rows()
	snaps := sess.Trajectory().Snapshots()

	steps := make([]store.StepRecord, len(rows))
	for i, r := range rows {
		rec := store.StepRecord{
			RunID: runID,
			Step:  r.Step,
			Loss:  r.Loss,
			Soft:  r.Soft,
			Hard:  r.Hard,
			Temp:  r.Temp,
		}
		if len(r.Terms) > 0 {
			if terms, err := json.Marshal(r.Terms); err == nil {
				rec.TermsJSON = string(terms)
			}
		}
		if i < len(snaps) && len(snaps[i].Seqs) > 0 {
			rec.Sequence = snaps[i].Seqs[0]
		}
		steps[i] = rec
	}
	if err := db.AppendSteps(steps); err != nil {
		log.Printf("store steps: %v", err)
	}

	decisions := sess.Decisions()
	if len(decisions) > 0 {
		recs := make([]store.DecisionRecord, len(decisions))
		for i, d := range decisions {
			losses, err := json.Marshal(d.Losses)
			if err != nil {
				losses = []byte("[]")
			}
			recs[i] = store.DecisionRecord{
				RunID:      runID,
				Step:       d.Step,
				Tries:      d.Tries,
				Position:   d.Position,
				Identity:   d.Identity,
				LossesJSON: string(losses),
				Loss:       d.Loss,
			}
		}
		if err := db.AppendDecisions(recs); err != nil {
			log.Printf("store decisions: %v", err)
		}
	}

	if len(rows) > 0 {
		final := sess.Logits()
		_, err := db.SaveCheckpoint(store.CheckpointRecord{
			RunID:    runID,
			Step:     rows[len(rows)-1].Step,
			Loss:     sess.Loss(),
			Seqs:     final.Seqs,
			Length:   final.Length,
			Alphabet: final.Alphabet,
			Logits:   final.Data,
		})
		if err != nil {
			log.Printf("store final checkpoint: %v", err)
		}
	}
	if best := sess.Best(); best.Set && best.Aux.SeqHard.Data != nil {
		hard := best.Aux.SeqHard
		_, err := db.SaveCheckpoint(store.CheckpointRecord{
			RunID:    runID,
			Step:     best.Step,
			Loss:     best.Loss,
			Seqs:     hard.Seqs,
			Length:   hard.Length,
			Alphabet: hard.Alphabet,
			Logits:   hard.Data,
			Best:     true,
		})
		if err != nil {
			log.Printf("store best checkpoint: %v", err)
		}
	}

	if archivePath != "" && len(rows) > 0 {
		arch := make([]archive.StepRow, len(rows))
		for i, r := range rows {
			row := archive.StepRow{
				RunID:    runID,
				Step:     int32(r.Step),
				Protocol: protocol,
				Loss:     r.Loss,
				Soft:     float32(r.Soft),
				Hard:     float32(r.Hard),
				Temp:     float32(r.Temp),
				Sequence: steps[i].Sequence,
			}
			if steps[i].TermsJSON != "" {
				row.TermsJSON = []byte(steps[i].TermsJSON)
			}
			if i < len(snaps) {
				row.PLDDTMean = archive.MeanConfidence(snaps[i].PLDDT)
			}
			arch[i] = row
		}
		if err := archive.WriteSteps(archivePath, arch); err != nil {
			log.Printf("archive steps: %v", err)
		} else {
			fmt.Printf("archived %d steps to %s\n", len(arch), archivePath)
		}
	}
}

// #endregion persist

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseWeights parses "term=value" pairs, comma separated.
func parseWeights(s string) (map[string]float64, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("expected term=value, got %q", pair)
		}
		w, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", name, err)
		}
		out[name] = w
	}
	return out, nil
}

// parseInts parses a comma-separated position list.
func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// #endregion helpers

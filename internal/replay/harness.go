// Package replay re-runs recorded design trajectories from fixtures and
// verifies the runs reproduce themselves step for step. Fixtures run
// against the deterministic surrogate oracle, so a drift means the driver
// logic changed, not the model.
package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/vxh357/ColabDesign/internal/design"
	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/trajectory"
)

// #region types

// DefaultTolerance bounds the absolute per-step loss drift treated as a
// faithful replay. Replays are bit-reproducible on a given build, so the
// tolerance only absorbs float formatting round-trips.
const DefaultTolerance = 1e-9

// StepResult compares one replayed step against its recording.
type StepResult struct {
	Step     int
	WantLoss float64
	GotLoss  float64
	Delta    float64
	WantSeq  string
	GotSeq   string
	SeqMatch bool
	OK       bool
}

// Summary aggregates a replay comparison.
type Summary struct {
	Total    int
	Passed   int
	Drifted  int
	MaxDelta float64
}

// #endregion types

// #region schedule

// Run executes the named stage protocol on a session. Zero iteration
// counts use the protocol defaults.
func (sp ScheduleSpec) Run(ctx context.Context, s *design.Session) error {
	iters := func(n, def int) int {
		if n > 0 {
			return n
		}
		return def
	}
	switch sp.Kind {
	case ScheduleLogits:
		return s.DesignLogits(ctx, iters(sp.Iters, 100))
	case ScheduleSoft:
		return s.DesignSoft(ctx, iters(sp.Iters, 100))
	case ScheduleHard:
		return s.DesignHard(ctx, iters(sp.Iters, 50))
	case Schedule2Stage:
		return s.Design2Stage(ctx, sp.SoftIters, sp.TempIters, sp.HardIters)
	case Schedule3Stage:
		return s.Design3Stage(ctx, sp.SoftIters, sp.TempIters, sp.HardIters)
	case ScheduleTemplate:
		return s.TemplatePredesign(ctx, iters(sp.Iters, 100))
	case ScheduleSemigreedy:
		cfg := design.DefaultSemigreedyConfig()
		if sp.Iters > 0 {
			cfg.Iters = sp.Iters
		}
		if sp.Tries > 0 {
			cfg.Tries = sp.Tries
		}
		return s.DesignSemigreedy(ctx, cfg)
	}
	return fmt.Errorf("schedule: unknown kind %q", sp.Kind)
}

// #endregion schedule

// #region harness

// Replay rebuilds a session from the fixture's spec, runs its schedule
// against the surrogate oracle, and compares every recorded step within
// tol. A step-count or step-order mismatch is an error; loss and sequence
// drift land in the results.
func Replay(ctx context.Context, fx *Fixture, tol float64) ([]StepResult, Summary, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if err := fx.Spec.Schedule.Validate(); err != nil {
		return nil, Summary{}, err
	}

	sur, err := oracle.NewSurrogate(fx.Spec.Oracle.SurrogateConfig())
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay: %w", err)
	}
	ad, err := oracle.NewAdapter(ctx, sur, fx.Spec.Oracle.AdapterConfig())
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay: %w", err)
	}
	s, err := design.New(fx.Spec.SessionConfig(), ad)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay: %w", err)
	}
	seed := fx.Spec.Seed
	if err := s.Restart(design.RestartOptions{Seed: &seed, Init: fx.Spec.Init.Config()}); err != nil {
		return nil, Summary{}, fmt.Errorf("replay: %w", err)
	}
	if err := fx.Spec.Schedule.Run(ctx, s); err != nil {
		return nil, Summary{}, fmt.Errorf("replay: %w", err)
	}

	rows := s.Trajectory().Rows()
	snaps := s.Trajectory().Snapshots()
	if len(rows) != len(fx.Steps) {
		return nil, Summary{}, fmt.Errorf("replay: produced %d steps, fixture records %d", len(rows), len(fx.Steps))
	}

	results := make([]StepResult, len(rows))
	for i, row := range rows {
		want := fx.Steps[i]
		if row.Step != want.Step {
			return nil, Summary{}, fmt.Errorf("replay: step %d replayed out of order as %d", want.Step, row.Step)
		}
		res := StepResult{
			Step:     row.Step,
			WantLoss: want.Loss,
			GotLoss:  row.Loss,
			WantSeq:  want.Sequence,
		}
		if i < len(snaps) && len(snaps[i].Seqs) > 0 {
			res.GotSeq = snaps[i].Seqs[0]
		}
		res.Delta = math.Abs(res.GotLoss - res.WantLoss)
		res.SeqMatch = want.Sequence == "" || res.GotSeq == want.Sequence
		res.OK = res.Delta <= tol && res.SeqMatch
		results[i] = res
	}
	return results, Summarize(results), nil
}

// Summarize folds step results into aggregate counts.
func Summarize(results []StepResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK {
			s.Passed++
		} else {
			s.Drifted++
		}
		if r.Delta > s.MaxDelta {
			s.MaxDelta = r.Delta
		}
	}
	return s
}

// FromTrajectory converts a recorded trajectory into expected outcomes,
// pairing each row with the first sequence of its snapshot.
func FromTrajectory(rows []trajectory.Row, snaps []trajectory.Snapshot) []Expected {
	out := make([]Expected, len(rows))
	for i, r := range rows {
		e := Expected{Step: r.Step, Loss: r.Loss}
		if i < len(snaps) && len(snaps[i].Seqs) > 0 {
			e.Sequence = snaps[i].Seqs[0]
		}
		out[i] = e
	}
	return out
}

// #endregion harness

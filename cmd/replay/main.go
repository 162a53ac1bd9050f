package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vxh357/ColabDesign/internal/replay"
	"github.com/vxh357/ColabDesign/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run database (DB mode)")
	runID := flag.String("run", "", "run to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	tol := flag.Float64("tol", 0, "absolute loss tolerance (0 uses the default)")
	flag.Parse()

	dbMode := *dbPath != "" && *runID != ""
	if dbMode == (*fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/design_runs.db --run id [--tol x]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json [--tol x]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *tol)
	} else {
		exitCode = runDBMode(*dbPath, *runID, *tol)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region modes

func runFixtureMode(path string, tol float64) int {
	fx, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	return replayAndReport(fx, tol)
}

func runDBMode(dbPath, runID string, tol float64) int {
	db, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer db.Close()

	fx, err := fixtureFromRun(db, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}
	return replayAndReport(fx, tol)
}

// fixtureFromRun rebuilds a replay fixture from a stored run: the run spec
// from its recorded configuration, the expectations from its step log.
func fixtureFromRun(db *store.Store, runID string) (*replay.Fixture, error) {
	run, err := db.GetRun(runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var spec replay.RunSpec
	if err := json.Unmarshal([]byte(run.ConfigJSON), &spec); err != nil {
		return nil, fmt.Errorf("parse run config: %w", err)
	}
	steps, err := db.Steps(runID)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("run %s has no recorded steps", runID)
	}

	expected := make([]replay.Expected, len(steps))
	for i, s := range steps {
		expected[i] = replay.Expected{Step: s.Step, Loss: s.Loss, Sequence: s.Sequence}
	}
	return &replay.Fixture{
		Description: fmt.Sprintf("run %s (%s, seed %d)", run.RunID, run.Protocol, run.Seed),
		Spec:        spec,
		Steps:       expected,
	}, nil
}

// #endregion modes

// #region output

func replayAndReport(fx *replay.Fixture, tol float64) int {
	if fx.Description != "" {
		fmt.Printf("Replaying %s\n", fx.Description)
	}

	results, summary, err := replay.Replay(context.Background(), fx, tol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	fmt.Printf("%6s  %14s  %14s  %10s  %s\n", "Step", "Recorded", "Replayed", "Delta", "Match")
	fmt.Printf("%6s+-%14s+-%14s+-%10s+-%s\n",
		"------", "--------------", "--------------", "----------", "------")
	for _, r := range results {
		match := "OK"
		if !r.OK {
			match = "DRIFT"
			if !r.SeqMatch {
				match = "DRIFT (seq)"
			}
		}
		fmt.Printf("%6d  %14.6f  %14.6f  %10.2e  %s\n",
			r.Step, r.WantLoss, r.GotLoss, r.Delta, match)
	}

	fmt.Printf("\nSummary: %d total, %d match, %d drift (max delta %.2e)\n",
		summary.Total, summary.Passed, summary.Drifted, summary.MaxDelta)

	if summary.Drifted > 0 {
		return 1
	}
	return 0
}

// #endregion output

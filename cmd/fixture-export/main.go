package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vxh357/ColabDesign/internal/replay"
	"github.com/vxh357/ColabDesign/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run database")
	runID := flag.String("run", "", "run to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	desc := flag.String("desc", "", "fixture description (defaults to run metadata)")
	flag.Parse()

	if *dbPath == "" || *runID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --run id --out path/to/fixture.json [--desc text]")
		os.Exit(2)
	}

	if err := run(*dbPath, *runID, *outPath, *desc); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region export

func run(dbPath, runID, outPath, desc string) error {
	db, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rec, err := db.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	var spec replay.RunSpec
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &spec); err != nil {
		return fmt.Errorf("parse run config: %w", err)
	}

	steps, err := db.Steps(runID)
	if err != nil {
		return fmt.Errorf("load steps: %w", err)
	}
	if len(steps) == 0 {
		return fmt.Errorf("run %s has no recorded steps", runID)
	}

	expected := make([]replay.Expected, len(steps))
	for i, s := range steps {
		expected[i] = replay.Expected{Step: s.Step, Loss: s.Loss, Sequence: s.Sequence}
	}

	if desc == "" {
		desc = fmt.Sprintf("run %s: %s, seed %d, %d steps", rec.RunID, rec.Protocol, rec.Seed, len(steps))
	}
	fixture := &replay.Fixture{
		Description: desc,
		Spec:        spec,
		Steps:       expected,
	}

	if err := replay.WriteFixture(outPath, fixture); err != nil {
		return err
	}
	fmt.Printf("Wrote fixture to %s (%d steps)\n", outPath, len(expected))
	return nil
}

// #endregion export

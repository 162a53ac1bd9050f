package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/vxh357/ColabDesign/internal/archive"
	"github.com/vxh357/ColabDesign/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", envOr("DESIGN_DB", "design_runs.db"), "path to the run database")
	outPath := flag.String("out", "", "output parquet path")
	last := flag.Int("last", 0, "export only the N most recent runs (0 exports all)")
	protocol := flag.String("protocol", "", "export only runs of this protocol")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: archive-export --out path/to/steps.parquet [--db path] [--last N] [--protocol name]")
		os.Exit(2)
	}

	fmt.Println("=== Run Archive Export ===")
	fmt.Printf("  DB: %s | Out: %s\n", *dbPath, *outPath)

	db, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(*last)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}
	if *protocol != "" {
		kept := runs[:0]
		for _, r := range runs {
			if r.Protocol == *protocol {
				kept = append(kept, r)
			}
		}
		runs = kept
	}
	if len(runs) == 0 {
		fmt.Println("No runs to export. Done.")
		return
	}
	fmt.Printf("  Runs: %d\n\n", len(runs))

	var rows []archive.StepRow
	skipped := 0
	for i, run := range runs {
		steps, err := db.Steps(run.RunID)
		if err != nil {
			log.Printf("steps for %s: %v", shortID(run.RunID), err)
			skipped++
			continue
		}
		for _, s := range steps {
			rows = append(rows, toArchiveRow(run, s))
		}
		if (i+1)%10 == 0 || i+1 == len(runs) {
			fmt.Printf("  [%d/%d] runs read, %d step rows so far\n", i+1, len(runs), len(rows))
		}
	}
	if len(rows) == 0 {
		log.Fatalf("no step rows found across %d runs", len(runs))
	}

	if err := archive.WriteSteps(*outPath, rows); err != nil {
		log.Fatalf("write archive: %v", err)
	}
	verified, err := archive.ReadSteps(*outPath)
	if err != nil {
		log.Fatalf("verify archive: %v", err)
	}
	if len(verified) != len(rows) {
		log.Fatalf("verify archive: wrote %d rows, read back %d", len(rows), len(verified))
	}

	fmt.Printf("\n=== Export Complete ===\n")
	fmt.Printf("  Runs exported: %d\n", len(runs)-skipped)
	if skipped > 0 {
		fmt.Printf("  Runs skipped:  %d\n", skipped)
	}
	fmt.Printf("  Step rows:     %d (verified on read-back)\n", len(verified))
	fmt.Printf("  Archive:       %s\n", *outPath)
}

// #endregion main

// #region convert

// toArchiveRow flattens a stored step into an archive row. Confidence
// summaries live only in archives written during the run itself; the step
// table does not keep per-position confidence.
func toArchiveRow(run store.RunRecord, s store.StepRecord) archive.StepRow {
	row := archive.StepRow{
		RunID:    s.RunID,
		Step:     int32(s.Step),
		Protocol: run.Protocol,
		Loss:     s.Loss,
		Soft:     float32(s.Soft),
		Hard:     float32(s.Hard),
		Temp:     float32(s.Temp),
		Sequence: s.Sequence,
	}
	if s.TermsJSON != "" && json.Valid([]byte(s.TermsJSON)) {
		row.TermsJSON = []byte(s.TermsJSON)
	}
	return row
}

// #endregion convert

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers

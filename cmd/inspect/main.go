package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/vxh357/ColabDesign/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the run database")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	term := flag.String("term", "", "add a column for one loss term")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/design_runs.db [--last N] [--run id] [--term name] [--json]")
		os.Exit(2)
	}

	db, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if *runID != "" {
		if err := runDetailMode(db, *runID, *term, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(db, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string   `json:"run_id"`
	Protocol  string   `json:"protocol"`
	Seed      int64    `json:"seed"`
	Steps     int      `json:"steps"`
	BestLoss  *float64 `json:"best_loss,omitempty"`
	BestStep  *int     `json:"best_step,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func runListMode(db *store.Store, last int, jsonOut bool) error {
	runs, err := db.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	// Store returns newest first; reverse for chronological output.
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		lr := listRow{
			RunID:     r.RunID,
			Protocol:  r.Protocol,
			Seed:      r.Seed,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		steps, err := db.Steps(r.RunID)
		if err != nil {
			return err
		}
		lr.Steps = len(steps)
		if best, err := db.BestCheckpoint(r.RunID); err == nil {
			lr.BestLoss = &best.Loss
			lr.BestStep = &best.Step
		}
		rows[len(runs)-1-i] = lr
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-13s  %12s  %6s  %10s  %s\n",
		"Run", "Protocol", "Seed", "Steps", "Best", "Time")
	fmt.Printf("%-12s+-%-13s+-%12s+-%6s+-%10s+-%s\n",
		"------------", "-------------", "------------", "------", "----------", "--------------------")
	for _, r := range rows {
		best := "—"
		if r.BestLoss != nil {
			best = fmt.Sprintf("%.4f", *r.BestLoss)
		}
		fmt.Printf("%-12s  %-13s  %12d  %6d  %10s  %s\n",
			shortID(r.RunID), r.Protocol, r.Seed, r.Steps, best, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID     string       `json:"run_id"`
	Protocol  string       `json:"protocol"`
	Seed      int64        `json:"seed"`
	CreatedAt string       `json:"created_at"`
	Steps     []stepDetail `json:"steps"`
	Decisions int          `json:"decisions"`
	Best      *bestDetail  `json:"best,omitempty"`
}

type stepDetail struct {
	Step     int                `json:"step"`
	Loss     float64            `json:"loss"`
	Soft     float64            `json:"soft"`
	Hard     float64            `json:"hard"`
	Temp     float64            `json:"temp"`
	Sequence string             `json:"sequence,omitempty"`
	Terms    map[string]float64 `json:"terms,omitempty"`
}

type bestDetail struct {
	Step   int     `json:"step"`
	Loss   float64 `json:"loss"`
	Seqs   int     `json:"seqs"`
	Length int     `json:"length"`
}

func runDetailMode(db *store.Store, runID, term string, jsonOut bool) error {
	run, err := db.GetRun(runID)
	if err != nil {
		return err
	}
	steps, err := db.Steps(runID)
	if err != nil {
		return err
	}
	decisions, err := db.Decisions(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:     run.RunID,
		Protocol:  run.Protocol,
		Seed:      run.Seed,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Steps:     make([]stepDetail, len(steps)),
		Decisions: len(decisions),
	}
	for i, s := range steps {
		sd := stepDetail{
			Step:     s.Step,
			Loss:     s.Loss,
			Soft:     s.Soft,
			Hard:     s.Hard,
			Temp:     s.Temp,
			Sequence: s.Sequence,
		}
		if s.TermsJSON != "" {
			var terms map[string]float64
			if err := json.Unmarshal([]byte(s.TermsJSON), &terms); err == nil {
				sd.Terms = terms
			}
		}
		out.Steps[i] = sd
	}
	if best, err := db.BestCheckpoint(runID); err == nil {
		out.Best = &bestDetail{Step: best.Step, Loss: best.Loss, Seqs: best.Seqs, Length: best.Length}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:      %s\n", out.RunID)
	fmt.Printf("Protocol: %s\n", out.Protocol)
	fmt.Printf("Seed:     %d\n", out.Seed)
	fmt.Printf("Created:  %s\n", out.CreatedAt)
	if out.Best != nil {
		fmt.Printf("Best:     %.4f at step %d\n", out.Best.Loss, out.Best.Step)
	}
	if out.Decisions > 0 {
		fmt.Printf("Semigreedy decisions: %d\n", out.Decisions)
	}

	if term != "" {
		fmt.Printf("\n%6s  %10s  %6s  %6s  %6s  %10s  %s\n",
			"Step", "Loss", "Soft", "Hard", "Temp", term, "Sequence")
	} else {
		fmt.Printf("\n%6s  %10s  %6s  %6s  %6s  %s\n",
			"Step", "Loss", "Soft", "Hard", "Temp", "Sequence")
	}
	for _, s := range out.Steps {
		if term != "" {
			val := "—"
			if v, ok := s.Terms[term]; ok {
				val = fmt.Sprintf("%.4f", v)
			}
			fmt.Printf("%6d  %10.4f  %6.2f  %6.2f  %6.2f  %10s  %s\n",
				s.Step, s.Loss, s.Soft, s.Hard, s.Temp, val, s.Sequence)
		} else {
			fmt.Printf("%6d  %10.4f  %6.2f  %6.2f  %6.2f  %s\n",
				s.Step, s.Loss, s.Soft, s.Hard, s.Temp, s.Sequence)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output

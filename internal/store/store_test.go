package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// memDB opens an in-memory SQLite with full schema so tests can drop
// tables to exercise error paths.
func memDB(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewStoreWithDB(db)
	if err != nil {
		t.Fatalf("NewStoreWithDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return s, db
}

func TestCreateRunAndGet(t *testing.T) {
	s := tempDB(t)

	rec, err := s.CreateRun("fixbb", 42, `{"length":10}`)
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if rec.RunID == "" {
		t.Fatal("expected non-empty run ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	got, err := s.GetRun(rec.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Protocol != "fixbb" || got.Seed != 42 || got.ConfigJSON != `{"length":10}` {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("nonexistent-id"); err == nil {
		t.Fatal("expected error for nonexistent run")
	}
}

func TestListRunsHonorsLimit(t *testing.T) {
	s := tempDB(t)
	for i := 0; i < 3; i++ {
		if _, err := s.CreateRun("hallucination", int64(i), "{}"); err != nil {
			t.Fatalf("CreateRun %d: %v", i, err)
		}
	}

	runs, err := s.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	runs, err = s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs under limit, got %d", len(runs))
	}

	runs, err = s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns unlimited: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected all 3 runs without a limit, got %d", len(runs))
	}
}

func TestAppendStepsRoundTrip(t *testing.T) {
	s := tempDB(t)
	run, err := s.CreateRun("hallucination", 7, "{}")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	// Insert out of order; reads come back ordered by step.
	steps := []StepRecord{
		{RunID: run.RunID, Step: 2, Loss: 0.5, Soft: 1, Hard: 1, Temp: 0.01, Sequence: "ARNDC"},
		{RunID: run.RunID, Step: 0, Loss: 1.5, Soft: 0, Hard: 0, Temp: 1, TermsJSON: `{"con":1.5}`, Sequence: "ARNDC"},
		{RunID: run.RunID, Step: 1, Loss: 1.0, Soft: 0.5, Hard: 0, Temp: 1, Sequence: "ARNDW"},
	}
	if err := s.AppendSteps(steps); err != nil {
		t.Fatalf("AppendSteps: %v", err)
	}

	got, err := s.Steps(run.RunID)
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got))
	}
	for i, st := range got {
		if st.Step != i {
			t.Fatalf("step order: index %d holds step %d", i, st.Step)
		}
	}
	if got[0].TermsJSON != `{"con":1.5}` {
		t.Fatalf("terms JSON mismatch: %q", got[0].TermsJSON)
	}
	if got[2].TermsJSON != "" {
		t.Fatalf("expected empty terms JSON, got %q", got[2].TermsJSON)
	}
	if got[1].Sequence != "ARNDW" || got[1].Loss != 1.0 {
		t.Fatalf("step 1 mismatch: %+v", got[1])
	}
}

func TestAppendStepsRejectsDuplicate(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("fixbb", 1, "{}")

	first := []StepRecord{{RunID: run.RunID, Step: 0, Loss: 1, Temp: 1, Sequence: "AA"}}
	if err := s.AppendSteps(first); err != nil {
		t.Fatalf("AppendSteps: %v", err)
	}
	if err := s.AppendSteps(first); err == nil {
		t.Fatal("expected unique constraint error for duplicate step")
	}
}

func TestAppendStepsEmptyIsNoop(t *testing.T) {
	s := tempDB(t)
	if err := s.AppendSteps(nil); err != nil {
		t.Fatalf("AppendSteps(nil): %v", err)
	}
}

func TestSaveCheckpointRoundTrip(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("hallucination", 3, "{}")

	logits := make([]float32, 1*4*20)
	for i := range logits {
		logits[i] = float32(i) * 0.25
	}
	rec, err := s.SaveCheckpoint(CheckpointRecord{
		RunID: run.RunID, Step: 5, Loss: 0.75,
		Seqs: 1, Length: 4, Alphabet: 20,
		Logits: logits, Best: true,
	})
	if err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if rec.CheckpointID == "" {
		t.Fatal("expected generated checkpoint ID")
	}

	got, err := s.BestCheckpoint(run.RunID)
	if err != nil {
		t.Fatalf("BestCheckpoint: %v", err)
	}
	if got.Step != 5 || got.Loss != 0.75 || !got.Best {
		t.Fatalf("checkpoint mismatch: %+v", got)
	}
	if got.Seqs != 1 || got.Length != 4 || got.Alphabet != 20 {
		t.Fatalf("shape mismatch: %dx%dx%d", got.Seqs, got.Length, got.Alphabet)
	}
	for i := range logits {
		if got.Logits[i] != logits[i] {
			t.Fatalf("logits mismatch at %d: %f != %f", i, got.Logits[i], logits[i])
		}
	}
}

func TestSaveCheckpointReplacesBest(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("hallucination", 3, "{}")

	logits := make([]float32, 2*20)
	_, err := s.SaveCheckpoint(CheckpointRecord{
		RunID: run.RunID, Step: 1, Loss: 2.0,
		Seqs: 1, Length: 2, Alphabet: 20, Logits: logits, Best: true,
	})
	if err != nil {
		t.Fatalf("first SaveCheckpoint: %v", err)
	}
	second, err := s.SaveCheckpoint(CheckpointRecord{
		RunID: run.RunID, Step: 8, Loss: 1.0,
		Seqs: 1, Length: 2, Alphabet: 20, Logits: logits, Best: true,
	})
	if err != nil {
		t.Fatalf("second SaveCheckpoint: %v", err)
	}

	got, err := s.BestCheckpoint(run.RunID)
	if err != nil {
		t.Fatalf("BestCheckpoint: %v", err)
	}
	if got.CheckpointID != second.CheckpointID {
		t.Fatalf("expected %s as best, got %s", second.CheckpointID, got.CheckpointID)
	}

	var count int
	err = s.DB().QueryRow(
		`SELECT COUNT(*) FROM checkpoints WHERE run_id = ? AND best = 1`, run.RunID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count best: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one best row, got %d", count)
	}
}

func TestSaveCheckpointShapeMismatch(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("fixbb", 1, "{}")

	_, err := s.SaveCheckpoint(CheckpointRecord{
		RunID: run.RunID, Seqs: 1, Length: 4, Alphabet: 20,
		Logits: make([]float32, 10),
	})
	if err == nil {
		t.Fatal("expected shape error")
	}
}

func TestBestCheckpointMissing(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("fixbb", 1, "{}")
	if _, err := s.BestCheckpoint(run.RunID); err == nil {
		t.Fatal("expected error when no best checkpoint exists")
	}
}

func TestAppendDecisionsRoundTrip(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("hallucination", 3, "{}")

	decs := []DecisionRecord{
		{RunID: run.RunID, Step: 0, Tries: 4, Position: 2, Identity: "W", LossesJSON: `[1.2,0.9,1.4,1.1]`, Loss: 0.9},
		{RunID: run.RunID, Step: 1, Tries: 4, Position: 7, Identity: "G", LossesJSON: `[0.8,0.85,1.0,0.95]`, Loss: 0.8},
	}
	if err := s.AppendDecisions(decs); err != nil {
		t.Fatalf("AppendDecisions: %v", err)
	}

	got, err := s.Decisions(run.RunID)
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(got))
	}
	if got[0].Position != 2 || got[0].Identity != "W" || got[0].Loss != 0.9 {
		t.Fatalf("decision 0 mismatch: %+v", got[0])
	}
	if got[1].LossesJSON != `[0.8,0.85,1.0,0.95]` {
		t.Fatalf("losses JSON mismatch: %q", got[1].LossesJSON)
	}
}

func TestDecisionsEmptyRun(t *testing.T) {
	s := tempDB(t)
	run, _ := s.CreateRun("fixbb", 1, "{}")

	got, err := s.Decisions(run.RunID)
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no decisions, got %d", len(got))
	}
	if err := s.AppendDecisions(nil); err != nil {
		t.Fatalf("AppendDecisions(nil): %v", err)
	}
}

func TestLogitsBlobRoundTrip(t *testing.T) {
	original := []float32{0, 1.5, -2.25, 3.0e-8, 1e8, -0.001}
	decoded := decodeLogits(encodeLogits(original))
	if len(decoded) != len(original) {
		t.Fatalf("length mismatch: %d != %d", len(decoded), len(original))
	}
	for i := range original {
		if original[i] != decoded[i] {
			t.Fatalf("mismatch at %d: %f != %f", i, original[i], decoded[i])
		}
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "deep", "test.db"))
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestCreateRunOnClosedDB(t *testing.T) {
	s := tempDB(t)
	s.Close()
	if _, err := s.CreateRun("fixbb", 1, "{}"); err == nil {
		t.Fatal("expected error on closed DB")
	}
}

func TestStepsOnClosedDB(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	run, _ := s.CreateRun("fixbb", 1, "{}")
	s.Close()

	if err := s.AppendSteps([]StepRecord{{RunID: run.RunID, Sequence: "A"}}); err == nil {
		t.Fatal("expected error on closed DB")
	}
	if _, err := s.Steps(run.RunID); err == nil {
		t.Fatal("expected error on closed DB")
	}
}

func TestAppendStepsTableMissing(t *testing.T) {
	s, db := memDB(t)
	run, err := s.CreateRun("fixbb", 1, "{}")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	db.Exec("DROP TABLE steps")

	err = s.AppendSteps([]StepRecord{{RunID: run.RunID, Step: 0, Sequence: "A"}})
	if err == nil {
		t.Fatal("expected error when steps table is missing")
	}
}

func TestSaveCheckpointTableMissing(t *testing.T) {
	s, db := memDB(t)
	run, err := s.CreateRun("fixbb", 1, "{}")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	db.Exec("DROP TABLE checkpoints")

	_, err = s.SaveCheckpoint(CheckpointRecord{
		RunID: run.RunID, Seqs: 1, Length: 1, Alphabet: 1,
		Logits: []float32{0}, Best: true,
	})
	if err == nil {
		t.Fatal("expected error when checkpoints table is missing")
	}
}

func TestAppendDecisionsTableMissing(t *testing.T) {
	s, db := memDB(t)
	run, err := s.CreateRun("fixbb", 1, "{}")
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	db.Exec("DROP TABLE decisions")

	err = s.AppendDecisions([]DecisionRecord{{RunID: run.RunID, Identity: "A", LossesJSON: "[]"}})
	if err == nil {
		t.Fatal("expected error when decisions table is missing")
	}
}

func TestTimestampsRoundTripNanos(t *testing.T) {
	s := tempDB(t)
	at := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
	run, _ := s.CreateRun("fixbb", 1, "{}")

	err := s.AppendSteps([]StepRecord{{
		RunID: run.RunID, Step: 0, Loss: 1, Temp: 1,
		Sequence: "A", CreatedAt: at,
	}})
	if err != nil {
		t.Fatalf("AppendSteps: %v", err)
	}
	got, err := s.Steps(run.RunID)
	if err != nil {
		t.Fatalf("Steps: %v", err)
	}
	if !got[0].CreatedAt.Equal(at) {
		t.Fatalf("timestamp drift: got=%v want=%v", got[0].CreatedAt, at)
	}
}

package store

import "time"

// #region run-record
// RunRecord is one design run: identity, protocol, seed, and the full
// configuration as JSON.
type RunRecord struct {
	RunID      string
	Protocol   string
	Seed       int64
	ConfigJSON string
	CreatedAt  time.Time
}

// #endregion run-record

// #region step-record
// StepRecord is one completed optimization step within a run.
type StepRecord struct {
	RunID     string
	Step      int
	Loss      float64
	Soft      float64
	Hard      float64
	Temp      float64
	TermsJSON string
	Sequence  string
	CreatedAt time.Time
}

// #endregion step-record

// #region checkpoint-record
// CheckpointRecord stores a sequence distribution snapshot. Best marks
// the run's best-observed checkpoint; at most one row per run carries it.
type CheckpointRecord struct {
	CheckpointID string
	RunID        string
	Step         int
	Loss         float64
	Seqs         int
	Length       int
	Alphabet     int
	Logits       []float32
	Best         bool
	CreatedAt    time.Time
}

// #endregion checkpoint-record

// #region decision-record
// DecisionRecord is one accepted semigreedy mutation together with the
// candidate losses it was chosen from.
type DecisionRecord struct {
	RunID      string
	Step       int
	Tries      int
	Position   int
	Identity   string
	LossesJSON string
	Loss       float64
	CreatedAt  time.Time
}

// #endregion decision-record

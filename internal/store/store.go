package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	protocol    TEXT NOT NULL,
	seed        INTEGER NOT NULL,
	config_json TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	step       INTEGER NOT NULL,
	loss       REAL NOT NULL,
	soft       REAL NOT NULL,
	hard       REAL NOT NULL,
	temp       REAL NOT NULL,
	terms_json TEXT,
	sequence   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (run_id, step),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS checkpoints (
	checkpoint_id TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	step          INTEGER NOT NULL,
	loss          REAL NOT NULL,
	seqs          INTEGER NOT NULL,
	length        INTEGER NOT NULL,
	alphabet      INTEGER NOT NULL,
	logits        BLOB NOT NULL,
	best          INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	step        INTEGER NOT NULL,
	tries       INTEGER NOT NULL,
	position    INTEGER NOT NULL,
	identity    TEXT NOT NULL,
	losses_json TEXT NOT NULL,
	loss        REAL NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store persists design runs in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB runs migrations against an already-open database.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region runs

// CreateRun inserts a new run row with a fresh UUID.
func (s *Store) CreateRun(protocol string, seed int64, configJSON string) (RunRecord, error) {
	rec := RunRecord{
		RunID:      uuid.New().String(),
		Protocol:   protocol,
		Seed:       seed,
		ConfigJSON: configJSON,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, protocol, seed, config_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Protocol, rec.Seed, rec.ConfigJSON,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	var rec RunRecord
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, protocol, seed, config_json, created_at
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&rec.RunID, &rec.Protocol, &rec.Seed, &rec.ConfigJSON, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// ListRuns returns the most recent runs. A non-positive limit returns all
// of them.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT run_id, protocol, seed, config_json, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var createdStr string
		if err := rows.Scan(&rec.RunID, &rec.Protocol, &rec.Seed, &rec.ConfigJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion runs

// #region steps

// AppendSteps inserts step rows in one transaction.
func (s *Store) AppendSteps(steps []StepRecord) error {
	if len(steps) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, st := range steps {
		if st.CreatedAt.IsZero() {
			st.CreatedAt = time.Now().UTC()
		}
		_, err = tx.Exec(
			`INSERT INTO steps (run_id, step, loss, soft, hard, temp, terms_json, sequence, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			st.RunID, st.Step, st.Loss, st.Soft, st.Hard, st.Temp,
			nullIfEmpty(st.TermsJSON), st.Sequence,
			st.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", st.Step, err)
		}
	}
	return tx.Commit()
}

// Steps returns a run's steps in order.
func (s *Store) Steps(runID string) ([]StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, step, loss, soft, hard, temp, terms_json, sequence, created_at
		 FROM steps WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var records []StepRecord
	for rows.Next() {
		var rec StepRecord
		var termsJSON sql.NullString
		var createdStr string
		err := rows.Scan(&rec.RunID, &rec.Step, &rec.Loss, &rec.Soft, &rec.Hard,
			&rec.Temp, &termsJSON, &rec.Sequence, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if termsJSON.Valid {
			rec.TermsJSON = termsJSON.String
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion steps

// #region checkpoints

// SaveCheckpoint inserts a checkpoint. When the record is marked best the
// run's previous best flag is cleared in the same transaction.
func (s *Store) SaveCheckpoint(rec CheckpointRecord) (CheckpointRecord, error) {
	if len(rec.Logits) != rec.Seqs*rec.Length*rec.Alphabet {
		return CheckpointRecord{}, fmt.Errorf("checkpoint shape: %d values for %dx%dx%d",
			len(rec.Logits), rec.Seqs, rec.Length, rec.Alphabet)
	}
	if rec.CheckpointID == "" {
		rec.CheckpointID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return CheckpointRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if rec.Best {
		if _, err := tx.Exec(`UPDATE checkpoints SET best = 0 WHERE run_id = ?`, rec.RunID); err != nil {
			return CheckpointRecord{}, fmt.Errorf("clear best: %w", err)
		}
	}

	best := 0
	if rec.Best {
		best = 1
	}
	_, err = tx.Exec(
		`INSERT INTO checkpoints (checkpoint_id, run_id, step, loss, seqs, length, alphabet, logits, best, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.CheckpointID, rec.RunID, rec.Step, rec.Loss,
		rec.Seqs, rec.Length, rec.Alphabet,
		encodeLogits(rec.Logits), best,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return CheckpointRecord{}, fmt.Errorf("insert checkpoint: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return CheckpointRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// BestCheckpoint returns the run's checkpoint marked best.
func (s *Store) BestCheckpoint(runID string) (CheckpointRecord, error) {
	var rec CheckpointRecord
	var blob []byte
	var best int
	var createdStr string
	err := s.db.QueryRow(
		`SELECT checkpoint_id, run_id, step, loss, seqs, length, alphabet, logits, best, created_at
		 FROM checkpoints WHERE run_id = ? AND best = 1`, runID,
	).Scan(&rec.CheckpointID, &rec.RunID, &rec.Step, &rec.Loss,
		&rec.Seqs, &rec.Length, &rec.Alphabet, &blob, &best, &createdStr)
	if err != nil {
		return CheckpointRecord{}, fmt.Errorf("best checkpoint %s: %w", runID, err)
	}
	rec.Logits = decodeLogits(blob)
	rec.Best = best != 0
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion checkpoints

// #region decisions

// AppendDecisions inserts semigreedy decision rows in one transaction.
func (s *Store) AppendDecisions(decs []DecisionRecord) error {
	if len(decs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, d := range decs {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now().UTC()
		}
		_, err = tx.Exec(
			`INSERT INTO decisions (run_id, step, tries, position, identity, losses_json, loss, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.RunID, d.Step, d.Tries, d.Position, d.Identity,
			d.LossesJSON, d.Loss, d.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert decision %d: %w", d.Step, err)
		}
	}
	return tx.Commit()
}

// Decisions returns a run's semigreedy decisions in step order.
func (s *Store) Decisions(runID string) ([]DecisionRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, step, tries, position, identity, losses_json, loss, created_at
		 FROM decisions WHERE run_id = ? ORDER BY step ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var createdStr string
		err := rows.Scan(&rec.RunID, &rec.Step, &rec.Tries, &rec.Position,
			&rec.Identity, &rec.LossesJSON, &rec.Loss, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion decisions

// #region blob-codec

func encodeLogits(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeLogits(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion blob-codec

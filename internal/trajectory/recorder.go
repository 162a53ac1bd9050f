// Package trajectory accumulates the per-step outputs of a design run: an
// append-only snapshot series, a loss-breakdown log, and the best checkpoint
// observed so far. One Record call corresponds to exactly one completed step.
package trajectory

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/vxh357/ColabDesign/internal/oracle"
	"github.com/vxh357/ColabDesign/internal/seq"
)

// #region records

// Snapshot is one step's structural summary. Structure oracles fill Coords,
// PLDDT, and (when predicted) PAE; contact oracles fill Contacts instead.
type Snapshot struct {
	Step     int       `json:"step"`
	Seqs     []string  `json:"seqs"`
	Coords   []float32 `json:"coords,omitempty"`
	PLDDT    []float32 `json:"plddt,omitempty"`
	PAE      []float32 `json:"pae,omitempty"`
	Contacts []float32 `json:"contacts,omitempty"`
}

// Row is one step's scalar loss breakdown.
type Row struct {
	Step     int                `json:"step"`
	Models   int                `json:"models"`
	Recycles int                `json:"recycles"`
	Loss     float64            `json:"loss"`
	Soft     float64            `json:"soft"`
	Hard     float64            `json:"hard"`
	Temp     float64            `json:"temp"`
	SeqID    float64            `json:"seqid,omitempty"`
	HasSeqID bool               `json:"has_seqid,omitempty"`
	Terms    map[string]float64 `json:"terms"`
}

// Best is the lowest-loss result observed since the last reset. Replaced
// only on strict improvement, and only by Record calls that ask for it.
type Best struct {
	Loss float64    `json:"loss"`
	Step int        `json:"step"`
	Aux  oracle.Aux `json:"-"`
	Set  bool       `json:"set"`
}

// Entry carries everything the recorder needs from one completed step.
type Entry struct {
	Step     int
	Models   int
	Recycles int
	Loss     float64
	Terms    map[string]float64
	Soft     float64
	Hard     float64
	Temp     float64
	Weights  map[string]float64
	Aux      oracle.Aux
}

// #endregion records

// #region recorder

// Recorder owns the trajectory of one design session.
type Recorder struct {
	hasStructure bool
	reference    []int
	progress     io.Writer

	snapshots []Snapshot
	rows      []Row
	best      Best
}

// New returns an empty recorder. hasStructure selects which structural
// fields snapshots carry.
func New(hasStructure bool) *Recorder {
	return &Recorder{
		hasStructure: hasStructure,
		best:         Best{Loss: math.Inf(1)},
	}
}

// SetReference enables the derived sequence-identity metric against the
// given reference indices. A nil reference disables it.
func (r *Recorder) SetReference(ref []int) {
	if ref == nil {
		r.reference = nil
		return
	}
	r.reference = append([]int(nil), ref...)
}

// SetProgress directs human-readable progress lines to w. A nil writer
// silences them regardless of the per-call verbose flag.
func (r *Recorder) SetProgress(w io.Writer) {
	r.progress = w
}

// Reset clears snapshots, rows, and the best checkpoint. Restarting a
// session with history preserved skips this call.
func (r *Recorder) Reset() {
	r.snapshots = nil
	r.rows = nil
	r.best = Best{Loss: math.Inf(1)}
}

// Record appends one step's row and snapshot, optionally updates the best
// checkpoint, and optionally emits a progress line.
func (r *Recorder) Record(e Entry, saveBest, verbose bool) {
	if saveBest && e.Loss < r.best.Loss {
		r.best = Best{Loss: e.Loss, Step: e.Step, Aux: e.Aux, Set: true}
	}

	row := Row{
		Step:     e.Step,
		Models:   e.Models,
		Recycles: e.Recycles,
		Loss:     e.Loss,
		Soft:     e.Soft,
		Hard:     e.Hard,
		Temp:     e.Temp,
		Terms:    make(map[string]float64, len(e.Terms)),
	}
	for k, v := range e.Terms {
		row.Terms[k] = v
	}
	if r.reference != nil && e.Aux.SeqHard.Seqs > 0 {
		row.SeqID = r.identity(e.Aux.SeqHard)
		row.HasSeqID = true
	}
	r.rows = append(r.rows, row)

	if verbose && r.progress != nil {
		fmt.Fprintf(r.progress, "%d\t%s\n", e.Step, formatRow(row, e.Weights))
	}

	r.snapshots = append(r.snapshots, r.snapshot(e))
}

// identity averages per-sequence identity to the reference over the batch.
func (r *Recorder) identity(hard seq.Logits) float64 {
	rows := hard.Argmax()
	var total float64
	for _, idx := range rows {
		total += seq.Identity(idx, r.reference)
	}
	return total / float64(len(rows))
}

func (r *Recorder) snapshot(e Entry) Snapshot {
	snap := Snapshot{Step: e.Step}
	for _, idx := range e.Aux.SeqHard.Argmax() {
		snap.Seqs = append(snap.Seqs, seq.Decode(idx))
	}
	if r.hasStructure {
		snap.Coords = append([]float32(nil), e.Aux.Coords...)
		snap.PLDDT = append([]float32(nil), e.Aux.PLDDT...)
		if len(e.Aux.PAE) > 0 {
			snap.PAE = append([]float32(nil), e.Aux.PAE...)
		}
	} else {
		snap.Contacts = append([]float32(nil), e.Aux.Contacts...)
	}
	return snap
}

// Snapshots returns the append-only snapshot series.
func (r *Recorder) Snapshots() []Snapshot {
	return r.snapshots
}

// Rows returns the loss-breakdown log.
func (r *Recorder) Rows() []Row {
	return r.rows
}

// Best returns the current best checkpoint; Set is false until a Record
// call with saveBest observed a finite loss.
func (r *Recorder) Best() Best {
	return r.best
}

// Len reports completed steps since the last reset.
func (r *Recorder) Len() int {
	return len(r.rows)
}

// #endregion recorder

// #region progress

// printOrder fixes the column order of the known loss terms; unknown terms
// follow alphabetically so lines stay deterministic across runs.
var printOrder = []string{
	"msa_ent", "plddt", "pae", "helix", "con",
	"i_pae", "i_con",
	"sc_fape", "sc_rmsd",
	"dgram_cce", "fape", "6D", "rmsd",
}

// formatRow renders one progress line body: integer counters first, then
// the annealing state and total, then the weighted terms to two decimals.
// Terms whose weight is exactly zero are suppressed, except rmsd-family
// metrics which always print.
func formatRow(row Row, weights map[string]float64) string {
	tokens := []string{
		"models", strconv.Itoa(row.Models),
		"recycles", strconv.Itoa(row.Recycles),
		"soft", formatF(row.Soft),
		"temp", formatF(row.Temp),
	}
	if row.HasSeqID {
		tokens = append(tokens, "seqid", formatF(row.SeqID))
	}
	tokens = append(tokens, "loss", formatF(row.Loss))

	seen := make(map[string]bool, len(printOrder))
	for _, k := range printOrder {
		seen[k] = true
		if v, ok := row.Terms[k]; ok && printable(k, weights) {
			tokens = append(tokens, k, formatF(v))
		}
	}
	extra := make([]string, 0, len(row.Terms))
	for k := range row.Terms {
		if !seen[k] && printable(k, weights) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		tokens = append(tokens, k, formatF(row.Terms[k]))
	}
	return strings.Join(tokens, " ")
}

func printable(name string, weights map[string]float64) bool {
	if strings.Contains(name, "rmsd") {
		return true
	}
	w, ok := weights[name]
	return !ok || w != 0
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// #endregion progress

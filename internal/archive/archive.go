// Package archive writes recorded trajectories to Parquet for long-term
// storage and offline analysis.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// StepRow is one completed design step. Rows are self-contained so a
// single archive file can hold steps from many runs.
type StepRow struct {
	RunID    string  `parquet:"run_id,dict"`
	Step     int32   `parquet:"step"`
	Protocol string  `parquet:"protocol,dict"`
	Loss     float64 `parquet:"loss"`

	Soft float32 `parquet:"soft"`
	Hard float32 `parquet:"hard"`
	Temp float32 `parquet:"temp"`

	// TermsJSON holds the per-term loss breakdown, JSON-encoded.
	TermsJSON []byte `parquet:"terms_json,optional,zstd"`

	Sequence  string  `parquet:"sequence"`
	PLDDTMean float32 `parquet:"plddt_mean"`
}

// WriteSteps writes rows to outPath via a temp file and atomic rename, so
// readers never observe a partially-written archive.
func WriteSteps(outPath string, rows []StepRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to archive")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "design_step_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadSteps loads every row from a step archive.
func ReadSteps(path string) ([]StepRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[StepRow](f)
	defer reader.Close()

	out := make([]StepRow, 0, int(reader.NumRows()))
	buf := make([]StepRow, 256)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
	return out, nil
}

// MeanConfidence averages a per-position confidence vector; zero when the
// oracle produced none.
func MeanConfidence(plddt []float32) float32 {
	if len(plddt) == 0 {
		return 0
	}
	var total float64
	for _, v := range plddt {
		total += float64(v)
	}
	return float32(total / float64(len(plddt)))
}

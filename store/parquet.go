// Package store archives solved puzzles as parquet files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/replay"
	"github.com/brensch/vacuum/search"
)

const schemaName = "solution_step_v1"

var batchSeq atomic.Uint64

// batchName is unique within the process even when two batches start in the
// same clock tick.
func batchName() string {
	return fmt.Sprintf("solutions_%d_%d.parquet", time.Now().UnixNano(), batchSeq.Add(1))
}

// StepRow is one (run, puzzle, step) snapshot.
//
// Step 0 is the start state. Unsolvable puzzles produce a single step 0 row
// with Solved=false. Move is empty on step 0. Grid holds the rows joined by
// '\n'.
type StepRow struct {
	RunID     string `parquet:"run_id,dict"`
	Puzzle    string `parquet:"puzzle,dict"`
	Heuristic string `parquet:"heuristic,dict"`

	Step           int32  `parquet:"step"`
	Move           string `parquet:"move,dict"`
	StepCost       int32  `parquet:"step_cost"`
	TotalCost      int32  `parquet:"total_cost"`
	Weight         int32  `parquet:"weight"`
	HeuristicValue int32  `parquet:"heuristic_value"`

	Width  int32  `parquet:"width"`
	Height int32  `parquet:"height"`
	Grid   string `parquet:"grid,zstd"`

	Solved     bool  `parquet:"solved"`
	Generated  int64 `parquet:"generated"`
	Expanded   int64 `parquet:"expanded"`
	DurationNs int64 `parquet:"duration_ns"`
}

// RowsFor converts one search outcome and its replay into rows.
func RowsFor(runID, name string, heuristic game.Heuristic, res search.Result, frames []replay.Frame) []StepRow {
	if !res.Solved && len(frames) > 1 {
		frames = frames[:1]
	}
	rows := make([]StepRow, 0, len(frames))
	for _, f := range frames {
		row := StepRow{
			RunID:          runID,
			Puzzle:         name,
			Heuristic:      heuristic.String(),
			Step:           int32(f.Step),
			StepCost:       int32(f.StepCost),
			TotalCost:      int32(f.TotalCost),
			Weight:         int32(f.Weight),
			HeuristicValue: int32(f.Heuristic),
			Height:         int32(len(f.Rows)),
			Grid:           strings.Join(f.Rows, "\n"),
			Solved:         res.Solved,
			Generated:      int64(res.Generated),
			Expanded:       int64(res.Expanded),
			DurationNs:     res.Duration.Nanoseconds(),
		}
		if len(f.Rows) > 0 {
			row.Width = int32(len(f.Rows[0]))
		}
		if f.HasMove {
			row.Move = f.Move.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteBatchAtomic writes rows to a new batch file in outDir. The file is
// written under outDir/tmp and renamed into place once complete.
func WriteBatchAtomic(outDir string, rows []StepRow) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaName),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}

// ReadFile loads every row of a batch file.
func ReadFile(path string) ([]StepRow, error) {
	rows, err := parquet.ReadFile[StepRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}

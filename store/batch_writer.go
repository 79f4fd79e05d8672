package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// BatchWriter streams rows into one parquet file under outDir/tmp and moves
// it into outDir on Finalize.
type BatchWriter struct {
	tmpPath string
	outPath string

	file   *os.File
	writer *parquet.GenericWriter[StepRow]

	puzzles int
	rows    int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, fmt.Errorf("outDir is required")
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	tmpDir := filepath.Join(absOut, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}

	name := batchName()
	tmpPath := filepath.Join(tmpDir, name)
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[StepRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", schemaName)

	return &BatchWriter{
		tmpPath: tmpPath,
		outPath: filepath.Join(absOut, name),
		file:    f,
		writer:  w,
	}, nil
}

func (b *BatchWriter) OutPath() string { return b.outPath }
func (b *BatchWriter) Puzzles() int    { return b.puzzles }
func (b *BatchWriter) Rows() int       { return b.rows }

// WritePuzzle appends the rows of one solved puzzle.
func (b *BatchWriter) WritePuzzle(rows []StepRow) error {
	if b.writer == nil {
		return fmt.Errorf("batch writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := b.writer.Write(rows); err != nil {
		return err
	}
	b.rows += len(rows)
	b.puzzles++
	return nil
}

// Finalize closes the file and renames it into place. An empty batch is
// removed and reported with an empty path.
func (b *BatchWriter) Finalize() (string, error) {
	if b.writer == nil {
		return "", nil
	}
	closeErr := b.writer.Close()
	b.writer = nil
	_ = b.file.Sync()
	fileErr := b.file.Close()
	b.file = nil

	if closeErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		_ = os.Remove(b.tmpPath)
		return "", fmt.Errorf("close parquet file: %w", fileErr)
	}
	if b.rows == 0 {
		_ = os.Remove(b.tmpPath)
		return "", nil
	}
	if err := os.Rename(b.tmpPath, b.outPath); err != nil {
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return b.outPath, nil
}

// Archive is a concurrency-safe sink that rolls to a new batch file every
// flushEvery puzzles.
type Archive struct {
	outDir     string
	flushEvery int

	mu      sync.Mutex
	current *BatchWriter
	written []string
}

// NewArchive returns an archive writing into outDir. flushEvery < 1 means a
// single batch per archive lifetime.
func NewArchive(outDir string, flushEvery int) *Archive {
	return &Archive{outDir: outDir, flushEvery: flushEvery}
}

// Add writes one puzzle's rows, rolling the batch file when it is full.
func (a *Archive) Add(rows []StepRow) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		w, err := NewBatchWriter(a.outDir)
		if err != nil {
			return err
		}
		a.current = w
	}
	if err := a.current.WritePuzzle(rows); err != nil {
		return err
	}
	if a.flushEvery > 0 && a.current.Puzzles() >= a.flushEvery {
		return a.flushLocked()
	}
	return nil
}

// Close finalizes the open batch. Files written so far are returned.
func (a *Archive) Close() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.flushLocked()
	return append([]string(nil), a.written...), err
}

func (a *Archive) flushLocked() error {
	if a.current == nil {
		return nil
	}
	path, err := a.current.Finalize()
	a.current = nil
	if err != nil {
		return err
	}
	if path != "" {
		a.written = append(a.written, path)
	}
	return nil
}

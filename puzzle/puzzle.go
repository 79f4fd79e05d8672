// Package puzzle reads vacuum puzzles from plain text grids and from HTML
// pages that embed them.
package puzzle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brensch/vacuum/game"
)

// Puzzle is a named grid.
type Puzzle struct {
	Name string
	Rows []string
}

// State builds the start state of the puzzle.
func (p Puzzle) State(opts ...game.StateOption) (*game.State, error) {
	s, err := game.NewState(p.Rows, 1, opts...)
	if err != nil {
		return nil, fmt.Errorf("puzzle %s: %w", p.Name, err)
	}
	return s, nil
}

// ReadGrid reads one grid row per line. Surrounding whitespace (including
// '\r') is trimmed and blank lines are skipped.
func ReadGrid(r io.Reader) ([]string, error) {
	var rows []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty grid", game.ErrInvalidState)
	}
	width := len(rows[0])
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", game.ErrInvalidState, y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			if !game.Cell(row[x]).Valid() {
				return nil, fmt.Errorf("%w: unknown symbol %q at (%d,%d)", game.ErrInvalidState, row[x], x, y)
			}
		}
	}
	return rows, nil
}

// LoadFile reads a grid file. The puzzle is named after the file.
func LoadFile(path string) (Puzzle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Puzzle{}, fmt.Errorf("open puzzle: %w", err)
	}
	defer f.Close()

	rows, err := ReadGrid(f)
	if err != nil {
		return Puzzle{}, fmt.Errorf("%s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Puzzle{Name: name, Rows: rows}, nil
}

// Load reads a grid file and returns its start state.
func Load(path string, opts ...game.StateOption) (*game.State, error) {
	p, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return p.State(opts...)
}

package puzzle

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/brensch/vacuum/game"
)

// GenerateConfig describes a random puzzle.
type GenerateConfig struct {
	Width  int
	Height int
	Dirt   int
	Walls  int
	// Seed selects the layout. Zero derives a fixed seed from the other
	// fields so the same config always yields the same grid.
	Seed int64
}

func (c GenerateConfig) seed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []int{c.Width, c.Height, c.Dirt, c.Walls} {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	s := int64(h.Sum64() >> 1)
	if s == 0 {
		s = 1
	}
	return s
}

// Generate places the agent, dirt and walls on distinct random cells.
// Walls may cut dirt off from the agent; such puzzles are valid but
// unsolvable.
func Generate(cfg GenerateConfig) (Puzzle, error) {
	if cfg.Width < 1 || cfg.Height < 1 {
		return Puzzle{}, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", game.ErrInvalidState, cfg.Width, cfg.Height)
	}
	if cfg.Dirt < 0 || cfg.Walls < 0 {
		return Puzzle{}, fmt.Errorf("%w: dirt and walls must not be negative", game.ErrInvalidState)
	}
	cells := cfg.Width * cfg.Height
	if 1+cfg.Dirt+cfg.Walls > cells {
		return Puzzle{}, fmt.Errorf("%w: %d dirt and %d walls do not fit in %d cells", game.ErrInvalidState, cfg.Dirt, cfg.Walls, cells)
	}

	seed := cfg.seed()
	rng := rand.New(rand.NewSource(seed))

	grid := make([]byte, cells)
	available := make([]int, cells)
	for i := range grid {
		grid[i] = byte(game.Empty)
		available[i] = i
	}
	place := func(c game.Cell) {
		i := rng.Intn(len(available))
		grid[available[i]] = byte(c)
		available[i] = available[len(available)-1]
		available = available[:len(available)-1]
	}

	place(game.Agent)
	for range cfg.Dirt {
		place(game.Dirt)
	}
	for range cfg.Walls {
		place(game.Wall)
	}

	rows := make([]string, cfg.Height)
	for y := range rows {
		rows[y] = string(grid[y*cfg.Width : (y+1)*cfg.Width])
	}
	return Puzzle{
		Name: fmt.Sprintf("random-%dx%d-%d", cfg.Width, cfg.Height, seed),
		Rows: rows,
	}, nil
}

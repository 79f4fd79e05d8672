package puzzle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/vacuum/game"
)

func TestGenerate(t *testing.T) {
	cfg := GenerateConfig{Width: 6, Height: 4, Dirt: 5, Walls: 3, Seed: 42}
	p, err := Generate(cfg)
	require.NoError(t, err)

	require.Len(t, p.Rows, 4)
	joined := strings.Join(p.Rows, "")
	assert.Len(t, joined, 24)
	assert.Equal(t, 1, strings.Count(joined, "@"))
	assert.Equal(t, 5, strings.Count(joined, "*"))
	assert.Equal(t, 3, strings.Count(joined, "#"))
	assert.Equal(t, "random-6x4-42", p.Name)

	s, err := p.State()
	require.NoError(t, err)
	assert.Equal(t, 5, s.DirtCount())

	again, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, p, again, "same seed, same grid")
}

func TestGenerate_DerivedSeed(t *testing.T) {
	cfg := GenerateConfig{Width: 5, Height: 5, Dirt: 4}
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, "random-5x5-0", a.Name)
}

func TestGenerate_Full(t *testing.T) {
	p, err := Generate(GenerateConfig{Width: 2, Height: 2, Dirt: 2, Walls: 1, Seed: 7})
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(p.Rows, ""), ".")
}

func TestGenerate_Errors(t *testing.T) {
	tests := map[string]GenerateConfig{
		"zero width":     {Width: 0, Height: 3},
		"negative dirt":  {Width: 3, Height: 3, Dirt: -1},
		"negative walls": {Width: 3, Height: 3, Walls: -1},
		"too crowded":    {Width: 2, Height: 2, Dirt: 3, Walls: 1},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Generate(cfg)
			require.ErrorIs(t, err, game.ErrInvalidState)
		})
	}
}

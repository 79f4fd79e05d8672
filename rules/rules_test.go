package rules

import (
	"strings"
	"testing"

	"github.com/brensch/vacuum/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustState(t *testing.T, rows ...string) *game.State {
	t.Helper()
	s, err := game.NewState(rows, 1)
	require.NoError(t, err)
	return s
}

func logApply(t *testing.T, name string, before *game.State, m Move, after *game.State) {
	t.Helper()
	t.Logf("=== %s ===\nBefore:\n%s\nMove: %s\nAfter:\n%s", name, before, m, after)
}

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want []Move
	}{
		{name: "open centre", rows: []string{"...", ".@.", "..."}, want: []Move{Left, Right, Up, Down}},
		{name: "top-left corner", rows: []string{"@.", ".."}, want: []Move{Right, Down}},
		{name: "bottom-right corner", rows: []string{"..", ".@"}, want: []Move{Left, Up}},
		{name: "walled in", rows: []string{".#.", "#@#", ".#."}, want: []Move{}},
		{name: "single row", rows: []string{"@#*"}, want: []Move{}},
		{name: "dirt is walkable", rows: []string{"*@*"}, want: []Move{Left, Right}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustState(t, tt.rows...)
			got := LegalMoves(s)
			assert.Equal(t, tt.want, got)

			for _, m := range got {
				c, err := s.CellAt(s.Agent().Add(m.DX, m.DY))
				require.NoError(t, err)
				assert.NotEqual(t, game.Wall, c)
			}
		})
	}
}

func TestIsLegal_RejectsNonUnitMoves(t *testing.T) {
	s := mustState(t, "...", ".@.", "...")
	assert.False(t, IsLegal(s, Move{DX: 1, DY: 1}))
	assert.False(t, IsLegal(s, Move{}))
	assert.False(t, IsLegal(s, Move{DX: 2}))
}

func TestCost_IsWeight(t *testing.T) {
	s, err := game.NewState([]string{"@*."}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, Cost(s, Right))

	next, err := Apply(s, Right)
	require.NoError(t, err)
	assert.Equal(t, 4, Cost(next, Right))
}

func TestApply_PicksUpDirt(t *testing.T) {
	before := mustState(t, "@*.")
	after, err := Apply(before, Right)
	require.NoError(t, err)
	logApply(t, "Apply pick up", before, Right, after)

	assert.Equal(t, []string{".@."}, after.Rows())
	assert.Equal(t, 2, after.Weight())
	assert.Equal(t, game.Point{X: 1, Y: 0}, after.Agent())
	assert.True(t, after.IsGoal())

	// The source state is untouched.
	assert.Equal(t, []string{"@*."}, before.Rows())
	assert.Equal(t, 1, before.Weight())
}

func TestApply_EmptyKeepsWeight(t *testing.T) {
	before := mustState(t, ".@", "*.")
	after, err := Apply(before, Left)
	require.NoError(t, err)
	logApply(t, "Apply empty", before, Left, after)

	assert.Equal(t, []string{"@.", "*."}, after.Rows())
	assert.Equal(t, 1, after.Weight())

	down, err := Apply(after, Down)
	require.NoError(t, err)
	assert.Equal(t, []string{"..", "@."}, down.Rows())
	assert.Equal(t, 2, down.Weight())
}

func TestApply_Illegal(t *testing.T) {
	s := mustState(t, "@#*")
	for _, m := range []Move{Left, Right, Up, Down, {DX: 3}} {
		_, err := Apply(s, m)
		assert.ErrorIs(t, err, ErrIllegalMove, "move %s", m)
	}
}

func TestSuccessors(t *testing.T) {
	s, err := game.NewState([]string{"*@.", ".#."}, 2)
	require.NoError(t, err)

	succ := Successors(s)
	require.Len(t, succ, 2)

	assert.Equal(t, Left, succ[0].Move)
	assert.Equal(t, 2, succ[0].Cost)
	assert.Equal(t, 3, succ[0].State.Weight())
	assert.Equal(t, []string{"@..", ".#."}, succ[0].State.Rows())

	assert.Equal(t, Right, succ[1].Move)
	assert.Equal(t, 2, succ[1].Cost)
	assert.Equal(t, 2, succ[1].State.Weight())

	for _, sc := range succ {
		applied, err := Apply(s, sc.Move)
		require.NoError(t, err)
		assert.True(t, applied.Equal(sc.State))
	}
}

func TestApplyAll(t *testing.T) {
	s := mustState(t, "*.*", ".@.", "...")
	final, cost, err := ApplyAll(s, []Move{Up, Left, Right, Right})
	require.NoError(t, err)
	assert.True(t, final.IsGoal())
	assert.Equal(t, 1+1+2+2, cost)
	assert.Equal(t, 3, final.Weight())

	_, _, err = ApplyAll(s, []Move{Up, Up})
	require.ErrorIs(t, err, ErrIllegalMove)
	assert.True(t, strings.HasPrefix(err.Error(), "step 2:"))
}

func TestParseMove(t *testing.T) {
	for _, m := range Moves {
		got, err := ParseMove(strings.ToUpper(m.String()))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMove("sideways")
	assert.Error(t, err)
	assert.Equal(t, "move(2,0)", Move{DX: 2}.String())
}

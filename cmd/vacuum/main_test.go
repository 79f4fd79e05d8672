package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brensch/vacuum/store"
)

func writePuzzle(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	corners := writePuzzle(t, dir, "corners", "*.*", ".@.", "...")
	blocked := writePuzzle(t, dir, "blocked", "@#*")
	archive := filepath.Join(dir, "archive")

	out, err := execute(t, "solve", corners, blocked, "--parquet-dir", archive, "--jobs", "2")
	require.NoError(t, err)

	first := strings.Index(out, "== corners ==")
	second := strings.Index(out, "== blocked ==")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "output keeps argument order")
	assert.Contains(t, out, "Solved in 4 steps: up,left,right,right")
	assert.Contains(t, out, "Total path cost: 6")
	assert.Contains(t, out, "This puzzle is not solvable.")

	files, err := filepath.Glob(filepath.Join(archive, "solutions_*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	rows, err := store.ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	assert.Equal(t, "corners", rows[0].Puzzle)
	assert.Equal(t, "blocked", rows[5].Puzzle)
}

func TestSolveCommand_Flags(t *testing.T) {
	dir := t.TempDir()
	corners := writePuzzle(t, dir, "corners", "*.*", ".@.", "...")

	out, err := execute(t, "solve", corners, "--heuristic", "nearest")
	require.NoError(t, err)
	assert.NotContains(t, out, "==")
	assert.Contains(t, out, "Solved in 4 steps: left,up,right,right")

	out, err = execute(t, "solve", corners, "--heuristic", "nearest", "--validate-on-pop")
	require.NoError(t, err)
	assert.Contains(t, out, "Total path cost: 6")

	_, err = execute(t, "solve", corners, "--heuristic", "euclid")
	assert.Error(t, err)

	_, err = execute(t, "solve", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	bad := writePuzzle(t, dir, "bad", "@*", "...")
	_, err = execute(t, "solve", bad)
	assert.Error(t, err)
}

func TestSolveCommand_Config(t *testing.T) {
	dir := t.TempDir()
	corners := writePuzzle(t, dir, "corners", "*.*", ".@.", "...")
	cfgPath := filepath.Join(dir, "vacuum.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("search:\n  heuristic: none\nlog:\n  level: warn\n"), 0o644))

	out, err := execute(t, "--config", cfgPath, "solve", corners)
	require.NoError(t, err)
	assert.Contains(t, out, "Total path cost: 6")

	require.NoError(t, os.WriteFile(cfgPath, []byte("search:\n  max_expansions: 1\n"), 0o644))
	_, err = execute(t, "--config", cfgPath, "solve", corners)
	assert.ErrorContains(t, err, "expansion limit")
}

func TestFetchCommand(t *testing.T) {
	page := `<html><body>
<pre class="puzzle" data-name="single">@*.</pre>
<pre class="puzzle" id="corners">
*.*
.@.
...
</pre>
</body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, page)
	}))
	defer ts.Close()

	saveDir := filepath.Join(t.TempDir(), "saved")
	out, err := execute(t, "fetch", ts.URL, "--save-dir", saveDir)
	require.NoError(t, err)
	assert.Contains(t, out, "== single ==")
	assert.Contains(t, out, "Solved in 1 steps: right")
	assert.Contains(t, out, "== corners ==")

	saved, err := os.ReadFile(filepath.Join(saveDir, "corners.txt"))
	require.NoError(t, err)
	assert.Equal(t, "*.*\n.@.\n...\n", string(saved))

	_, err = execute(t, "fetch", ts.URL, "--selector", "pre.none")
	assert.ErrorContains(t, err, "no puzzles")
}

func TestGenerateCommand(t *testing.T) {
	out, err := execute(t, "generate", "--width", "4", "--height", "3", "--dirt", "2", "--seed", "9")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 2, strings.Count(out, "*"))
	assert.Equal(t, 1, strings.Count(out, "@"))

	path := filepath.Join(t.TempDir(), "gen.txt")
	out, err = execute(t, "generate", "--width", "4", "--height", "3", "--dirt", "2", "--seed", "9", "--out", path, "--solve")
	require.NoError(t, err)
	assert.Contains(t, out, "Solved in")

	_, err = execute(t, "solve", path)
	require.NoError(t, err)

	_, err = execute(t, "generate", "--width", "1", "--height", "1", "--dirt", "1")
	assert.Error(t, err)
}

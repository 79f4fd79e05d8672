// Package tui replays a solution in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/replay"
)

const playInterval = 400 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gridStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	cellStyles = map[game.Cell]lipgloss.Style{
		game.Empty: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		game.Wall:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		game.Dirt:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		game.Agent: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
	}
)

type tickMsg struct {
	gen int
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(playInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// Model steps through replay frames.
type Model struct {
	title   string
	frames  []replay.Frame
	index   int
	playing bool
	gen     int // invalidates ticks from an earlier play toggle
}

// New returns a model positioned on the first frame.
func New(title string, frames []replay.Frame) Model {
	return Model{title: title, frames: frames}
}

// Index is the frame currently shown.
func (m Model) Index() int { return m.index }

// Playing reports whether autoplay is on.
func (m Model) Playing() bool { return m.playing }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := len(m.frames) - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "n":
			m.playing = false
			if m.index < last {
				m.index++
			}
		case "left", "h", "p":
			m.playing = false
			if m.index > 0 {
				m.index--
			}
		case "g", "home":
			m.playing = false
			m.index = 0
		case "G", "end":
			m.playing = false
			m.index = last
		case " ", "space":
			m.gen++
			if m.playing {
				m.playing = false
				return m, nil
			}
			if m.index >= last {
				m.index = 0
			}
			m.playing = true
			return m, tickCmd(m.gen)
		}
	case tickMsg:
		if !m.playing || msg.gen != m.gen {
			return m, nil
		}
		if m.index < last {
			m.index++
		}
		if m.index >= last {
			m.playing = false
			return m, nil
		}
		return m, tickCmd(m.gen)
	}
	return m, nil
}

func renderGrid(rows []string) string {
	var b strings.Builder
	for y, row := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		for i := 0; i < len(row); i++ {
			c := game.Cell(row[i])
			b.WriteString(cellStyles[c].Render(string(rune(c))))
		}
	}
	return b.String()
}

func (m Model) View() string {
	if len(m.frames) == 0 {
		return "No frames to show.\n"
	}
	f := m.frames[m.index]

	move := "start"
	if f.HasMove {
		move = f.Move.String()
	}
	status := fmt.Sprintf("Step %d/%d  %-5s  step cost %d  total %d  weight %d  heuristic %d",
		f.Step, len(m.frames)-1, move, f.StepCost, f.TotalCost, f.Weight, f.Heuristic)
	if m.playing {
		status += "  [playing]"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		gridStyle.Render(renderGrid(f.Rows)),
		statusStyle.Render(status),
		helpStyle.Render("←/→ step • space play • g/G first/last • q quit"),
	) + "\n"
}

// Run shows frames until the user quits.
func Run(title string, frames []replay.Frame) error {
	if len(frames) == 0 {
		return errors.New("no frames to replay")
	}
	_, err := tea.NewProgram(New(title, frames), tea.WithAltScreen()).Run()
	return err
}

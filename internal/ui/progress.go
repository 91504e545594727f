// Package ui renders run progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"clayout/internal/driver"
)

// share of the bar given to loading inputs; the rest tracks roots
const loadShare = 0.6

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	bar      progress.Model
	inputs   []inputRow
	index    map[string]int
	phase    string
	roots    int
	rootsSum int
	width    int
	failed   bool
	done     bool
}

type inputRow struct {
	path   string
	status driver.Status
	note   string
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that follows driver events
// until the channel is closed.
func NewProgressModel(title string, inputs []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 60

	rows := make([]inputRow, len(inputs))
	index := make(map[string]int, len(inputs))
	for i, p := range inputs {
		rows[i] = inputRow{path: p, status: driver.StatusQueued}
		index[p] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		inputs:  rows,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	var b strings.Builder
	header := m.title
	if m.phase != "" {
		header += " · " + m.phase
	}
	switch {
	case m.done && m.failed:
		header = "failed: " + header
	case m.done:
		header = "done: " + header
	default:
		header = m.spinner.View() + " " + header
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")

	const statusWidth = 8
	nameWidth := max(m.width-statusWidth-6, 20)
	for _, row := range m.inputs {
		status := statusStyle(row.status).Render(fmt.Sprintf("%*s", statusWidth, row.status))
		line := fmt.Sprintf("  %s %s", status, truncate(row.path, nameWidth))
		if row.note != "" {
			line += "  " + lipgloss.NewStyle().Faint(true).Render(row.note)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.done && !m.failed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	if ev.Status == driver.StatusError {
		m.failed = true
	}
	if ev.Input != "" {
		i, ok := m.index[ev.Input]
		if !ok {
			return nil
		}
		m.inputs[i].status = ev.Status
		switch {
		case ev.Err != nil:
			m.inputs[i].note = ev.Err.Error()
		case ev.Elapsed > 0:
			m.inputs[i].note = ev.Elapsed.Round(time.Millisecond).String()
		}
	} else {
		m.phase = phaseLabel(ev)
		if ev.Stage == driver.StageLayout && ev.Total > 0 {
			m.roots, m.rootsSum = ev.Done, ev.Total
		}
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	var loaded float64
	for _, row := range m.inputs {
		if settled(row.status) {
			loaded++
		}
	}
	pct := loadShare
	if len(m.inputs) > 0 {
		pct = loadShare * loaded / float64(len(m.inputs))
	}
	if m.rootsSum > 0 {
		pct += (1 - loadShare) * float64(m.roots) / float64(m.rootsSum)
	}
	return min(pct, 1)
}

func settled(s driver.Status) bool {
	return s == driver.StatusDone || s == driver.StatusCached || s == driver.StatusError
}

func phaseLabel(ev driver.Event) string {
	switch {
	case ev.Status == driver.StatusError:
		return string(ev.Stage) + " failed"
	case ev.Stage == driver.StageLayout && ev.Total > 0:
		return fmt.Sprintf("layout %d/%d", ev.Done, ev.Total)
	case ev.Status == driver.StatusDone:
		return string(ev.Stage) + " done"
	default:
		return string(ev.Stage)
	}
}

func statusStyle(s driver.Status) lipgloss.Style {
	switch s {
	case driver.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.StatusCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case driver.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case driver.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

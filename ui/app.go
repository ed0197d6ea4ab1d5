// Package ui renders the live dashboard. It is a pure reader of samples,
// assessments, and the event log; all analysis happens in the engine.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opsroot/healthmon/engine"
	"github.com/opsroot/healthmon/model"
)

type tickMsg time.Time

type collectMsg struct {
	sample      *model.Sample
	assessments []model.HealthAssessment
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	engine   *engine.Engine
	interval time.Duration

	sample      *model.Sample
	assessments []model.HealthAssessment
	events      []model.MonitorEvent

	width  int
	height int
}

// NewModel creates the dashboard over a running engine.
func NewModel(eng *engine.Engine, interval time.Duration) Model {
	return Model{engine: eng, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return m.collect
}

func (m Model) collect() tea.Msg {
	s, a := m.engine.Tick()
	return collectMsg{sample: s, assessments: a}
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, m.collect
	case collectMsg:
		m.sample = msg.sample
		m.assessments = msg.assessments
		m.events = m.engine.Events()
		return m, m.scheduleTick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.sample == nil {
		return "collecting first sample..."
	}

	header := titleStyle.Render("healthmon") + helpStyle.Render("  q quit")
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.compositePanel(), m.domainPanel())
	sections := []string{header, top}
	if fp := m.freezePanel(); fp != "" {
		sections = append(sections, fp)
	}
	sections = append(sections, m.eventPanel())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) compositePanel() string {
	s := m.sample
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("System") + "\n")
	row := func(label string, v float64, unit string) {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render(fmt.Sprintf("%-16s", label)),
			valueStyle.Render(fmt.Sprintf("%7.1f%s", v, unit))))
	}
	row("CPU", s.CPUPercent, "%")
	row("Memory", s.MemoryUsedPercent, "%")
	row("Disk latency", s.MaxDiskLatencyMs(), "ms")
	row("DNS", s.DNSLatencyMs, "ms")
	row("GPU", s.GPUUtilPercent, "%")
	sb.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render(fmt.Sprintf("%-16s", "Mem pressure")),
		scoreStyle(100-s.MemoryPressureIndex).Render(fmt.Sprintf("%7.0f", s.MemoryPressureIndex))))
	sb.WriteString(fmt.Sprintf("%s %s",
		labelStyle.Render(fmt.Sprintf("%-16s", "Latency score")),
		scoreStyle(100-s.SystemLatencyScore).Render(fmt.Sprintf("%7.0f", s.SystemLatencyScore))))
	return panelStyle.Render(sb.String())
}

func (m Model) domainPanel() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Domains") + "\n")
	for _, a := range m.assessments {
		line := fmt.Sprintf("%-10s %s",
			a.Score.Domain,
			scoreStyle(a.Score.Score).Render(fmt.Sprintf("%5.0f", a.Score.Score)))
		if a.Score.Hint != "" {
			line += "  " + helpStyle.Render(a.Score.Hint)
		}
		sb.WriteString(line + "\n")
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) freezePanel() string {
	s := m.sample
	if s.Freeze == nil && s.DeepFreeze == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(critStyle.Render("Freeze diagnosis") + "\n")
	if s.Freeze != nil {
		sb.WriteString(fmt.Sprintf("%s: %s\n", s.Freeze.Cause, s.Freeze.Description))
		for _, ev := range s.Freeze.Evidence {
			sb.WriteString(helpStyle.Render("  • "+ev) + "\n")
		}
	}
	if s.DeepFreeze != nil {
		sb.WriteString(fmt.Sprintf("deep: %s (%.0f%% confidence) — %s",
			s.DeepFreeze.Category, s.DeepFreeze.Confidence*100, s.DeepFreeze.Description))
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) eventPanel() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Events") + "\n")
	if len(m.events) == 0 {
		sb.WriteString(helpStyle.Render("none"))
		return panelStyle.Render(sb.String())
	}
	shown := m.events
	if len(shown) > 8 {
		shown = shown[len(shown)-8:]
	}
	for i := len(shown) - 1; i >= 0; i-- {
		ev := shown[i]
		sevStyle := warnStyle
		if ev.Severity == model.SeverityCritical {
			sevStyle = critStyle
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			helpStyle.Render(ev.Timestamp.Format("15:04:05")),
			sevStyle.Render(ev.Severity.String()),
			ev.Description()))
	}
	return panelStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// Run starts the dashboard and blocks until the user quits.
func Run(eng *engine.Engine, interval time.Duration) error {
	p := tea.NewProgram(NewModel(eng, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

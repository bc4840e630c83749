package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/model"
)

// ErrAborted is returned when the operator leaves the grading screens
// before answering every question.
var ErrAborted = errors.New("grading aborted by operator")

type stage int

const (
	stageDisplayTest stage = iota
	stageScreen
	stageChassis
	stageCharger
	stageDone
)

type choice struct {
	key   string
	label string
}

var (
	screenChoices  = []choice{{"A", "Perfect"}, {"B", "White spots / dead pixel"}, {"C", "Scratched / cracked"}}
	chassisChoices = []choice{{"A", "Mint"}, {"B", "Minor scuffs"}, {"C", "Dents / cracks"}}
)

// GradeModel is the bubbletea model of the grading flow: an optional
// full-screen color test, then screen, chassis and charger questions.
type GradeModel struct {
	keys    KeyMap
	profile model.HardwareProfile

	stage   stage
	color   int // index into testColors during the display test
	width   int
	height  int
	input   engine.GradeInput
	preset  StaticPrompter
	aborted bool
}

// NewGradeModel starts at the display test when displayTest is set,
// otherwise at the screen question.
func NewGradeModel(p model.HardwareProfile, displayTest bool) GradeModel {
	m := GradeModel{
		keys:    DefaultKeyMap,
		profile: p,
		stage:   stageScreen,
		input:   engine.GradeInput{Charger: p.Charger},
	}
	if displayTest {
		m.stage = stageDisplayTest
	}
	return m
}

// WithPreset answers the questions p sets, so only the rest are asked.
func (m GradeModel) WithPreset(p StaticPrompter) GradeModel {
	m.preset = p
	return m.skipAnswered()
}

// skipAnswered moves past every question the preset already answers.
func (m GradeModel) skipAnswered() GradeModel {
	for {
		switch {
		case m.stage == stageScreen && m.preset.Screen != "":
			m.input.Screen = m.preset.Screen
			m.stage = stageChassis
		case m.stage == stageChassis && m.preset.Chassis != "":
			m.input.Chassis = m.preset.Chassis
			m.stage = stageCharger
		case m.stage == stageCharger && m.preset.Charger != nil:
			m.input.Charger = *m.preset.Charger
			m.stage = stageDone
		default:
			return m
		}
	}
}

func (m GradeModel) Init() tea.Cmd {
	if m.stage == stageDone {
		return tea.Quit
	}
	return nil
}

func (m GradeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Abort) {
			m.aborted = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m GradeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageDisplayTest:
		m.color++
		if m.color >= len(testColors) {
			m.stage = stageScreen
		}
	case stageScreen:
		if g, ok := m.gradeKey(msg); ok {
			m.input.Screen = g
			m.stage = stageChassis
		}
	case stageChassis:
		if g, ok := m.gradeKey(msg); ok {
			m.input.Chassis = g
			m.stage = stageCharger
		}
	case stageCharger:
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.input.Charger = true
		case key.Matches(msg, m.keys.No):
			m.input.Charger = false
		case key.Matches(msg, m.keys.Accept):
		default:
			return m, nil
		}
		m.stage = stageDone
	}
	m = m.skipAnswered()
	if m.stage == stageDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m GradeModel) gradeKey(msg tea.KeyMsg) (model.Grade, bool) {
	switch {
	case key.Matches(msg, m.keys.GradeA):
		return model.GradeA, true
	case key.Matches(msg, m.keys.GradeB):
		return model.GradeB, true
	case key.Matches(msg, m.keys.GradeC):
		return model.GradeC, true
	}
	return "", false
}

// Result returns the operator's answers, or ErrAborted.
func (m GradeModel) Result() (engine.GradeInput, error) {
	if m.aborted || m.stage != stageDone {
		return engine.GradeInput{}, ErrAborted
	}
	return m.input, nil
}

func (m GradeModel) View() string {
	switch m.stage {
	case stageDisplayTest:
		return m.viewColor()
	case stageScreen:
		return m.viewQuestion("Rate screen condition", screenChoices, "a/b/c")
	case stageChassis:
		return m.viewQuestion("Rate chassis condition", chassisChoices, "a/b/c")
	case stageCharger:
		detected := "no"
		if m.profile.Charger {
			detected = "yes"
		}
		return m.viewQuestion("Charger included?",
			[]choice{{"Y", "Yes"}, {"N", "No"}},
			fmt.Sprintf("y/n, enter = detected (%s)", detected))
	}
	return ""
}

func (m GradeModel) viewColor() string {
	c := testColors[m.color]
	label := fmt.Sprintf("[ %s · %d/%d · any key ]", c.name, m.color+1, len(testColors))
	w, h := m.width, m.height
	if w == 0 || h == 0 {
		w, h = 80, 24
	}
	return lipgloss.NewStyle().
		Background(c.bg).
		Foreground(c.fg).
		Width(w).
		Height(h).
		Align(lipgloss.Center, lipgloss.Center).
		Render(label)
}

func (m GradeModel) viewQuestion(title string, choices []choice, hint string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("INTERACTIVE GRADING"))
	b.WriteString("  ")
	b.WriteString(labelStyle.Render(m.profile.ServiceTag + " · " + m.profile.Model))
	b.WriteString("\n\n")
	b.WriteString(valueStyle.Render(title))
	b.WriteString("\n")
	for _, c := range choices {
		fmt.Fprintf(&b, "  %s %s\n", selectedStyle.Render("["+c.key+"]"), valueStyle.Render(c.label))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(hint + " · esc abort"))
	return panelStyle.Render(b.String())
}

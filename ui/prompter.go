package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/model"
)

// TUIPrompter asks the operator through the grading screens. Questions
// Preset answers are not asked.
type TUIPrompter struct {
	DisplayTest bool
	Preset      StaticPrompter
	In          io.Reader // nil: stdin
	Out         io.Writer // nil: stdout
}

func (p *TUIPrompter) Grade(ctx context.Context, profile model.HardwareProfile) (engine.GradeInput, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}

	final, err := tea.NewProgram(NewGradeModel(profile, p.DisplayTest).WithPreset(p.Preset), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return engine.GradeInput{}, ErrAborted
		}
		return engine.GradeInput{}, fmt.Errorf("grading ui: %w", err)
	}
	m, ok := final.(GradeModel)
	if !ok {
		return engine.GradeInput{}, fmt.Errorf("grading ui: unexpected model %T", final)
	}
	return m.Result()
}

// StaticPrompter answers without asking, for unattended runs. Unset
// grades keep the profile's values; a nil Charger keeps the detected
// AC state.
type StaticPrompter struct {
	Screen  model.Grade
	Chassis model.Grade
	Charger *bool
}

func (p StaticPrompter) Grade(_ context.Context, profile model.HardwareProfile) (engine.GradeInput, error) {
	in := engine.GradeInput{
		Screen:  profile.ScreenGrade,
		Chassis: profile.ChassisGrade,
		Charger: profile.Charger,
	}
	if p.Screen != "" {
		in.Screen = p.Screen
	}
	if p.Chassis != "" {
		in.Chassis = p.Chassis
	}
	if p.Charger != nil {
		in.Charger = *p.Charger
	}
	return in, nil
}

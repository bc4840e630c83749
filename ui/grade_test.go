package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/ledger"
	"github.com/ftahirops/lapaudit/model"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to m in order and returns the final model and the
// command of the last key.
func press(m GradeModel, keys ...tea.KeyMsg) (GradeModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(GradeModel)
	}
	return m, cmd
}

func profile() model.HardwareProfile {
	return model.HardwareProfile{ServiceTag: "ABC1234", Model: "Latitude 5520", Charger: true}
}

func TestGradeModel_FullFlow(t *testing.T) {
	m, cmd := press(NewGradeModel(profile(), false), runes("b"), runes("a"), runes("n"))
	if cmd == nil {
		t.Fatal("last answer did not quit the program")
	}
	got, err := m.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	want := engine.GradeInput{Screen: model.GradeB, Chassis: model.GradeA, Charger: false}
	if got != want {
		t.Errorf("Result = %+v; want %+v", got, want)
	}
}

func TestGradeModel_EnterKeepsDetectedCharger(t *testing.T) {
	m, _ := press(NewGradeModel(profile(), false), runes("3"), runes("C"), tea.KeyMsg{Type: tea.KeyEnter})
	got, err := m.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if got.Screen != model.GradeC || got.Chassis != model.GradeC || !got.Charger {
		t.Errorf("Result = %+v", got)
	}
}

func TestGradeModel_IgnoresOtherKeys(t *testing.T) {
	m, _ := press(NewGradeModel(profile(), false), runes("x"), runes("y"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.stage != stageScreen {
		t.Errorf("stage = %d; want screen question", m.stage)
	}
	m, _ = press(m, runes("a"), runes("b"), runes("z"))
	if m.stage != stageCharger {
		t.Errorf("stage = %d; want charger question", m.stage)
	}
}

func TestGradeModel_Abort(t *testing.T) {
	for name, k := range map[string]tea.KeyMsg{
		"esc":    {Type: tea.KeyEsc},
		"ctrl+c": {Type: tea.KeyCtrlC},
	} {
		t.Run(name, func(t *testing.T) {
			m, cmd := press(NewGradeModel(profile(), true), runes("a"), k)
			if cmd == nil {
				t.Error("abort did not quit")
			}
			if _, err := m.Result(); !errors.Is(err, ErrAborted) {
				t.Errorf("Result error = %v; want ErrAborted", err)
			}
		})
	}
}

func TestGradeModel_UnfinishedIsAborted(t *testing.T) {
	m, _ := press(NewGradeModel(profile(), false), runes("a"))
	if _, err := m.Result(); !errors.Is(err, ErrAborted) {
		t.Errorf("Result error = %v; want ErrAborted", err)
	}
}

func TestGradeModel_DisplayTestCyclesColors(t *testing.T) {
	m := NewGradeModel(profile(), true)
	for i := range testColors {
		if m.stage != stageDisplayTest {
			t.Fatalf("left the display test after %d keys", i)
		}
		if v := m.View(); !strings.Contains(v, testColors[i].name) {
			t.Errorf("color %d view does not name %s", i, testColors[i].name)
		}
		m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	}
	if m.stage != stageScreen {
		t.Errorf("stage = %d after the display test; want screen question", m.stage)
	}
}

func TestGradeModel_WindowSize(t *testing.T) {
	next, _ := NewGradeModel(profile(), true).Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m := next.(GradeModel)
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d; want 120x40", m.width, m.height)
	}
}

func TestGradeModel_ViewShowsMachine(t *testing.T) {
	v := NewGradeModel(profile(), false).View()
	if !strings.Contains(v, "ABC1234") || !strings.Contains(v, "Rate screen condition") {
		t.Errorf("View() = %q", v)
	}
}

func TestGradeModel_PresetSkipsAnsweredQuestions(t *testing.T) {
	m := NewGradeModel(profile(), false).WithPreset(StaticPrompter{Chassis: model.GradeC})
	if m.stage != stageScreen {
		t.Fatalf("stage = %d; want screen question", m.stage)
	}
	m, cmd := press(m, runes("a"))
	if m.stage != stageCharger || cmd != nil {
		t.Fatalf("stage = %d after the screen answer; want charger question", m.stage)
	}
	m, cmd = press(m, runes("y"))
	if cmd == nil {
		t.Fatal("last answer did not quit the program")
	}
	got, err := m.Result()
	want := engine.GradeInput{Screen: model.GradeA, Chassis: model.GradeC, Charger: true}
	if err != nil || got != want {
		t.Errorf("Result = %+v, %v; want %+v", got, err, want)
	}
}

func TestGradeModel_PresetAfterDisplayTest(t *testing.T) {
	no := false
	m := NewGradeModel(profile(), true).WithPreset(StaticPrompter{Screen: model.GradeB, Chassis: model.GradeB, Charger: &no})
	if m.stage != stageDisplayTest || m.Init() != nil {
		t.Fatalf("stage = %d; want the display test first", m.stage)
	}
	keys := make([]tea.KeyMsg, len(testColors))
	for i := range keys {
		keys[i] = tea.KeyMsg{Type: tea.KeySpace}
	}
	m, cmd := press(m, keys...)
	if cmd == nil {
		t.Fatal("display test end did not quit with every answer preset")
	}
	got, err := m.Result()
	want := engine.GradeInput{Screen: model.GradeB, Chassis: model.GradeB, Charger: false}
	if err != nil || got != want {
		t.Errorf("Result = %+v, %v; want %+v", got, err, want)
	}
}

func TestStaticPrompter(t *testing.T) {
	no := false
	tests := []struct {
		name string
		p    StaticPrompter
		want engine.GradeInput
	}{
		{"keeps profile", StaticPrompter{}, engine.GradeInput{Screen: model.GradeB, Chassis: model.GradeB, Charger: true}},
		{"overrides", StaticPrompter{Screen: model.GradeA, Chassis: model.GradeC, Charger: &no},
			engine.GradeInput{Screen: model.GradeA, Chassis: model.GradeC, Charger: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := profile()
			p.ScreenGrade, p.ChassisGrade = model.GradeB, model.GradeB
			got, err := tt.p.Grade(context.Background(), p)
			if err != nil || got != tt.want {
				t.Errorf("Grade = %+v, %v; want %+v", got, err, tt.want)
			}
		})
	}
}

func TestRenderSummary(t *testing.T) {
	res := engine.Result{
		Record: model.AuditRecord{
			Timestamp: time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local),
			Profile: model.HardwareProfile{
				ServiceTag:      "ABC1234",
				Model:           "Latitude 5520",
				CPU:             "Intel Core i7-1185G7",
				Cores:           8,
				BatteryPct:      model.BatteryUnknown,
				GPU:             model.NoGPU,
				Resolution:      "1920x1080",
				ResolutionClass: model.ResolutionStandard,
			},
			Recommendation: model.RecommendStandard,
		},
		Decision: engine.Decision{Recommendation: model.RecommendStandard, Rule: 5, Reason: "no other rule matched"},
		Degraded: map[model.Subsystem]string{model.SubsystemPower: "unavailable: no battery present"},
	}
	out := RenderSummary(res, "/run/archiso/bootmnt/audit_master.csv")
	for _, want := range []string{
		"ABC1234",
		"11th gen",
		"UNKNOWN",
		"Standard Resale",
		"rule 5",
		"power",
		"audit_master.csv",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLedger(t *testing.T) {
	fields := make([]string, len(ledger.Columns))
	for i := range fields {
		fields[i] = "v"
	}
	fields[1] = "ABC1234"
	out := RenderLedger([]ledger.Entry{
		{Line: 2, Fields: fields},
		{Line: 3, Fields: []string{"2024-03-09 14:00:00", "XYZ"}},
	})
	for _, want := range []string{"service_tag", "ABC1234", "line 3: torn row"} {
		if !strings.Contains(out, want) {
			t.Errorf("ledger view missing %q:\n%s", want, out)
		}
	}
}

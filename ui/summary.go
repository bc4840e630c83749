package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/ledger"
	"github.com/ftahirops/lapaudit/model"
)

// maxValueWidth keeps the summary box inside an 80-column console.
const maxValueWidth = 56

// RenderSummary draws the boxed end-of-run report.
func RenderSummary(res engine.Result, ledgerPath string) string {
	rec := res.Record
	p := rec.Profile

	gen := "unknown"
	if g := engine.CPUGeneration(p.CPU); g != engine.GenUnknown {
		gen = humanize.Ordinal(g)
	}
	battery := p.BatteryPct.String()
	if p.BatteryPct.Known() {
		battery += "%"
	}

	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"Service tag", p.ServiceTag, valueStyle},
		{"Model", p.Model, valueStyle},
		{"CPU", fmt.Sprintf("%s (%d threads, %s gen)", p.CPU, p.Cores, gen), valueStyle},
		{"RAM", fmt.Sprintf("%d GB %s", p.RAMGB, p.RAMType), valueStyle},
		{"Storage", fmt.Sprintf("%s %d GB", p.StorageType, p.StorageGB), valueStyle},
		{"SMART", string(p.SMARTStatus), smartStyle(p.SMARTStatus)},
		{"Battery", battery, batteryStyle(p.BatteryPct)},
		{"GPU", p.GPU, valueStyle},
		{"Display", fmt.Sprintf("%s (%s)", p.Resolution, p.ResolutionClass), valueStyle},
		{"Screen", string(p.ScreenGrade), valueStyle},
		{"Chassis", string(p.ChassisGrade), valueStyle},
		{"Charger", p.ChargerFlag(), valueStyle},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("AUDIT SUMMARY"))
	b.WriteString("\n\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s %s\n",
			labelStyle.Render(fmt.Sprintf("%-12s", r.label)),
			r.style.Render(ansi.Truncate(r.value, maxValueWidth, "…")))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n",
		labelStyle.Render(fmt.Sprintf("%-12s", "Verdict")),
		recommendationStyle(rec.Recommendation).Render(string(rec.Recommendation)))
	b.WriteString(helpStyle.Render(fmt.Sprintf("rule %d: %s", res.Decision.Rule, res.Decision.Reason)))

	if len(res.Degraded) > 0 {
		b.WriteString("\n\n")
		b.WriteString(warnStyle.Render("Degraded probes"))
		for _, s := range sortedSubsystems(res.Degraded) {
			fmt.Fprintf(&b, "\n  %s %s", labelStyle.Render(string(s)),
				helpStyle.Render(ansi.Truncate(res.Degraded[s], maxValueWidth, "…")))
		}
	}
	if ledgerPath != "" {
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("saved to " + ledgerPath + " at " + rec.Timestamp.Format(model.TimestampLayout)))
	}
	return panelStyle.Render(b.String())
}

func sortedSubsystems(m map[model.Subsystem]string) []model.Subsystem {
	out := make([]model.Subsystem, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ledgerColumns are the columns `ledger tail` shows; the rest stay in
// the file.
var ledgerColumns = []int{0, 1, 2, 3, 5, 8, 9, 10, 11, 14, 15, 16, 17}

// RenderLedger draws ledger rows as a table. Rows that do not have the
// full column set are shown as they are, flagged in the first column.
func RenderLedger(entries []ledger.Entry) string {
	headers := make([]string, len(ledgerColumns))
	for i, c := range ledgerColumns {
		headers[i] = ledger.Columns[c]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return valueStyle.Padding(0, 1)
		})

	for _, e := range entries {
		cells := make([]string, len(ledgerColumns))
		if len(e.Fields) != len(ledger.Columns) {
			cells[0] = critStyle.Render(fmt.Sprintf("line %d: torn row", e.Line))
			t.Row(cells...)
			continue
		}
		for i, c := range ledgerColumns {
			cells[i] = ansi.Truncate(e.Fields[c], 28, "…")
		}
		t.Row(cells...)
	}
	return t.Render()
}

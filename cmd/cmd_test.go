package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ftahirops/lapaudit/ledger"
	"github.com/ftahirops/lapaudit/model"
)

func TestParseCharger(t *testing.T) {
	tests := []struct {
		in      string
		want    *bool
		wantErr bool
	}{
		{"", nil, false},
		{"y", ptr(true), false},
		{" YES ", ptr(true), false},
		{"n", ptr(false), false},
		{"0", ptr(false), false},
		{"maybe", nil, true},
	}
	for _, tt := range tests {
		got, err := parseCharger(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCharger(%q) error = %v", tt.in, err)
			continue
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("parseCharger(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(b bool) *bool { return &b }

func TestBuildLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := buildLogger("info", true, &buf)
	logger.Debug("hidden")
	logger.Info("audit recorded", "service_tag", "ABC1234")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug line logged at info level")
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &line); err != nil {
		t.Fatalf("not a JSON line: %q", out)
	}
	if line["service_tag"] != "ABC1234" {
		t.Errorf("service_tag = %v", line["service_tag"])
	}

	buf.Reset()
	buildLogger("", false, &buf).Info("quiet by default")
	if buf.Len() != 0 {
		t.Errorf("default level logged info: %q", buf.String())
	}
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// resetFlags puts every flag of c and its subcommands back to its
// default, since the flag variables are package state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// scanConfig writes a config that probes an empty tree, so a scan reads
// nothing from the host.
func scanConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := "probes:\n  root: " + filepath.Join(dir, "root") + "\n" +
		"grading:\n  default_screen: B\n  default_chassis: B\n" +
		"ledger:\n  remount: false\n"
	if err := os.MkdirAll(filepath.Join(dir, "root"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func lastLedgerRow(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 || lines[0] != ledger.Header {
		t.Fatalf("ledger = %q", data)
	}
	return lines[len(lines)-1]
}

func TestScan_Unattended(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantEnd string
	}{
		{
			name:    "flags override config",
			args:    []string{"--no-interactive", "--screen", "c", "--chassis", "a", "--charger", "n"},
			wantEnd: ",C,A,N," + string(model.RecommendPartsRepair),
		},
		{
			name:    "all grades given",
			args:    []string{"--screen", "a", "--chassis", "a", "--charger", "y"},
			wantEnd: ",A,A,Y," + string(model.RecommendStandard),
		},
		{
			name:    "config defaults",
			args:    []string{"--no-interactive"},
			wantEnd: ",B,B,N," + string(model.RecommendStandard),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			args := append([]string{"scan", "--config", scanConfig(t), "--ledger-dir", dir}, tt.args...)
			out, stderr, err := execute(t, args...)
			if err != nil {
				t.Fatalf("scan: %v\n%s", err, stderr)
			}
			if !strings.Contains(out, string(model.RecommendPartsRepair)) && !strings.Contains(out, string(model.RecommendStandard)) {
				t.Errorf("summary has no recommendation:\n%s", out)
			}
			row := lastLedgerRow(t, filepath.Join(dir, ledger.DefaultFile))
			if !strings.HasSuffix(row, tt.wantEnd) {
				t.Errorf("row = %q; want suffix %q", row, tt.wantEnd)
			}
		})
	}
}

func TestScan_BareRootCommand(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := execute(t, "--config", scanConfig(t), "--ledger-dir", dir, "--no-interactive", "--json")
	if err != nil {
		t.Fatalf("lapaudit: %v\n%s", err, stderr)
	}
	entries, err := ledger.Read(filepath.Join(dir, ledger.DefaultFile))
	if err != nil || len(entries) != 1 {
		t.Fatalf("Read = %d entries, %v", len(entries), err)
	}
}

func TestScan_LedgerFailureIsFatal(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(notDir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := execute(t, "scan", "--config", scanConfig(t), "--ledger-dir", notDir,
		"--no-interactive", "--screen", "a", "--chassis", "a", "--charger", "y")
	if err == nil {
		t.Fatal("scan succeeded with an unusable ledger directory")
	}
	if data, _ := os.ReadFile(notDir); string(data) != "x" {
		t.Errorf("ledger target modified: %q", data)
	}
}

func writeLedger(t *testing.T, tags ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ledger.DefaultFile)
	for _, tag := range tags {
		rec := model.AuditRecord{
			Timestamp: time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local),
			Profile: model.HardwareProfile{
				ServiceTag:   tag,
				Model:        "Latitude 5520",
				CPU:          "Intel Core i7-1185G7",
				BatteryPct:   82,
				GPU:          model.NoGPU,
				ScreenGrade:  model.GradeA,
				ChassisGrade: model.GradeB,
			},
			Recommendation: model.RecommendStandard,
		}
		if err := ledger.Append(path, rec); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestLedgerVerify(t *testing.T) {
	path := writeLedger(t, "AAA1111", "BBB2222")
	out, _, err := execute(t, "ledger", "verify", path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "OK: 2 rows") {
		t.Errorf("stdout = %q", out)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("2024-03-09 15:00:00,CCC3333,Lat")
	f.Close()

	_, stderr, err := execute(t, "ledger", "verify", path)
	if err == nil {
		t.Fatal("verify passed a torn ledger")
	}
	if !strings.Contains(stderr, "line 4:") {
		t.Errorf("stderr = %q; want the torn line named", stderr)
	}
}

func TestLedgerTailJSON(t *testing.T) {
	path := writeLedger(t, "AAA1111", "BBB2222", "CCC3333")
	out, _, err := execute(t, "ledger", "tail", "-n", "2", "--json", path)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d records; want 2:\n%s", len(lines), out)
	}
	var rec model.AuditRecord
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Profile.ServiceTag != "CCC3333" {
		t.Errorf("last record = %q; want CCC3333", rec.Profile.ServiceTag)
	}
}

func TestLedgerTail_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ledger.DefaultFile)
	out, _, err := execute(t, "ledger", "tail", "--json=false", "-n", "10", path)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if !strings.Contains(out, "no records") {
		t.Errorf("stdout = %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version": "`+Version+`"`) {
		t.Errorf("version output = %q", out)
	}
}

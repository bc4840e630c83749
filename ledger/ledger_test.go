package ledger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

func sampleRecord(tag string, ts time.Time) model.AuditRecord {
	return model.AuditRecord{
		Timestamp: ts,
		Profile: model.HardwareProfile{
			ServiceTag:      tag,
			Model:           "Latitude 5520",
			CPU:             "Intel Core i7-1185G7",
			Cores:           8,
			RAMGB:           16,
			RAMType:         model.RAMDDR4,
			StorageType:     model.StorageNVMe,
			StorageGB:       512,
			SMARTStatus:     model.SMARTPassed,
			BatteryPct:      82,
			GPU:             model.NoGPU,
			Resolution:      "1920x1080",
			ResolutionClass: model.ResolutionStandard,
			ScreenGrade:     model.GradeA,
			ChassisGrade:    model.GradeB,
			Charger:         true,
		},
		Recommendation: model.RecommendStandard,
	}
}

var t0 = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestAppend_NewFileGetsHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usb", DefaultFile)
	for i, tag := range []string{"AAA1111", "BBB2222", "CCC3333"} {
		if err := Append(path, sampleRecord(tag, t0.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append %s: %v", tag, err)
		}
	}
	lines := readLines(t, path)
	if len(lines) != 4 {
		t.Fatalf("got %d lines; want 4:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if lines[0] != Header {
		t.Errorf("line 1 = %q; want header", lines[0])
	}
	for i, tag := range []string{"AAA1111", "BBB2222", "CCC3333"} {
		if !strings.Contains(lines[i+1], ","+tag+",") {
			t.Errorf("line %d = %q; want %s", i+2, lines[i+1], tag)
		}
	}
	want := "2024-03-09 14:05:07,AAA1111,Latitude 5520,Intel Core i7-1185G7,8,16,DDR4,NVMe,512,PASSED,82,None,1920x1080,Standard,A,B,Y,Standard Resale"
	if lines[1] != want {
		t.Errorf("row =\n%s\nwant\n%s", lines[1], want)
	}
}

func TestAppend_EmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Append(path, sampleRecord("AAA1111", t0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if lines := readLines(t, path); len(lines) != 2 || lines[0] != Header {
		t.Errorf("lines = %q", lines)
	}
}

func TestAppend_PreservesExistingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := Append(path, sampleRecord("AAA1111", t0)); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)
	if err := Append(path, sampleRecord("BBB2222", t0)); err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(after), string(before)) {
		t.Error("second append rewrote earlier bytes")
	}
}

func TestAppend_TornLastRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	torn := Header + "\n2024-03-09 14:00:00,AAA1111,Lati"
	if err := os.WriteFile(path, []byte(torn), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Append(path, sampleRecord("BBB2222", t0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	lines := readLines(t, path)
	if len(lines) != 3 {
		t.Fatalf("got %d lines; want 3: %q", len(lines), lines)
	}
	if lines[1] != "2024-03-09 14:00:00,AAA1111,Lati" {
		t.Errorf("torn row changed: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2024-03-09 14:05:07,BBB2222,") {
		t.Errorf("new row = %q; want it on its own line", lines[2])
	}
}

func TestAppend_HeaderMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	orig := "name,serial\nfoo,bar\n"
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Append(path, sampleRecord("AAA1111", t0))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Fatalf("Append error = %v; want ErrHeaderMismatch", err)
	}
	if data, _ := os.ReadFile(path); string(data) != orig {
		t.Errorf("file modified after header mismatch: %q", data)
	}
}

func TestAppend_CompletesTornHeader(t *testing.T) {
	for _, partial := range []string{"timestamp,service_tag,mod", "\ufefftimestamp", Header} {
		t.Run(partial, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
				t.Fatal(err)
			}
			if err := Append(path, sampleRecord("AAA1111", t0)); err != nil {
				t.Fatalf("Append: %v", err)
			}
			data, _ := os.ReadFile(path)
			if !strings.HasPrefix(string(data), partial) {
				t.Errorf("existing bytes rewritten: %q", data)
			}
			entries, err := Read(path)
			if err != nil || len(entries) != 1 {
				t.Fatalf("Read = %d entries, %v", len(entries), err)
			}
			if got := entries[0].Fields[1]; got != "AAA1111" {
				t.Errorf("service_tag = %q", got)
			}
		})
	}
}

func TestAppend_SpreadsheetHeaderAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte("\ufeff"+Header+"\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Append(path, sampleRecord("AAA1111", t0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	entries, err := Read(path)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Read = %d entries, %v", len(entries), err)
	}
}

func TestAppend_QuotesFieldsWithCommas(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	rec := sampleRecord("AAA1111", t0)
	rec.Profile.GPU = "Advanced Micro Devices, Inc. [AMD/ATI] Navi 23 [Radeon RX 6600M]"
	rec.Recommendation = model.RecommendHighValue
	if err := Append(path, rec); err != nil {
		t.Fatal(err)
	}
	entries, err := Read(path)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Read = %d entries, %v", len(entries), err)
	}
	got, err := ParseRow(entries[0].Fields)
	if err != nil {
		t.Fatalf("ParseRow: %v", err)
	}
	if got.Profile.GPU != rec.Profile.GPU {
		t.Errorf("GPU = %q; want %q", got.Profile.GPU, rec.Profile.GPU)
	}
}

func TestAppend_UnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o700) })

	path := filepath.Join(dir, DefaultFile)
	if err := Append(path, sampleRecord("AAA1111", t0)); err == nil {
		t.Fatal("Append succeeded in a read-only directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("ledger file exists after failed append: %v", err)
	}
}

func TestParseRow_RoundTrip(t *testing.T) {
	unknownBattery := sampleRecord("BBB2222", t0)
	unknownBattery.Profile.BatteryPct = model.BatteryUnknown
	unknownBattery.Profile.Charger = false

	for name, rec := range map[string]model.AuditRecord{
		"standard":        sampleRecord("AAA1111", t0),
		"unknown battery": unknownBattery,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseRow(Row(rec))
			if err != nil {
				t.Fatalf("ParseRow: %v", err)
			}
			if !got.Timestamp.Equal(rec.Timestamp) || got.Profile != rec.Profile || got.Recommendation != rec.Recommendation {
				t.Errorf("ParseRow(Row(rec)) =\n%+v\nwant\n%+v", got, rec)
			}
		})
	}
}

func TestRow_ColumnCount(t *testing.T) {
	if got := len(Row(sampleRecord("AAA1111", t0))); got != len(Columns) {
		t.Errorf("Row has %d fields; want %d", got, len(Columns))
	}
	if len(Columns) != 18 {
		t.Errorf("Columns has %d entries; want 18", len(Columns))
	}
}

func TestReadTailVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	for i, tag := range []string{"AAA1111", "BBB2222", "CCC3333"} {
		if err := Append(path, sampleRecord(tag, t0.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	// cut the last row short, as a power loss would
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(path, data[:len(data)-20], 0o644); err != nil {
		t.Fatal(err)
	}

	tail, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(tail) != 2 || tail[0].Fields[1] != "BBB2222" || tail[0].Line != 3 {
		t.Errorf("Tail = %+v", tail)
	}

	rep, err := Verify(path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rep.Rows != 3 || rep.OK() || len(rep.Bad) != 1 || rep.Bad[0].Line != 4 {
		t.Errorf("Verify = %+v; want 3 rows with line 4 bad", rep)
	}
}

func TestRead_MissingFile(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil || entries != nil {
		t.Errorf("Read(missing) = %v, %v; want nil, nil", entries, err)
	}
}

func TestRead_ForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); !errors.Is(err, ErrHeaderMismatch) {
		t.Errorf("Read error = %v; want ErrHeaderMismatch", err)
	}
}

func TestFile_Append(t *testing.T) {
	f := &File{Path: filepath.Join(t.TempDir(), DefaultFile)}
	if err := f.Append(sampleRecord("AAA1111", t0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entries, _ := Read(f.Path); len(entries) != 1 {
		t.Errorf("got %d entries; want 1", len(entries))
	}
}

// --- media ---

func writeMounts(t *testing.T, content string) string {
	t.Helper()
	proc := filepath.Join(t.TempDir(), "proc")
	if err := os.MkdirAll(proc, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proc, "mounts"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return proc
}

const liveMounts = `/dev/sdb1 /run/archiso/bootmnt vfat ro,relatime,fmask=0022 0 0
airootfs / overlay rw,relatime 0 0
tmpfs /tmp tmpfs rw,nosuid,nodev 0 0
`

func TestResolveDir(t *testing.T) {
	proc := writeMounts(t, liveMounts)
	if got := ResolveDir("/mnt/ledger", proc); got != "/mnt/ledger" {
		t.Errorf("ResolveDir(explicit) = %q", got)
	}
	if got := ResolveDir("", proc); got != "/run/archiso/bootmnt" {
		t.Errorf("ResolveDir(live) = %q; want /run/archiso/bootmnt", got)
	}
	plain := writeMounts(t, "/dev/nvme0n1p2 / ext4 rw,relatime 0 0\n")
	if got := ResolveDir("", plain); got != "." {
		t.Errorf("ResolveDir(installed) = %q; want .", got)
	}
}

func TestMountFor(t *testing.T) {
	proc := writeMounts(t, liveMounts)
	m, err := util.ReadMounts(proc)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		path, want string
	}{
		{"/run/archiso/bootmnt/audit", "/run/archiso/bootmnt"},
		{"/run/archiso/bootmnt", "/run/archiso/bootmnt"},
		{"/run/archiso/bootmntx", "/"},
		{"/tmp/x", "/tmp"},
		{"/root", "/"},
	}
	for _, tt := range tests {
		got, ok := mountFor(m, tt.path)
		if !ok || got.Point != tt.want {
			t.Errorf("mountFor(%q) = %q, %v; want %q", tt.path, got.Point, ok, tt.want)
		}
	}
}

func TestPrepareDir_LeavesWritableMountsAlone(t *testing.T) {
	proc := writeMounts(t, liveMounts)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, dir := range []string{"/tmp/audit", "/root"} {
		if err := PrepareDir(dir, proc, logger); err != nil {
			t.Errorf("PrepareDir(%q) = %v; want nil", dir, err)
		}
	}
}

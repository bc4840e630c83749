// Package ledger appends audit records to the shared CSV file that
// accumulates one row per audited machine.
package ledger

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ftahirops/lapaudit/model"
)

// DefaultFile is the ledger file name on the audit medium.
const DefaultFile = "audit_master.csv"

// Columns is the fixed column order of the ledger. Spreadsheets built on
// the file depend on it; never reorder.
var Columns = []string{
	"timestamp", "service_tag", "model", "cpu", "cores",
	"ram_gb", "ram_type", "storage_type", "storage_gb",
	"smart_status", "battery_pct", "gpu", "resolution",
	"resolution_class", "screen_grade", "chassis_grade",
	"charger", "recommendation",
}

// Header is the first line of every ledger file.
var Header = strings.Join(Columns, ",")

// ErrHeaderMismatch means an existing file is not a ledger of this
// format. Nothing is appended to it.
var ErrHeaderMismatch = errors.New("ledger header mismatch")

// Row renders rec in column order.
func Row(rec model.AuditRecord) []string {
	p := rec.Profile
	return []string{
		rec.Timestamp.Format(model.TimestampLayout),
		p.ServiceTag,
		p.Model,
		p.CPU,
		strconv.Itoa(p.Cores),
		strconv.Itoa(p.RAMGB),
		string(p.RAMType),
		string(p.StorageType),
		strconv.Itoa(p.StorageGB),
		string(p.SMARTStatus),
		p.BatteryPct.String(),
		p.GPU,
		p.Resolution,
		string(p.ResolutionClass),
		string(p.ScreenGrade),
		string(p.ChassisGrade),
		p.ChargerFlag(),
		string(rec.Recommendation),
	}
}

// Append adds rec as the last row of the ledger at path. A missing or
// empty file gets the header first. Prior bytes are never rewritten; if
// a previous run was cut off mid-row, the new row starts on its own
// line, and a header cut off mid-write is completed. The file is synced and closed before Append returns.
func Append(path string, rec model.AuditRecord) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ledger: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("ledger: close: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("ledger: stat: %w", err)
	}

	var buf bytes.Buffer
	if info.Size() == 0 {
		buf.WriteString(Header)
		buf.WriteByte('\n')
	} else {
		rest, err := checkHeader(f)
		if err != nil {
			return err
		}
		torn, err := endsTorn(f, info.Size())
		if err != nil {
			return err
		}
		switch {
		case rest != "":
			buf.WriteString(rest)
		case torn:
			buf.WriteByte('\n')
		}
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(Row(rec)); err != nil {
		return fmt.Errorf("ledger: encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ledger: encode row: %w", err)
	}

	// One write call so a crash leaves at most one partial row.
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ledger: sync: %w", err)
	}
	return nil
}

// checkHeader compares the first line of f with Header. A UTF-8 BOM and
// CRLF line ending, as left by spreadsheet round-trips, are tolerated.
// A file holding only the start of the header, from a first run cut off
// mid-write, is accepted: rest is what completes the header line.
func checkHeader(f *os.File) (rest string, err error) {
	r := bufio.NewReader(io.NewSectionReader(f, 0, int64(len(Header))+8))
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("ledger: read header: %w", err)
	}
	got := normalizeHeader(line)
	if !strings.HasSuffix(line, "\n") && strings.HasPrefix(Header, got) {
		return Header[len(got):] + "\n", nil
	}
	if got != Header {
		return "", fmt.Errorf("ledger: %w: got %q", ErrHeaderMismatch, strings.TrimSpace(line))
	}
	return "", nil
}

func normalizeHeader(line string) string {
	line = strings.TrimPrefix(line, "\ufeff")
	return strings.TrimRight(line, "\r\n")
}

// endsTorn reports whether the file's last byte is not a newline.
func endsTorn(f *os.File, size int64) (bool, error) {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, fmt.Errorf("ledger: read tail: %w", err)
	}
	return last[0] != '\n', nil
}

// File is the ledger at Path. With SyncMedia set, every append is
// followed by a filesystem-wide sync for removable media.
type File struct {
	Path      string
	SyncMedia bool
}

// Append adds rec to the ledger file.
func (f *File) Append(rec model.AuditRecord) error {
	if err := Append(f.Path, rec); err != nil {
		return err
	}
	if f.SyncMedia {
		SyncMedia()
	}
	return nil
}

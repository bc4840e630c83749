package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ftahirops/lapaudit/model"
)

// Entry is one data row as stored, with its 1-based line in the file.
type Entry struct {
	Line   int
	Fields []string
}

// Read returns every data row of the ledger at path. A missing file is an
// empty ledger. Rows with the wrong column count are returned as they
// are; Verify reports them.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = normalizeHeader(header[0])
	}
	if !sameColumns(header) {
		return nil, fmt.Errorf("ledger: %w", ErrHeaderMismatch)
	}

	var entries []Entry
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("ledger: read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		entries = append(entries, Entry{Line: line, Fields: fields})
	}
	return entries, nil
}

// Tail returns the last n rows of the ledger, oldest first. n <= 0 means
// all rows.
func Tail(path string, n int) ([]Entry, error) {
	entries, err := Read(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// Report summarizes a ledger check.
type Report struct {
	Rows int     `json:"rows"`
	Bad  []Entry `json:"bad,omitempty"` // rows that do not parse as records
}

// OK reports whether every row parsed.
func (r Report) OK() bool { return len(r.Bad) == 0 }

// Verify reads the whole ledger and reports rows that would not load
// back as records, typically a row torn by a power cut.
func Verify(path string) (Report, error) {
	entries, err := Read(path)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Rows: len(entries)}
	for _, e := range entries {
		if _, err := ParseRow(e.Fields); err != nil {
			rep.Bad = append(rep.Bad, e)
		}
	}
	return rep, nil
}

// ParseRow is the inverse of Row for rows the ledger wrote.
func ParseRow(fields []string) (model.AuditRecord, error) {
	if len(fields) != len(Columns) {
		return model.AuditRecord{}, fmt.Errorf("ledger: row has %d fields, want %d", len(fields), len(Columns))
	}
	ts, err := time.ParseInLocation(model.TimestampLayout, fields[0], time.Local)
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("ledger: timestamp: %w", err)
	}
	ints := make([]int, 3)
	for i, col := range []int{4, 5, 8} {
		if ints[i], err = strconv.Atoi(fields[col]); err != nil {
			return model.AuditRecord{}, fmt.Errorf("ledger: %s: %w", Columns[col], err)
		}
	}
	battery := model.BatteryUnknown
	if fields[10] != model.BatteryUnknown.String() {
		n, err := strconv.Atoi(fields[10])
		if err != nil {
			return model.AuditRecord{}, fmt.Errorf("ledger: battery_pct: %w", err)
		}
		battery = model.BatteryPct(n)
	}

	return model.AuditRecord{
		Timestamp: ts,
		Profile: model.HardwareProfile{
			ServiceTag:      fields[1],
			Model:           fields[2],
			CPU:             fields[3],
			Cores:           ints[0],
			RAMGB:           ints[1],
			RAMType:         model.RAMType(fields[6]),
			StorageType:     model.StorageType(fields[7]),
			StorageGB:       ints[2],
			SMARTStatus:     model.SMARTStatus(fields[9]),
			BatteryPct:      battery,
			GPU:             fields[11],
			Resolution:      fields[12],
			ResolutionClass: model.ResolutionClass(fields[13]),
			ScreenGrade:     model.Grade(fields[14]),
			ChassisGrade:    model.Grade(fields[15]),
			Charger:         fields[16] == "Y",
		},
		Recommendation: model.Recommendation(fields[17]),
	}, nil
}

func sameColumns(header []string) bool {
	if len(header) != len(Columns) {
		return false
	}
	for i, c := range Columns {
		if header[i] != c {
			return false
		}
	}
	return true
}

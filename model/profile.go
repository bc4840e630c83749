package model

import (
	"strconv"
	"strings"
)

// Unknown is the placeholder written for free-text and enum-like fields
// whose probe produced nothing usable.
const Unknown = "unknown"

// NoGPU is the gpu value for machines with integrated graphics only.
const NoGPU = "None"

// RAMType is the memory generation of the installed modules.
type RAMType string

const (
	RAMDDR3    RAMType = "DDR3"
	RAMDDR4    RAMType = "DDR4"
	RAMDDR5    RAMType = "DDR5"
	RAMUnknown RAMType = Unknown
)

// StorageType is the interface class of the primary internal disk.
type StorageType string

const (
	StorageHDD     StorageType = "HDD"
	StorageSSD     StorageType = "SSD"
	StorageNVMe    StorageType = "NVMe"
	StorageUnknown StorageType = Unknown
)

// SMARTStatus is the overall SMART self-assessment of the primary disk.
type SMARTStatus string

const (
	SMARTPassed  SMARTStatus = "PASSED"
	SMARTFailed  SMARTStatus = "FAILED"
	SMARTUnknown SMARTStatus = "UNKNOWN"
)

// ResolutionClass buckets the native panel resolution.
type ResolutionClass string

const (
	ResolutionStandard ResolutionClass = "Standard"
	ResolutionHiDPI    ResolutionClass = "HiDPI"
	ResolutionUnknown  ResolutionClass = Unknown
)

// Grade is an operator condition rating for the screen or the chassis.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// ParseGrade accepts "a", "B", " c " and friends.
func ParseGrade(s string) (Grade, bool) {
	switch g := Grade(strings.ToUpper(strings.TrimSpace(s))); g {
	case GradeA, GradeB, GradeC:
		return g, true
	}
	return "", false
}

// BatteryUnknown marks a machine whose battery health could not be read
// (desktop units, missing battery, unreadable sysfs).
const BatteryUnknown BatteryPct = -1

// BatteryPct is battery health as full-charge capacity over design
// capacity, 0..100, or BatteryUnknown.
type BatteryPct int

// Known reports whether the value is a real measurement.
func (b BatteryPct) Known() bool { return b >= 0 && b <= 100 }

func (b BatteryPct) String() string {
	if !b.Known() {
		return "UNKNOWN"
	}
	return strconv.Itoa(int(b))
}

// HardwareProfile is the normalized hardware state of one machine.
// It is built fresh every run and must not change once handed to the grader.
type HardwareProfile struct {
	ServiceTag      string          `json:"service_tag"`
	Model           string          `json:"model"`
	CPU             string          `json:"cpu"`
	Cores           int             `json:"cores"`  // logical CPUs
	RAMGB           int             `json:"ram_gb"` // GiB, rounded to whole
	RAMType         RAMType         `json:"ram_type"`
	StorageType     StorageType     `json:"storage_type"`
	StorageGB       int             `json:"storage_gb"` // decimal GB, rounded to whole
	SMARTStatus     SMARTStatus     `json:"smart_status"`
	BatteryPct      BatteryPct      `json:"battery_pct"`
	GPU             string          `json:"gpu"`
	Resolution      string          `json:"resolution"` // "WxH"
	ResolutionClass ResolutionClass `json:"resolution_class"`
	ScreenGrade     Grade           `json:"screen_grade"`
	ChassisGrade    Grade           `json:"chassis_grade"`
	Charger         bool            `json:"charger"`
}

// ChargerFlag renders Charger the way the ledger stores it.
func (p HardwareProfile) ChargerFlag() string {
	if p.Charger {
		return "Y"
	}
	return "N"
}

package engine

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ftahirops/lapaudit/collector"
	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

// HiDPIWidth is the panel width above which a display counts as HiDPI.
const HiDPIWidth = 2500

// DefaultGrade is assigned to screen and chassis when nobody rates them.
const DefaultGrade = model.GradeB

const (
	bytesPerGiB = 1 << 30
	bytesPerGB  = 1e9
)

var modeRe = regexp.MustCompile(`(\d{3,5})x(\d{3,5})`)

// Normalize converts raw probe output into a canonical profile. Fields
// of unavailable subsystems take their defaults; nothing here fails.
func Normalize(raw *model.RawFacts) model.HardwareProfile {
	if raw == nil {
		raw = &model.RawFacts{}
	}
	p := model.HardwareProfile{
		ServiceTag:   raw.ServiceTag,
		Model:        raw.ProductName,
		CPU:          raw.CPUModel,
		Cores:        raw.LogicalCPUs,
		RAMGB:        roundDiv(util.ParseFloat64(raw.MemTotalBytes), bytesPerGiB),
		RAMType:      ClassifyRAM(raw.MemoryTypes...),
		StorageGB:    roundDiv(util.ParseFloat64(raw.Disk.SizeBytes), bytesPerGB),
		SMARTStatus:  smartStatus(raw),
		BatteryPct:   batteryPct(raw.Battery),
		GPU:          DiscreteGPU(raw.GPUs),
		Resolution:   LargestMode(raw.Modes),
		ScreenGrade:  DefaultGrade,
		ChassisGrade: DefaultGrade,
		Charger:      raw.Battery.ACOnline == "1",
	}
	p.StorageType = model.StorageUnknown
	if raw.Disk.Device != "" {
		p.StorageType = ClassifyStorage(raw.Disk)
	}
	return Canonicalize(p)
}

// Canonicalize coerces every field of p into its canonical vocabulary.
// It is idempotent, and every profile Normalize returns is a fixed point.
func Canonicalize(p model.HardwareProfile) model.HardwareProfile {
	p.ServiceTag = orUnknown(strings.TrimSpace(p.ServiceTag))
	p.Model = orUnknown(collapseSpace(p.Model))
	p.CPU = orUnknown(CleanCPUName(p.CPU))
	p.Cores = max(p.Cores, 0)
	p.RAMGB = max(p.RAMGB, 0)
	p.StorageGB = max(p.StorageGB, 0)

	switch p.RAMType {
	case model.RAMDDR3, model.RAMDDR4, model.RAMDDR5:
	default:
		p.RAMType = ClassifyRAM(string(p.RAMType))
	}
	switch p.StorageType {
	case model.StorageHDD, model.StorageSSD, model.StorageNVMe:
	default:
		p.StorageType = model.StorageUnknown
	}
	switch s := model.SMARTStatus(strings.ToUpper(string(p.SMARTStatus))); s {
	case model.SMARTPassed, model.SMARTFailed:
		p.SMARTStatus = s
	default:
		p.SMARTStatus = model.SMARTUnknown
	}
	if !p.BatteryPct.Known() {
		p.BatteryPct = model.BatteryUnknown
	}

	p.GPU = collapseSpace(p.GPU)
	if !IsDiscreteGPU(p.GPU) {
		p.GPU = model.NoGPU
	}

	w, h, ok := parseMode(p.Resolution)
	if ok {
		p.Resolution = formatMode(w, h)
		p.ResolutionClass = model.ResolutionStandard
		if w > HiDPIWidth {
			p.ResolutionClass = model.ResolutionHiDPI
		}
	} else {
		p.Resolution = model.Unknown
		p.ResolutionClass = model.ResolutionUnknown
	}

	if g, ok := model.ParseGrade(string(p.ScreenGrade)); ok {
		p.ScreenGrade = g
	} else {
		p.ScreenGrade = DefaultGrade
	}
	if g, ok := model.ParseGrade(string(p.ChassisGrade)); ok {
		p.ChassisGrade = g
	} else {
		p.ChassisGrade = DefaultGrade
	}
	return p
}

// LargestMode returns the WxH with the largest area found in lines, or
// model.Unknown. Every mode on a line counts, so xrandr's current-mode
// summary and a plain DRM modes list both work.
func LargestMode(lines []string) string {
	var bw, bh int
	for _, line := range lines {
		for _, m := range modeRe.FindAllStringSubmatch(line, -1) {
			w, _ := strconv.Atoi(m[1])
			h, _ := strconv.Atoi(m[2])
			if w*h > bw*bh {
				bw, bh = w, h
			}
		}
	}
	if bw == 0 || bh == 0 {
		return model.Unknown
	}
	return formatMode(bw, bh)
}

func parseMode(s string) (w, h int, ok bool) {
	m := modeRe.FindStringSubmatch(s)
	if m == nil || m[0] != strings.TrimSpace(s) {
		return 0, 0, false
	}
	w, _ = strconv.Atoi(m[1])
	h, _ = strconv.Atoi(m[2])
	return w, h, w > 0 && h > 0
}

func formatMode(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

var (
	cpuNoise = strings.NewReplacer("(R)", "", "(r)", "", "(TM)", "", "(tm)", "")
	cpuGenRe = regexp.MustCompile(`(?i)^\d{1,2}(st|nd|rd|th) Gen\s+`)
	cpuFreq  = regexp.MustCompile(`\s*@\s*[\d.]+\s*[GM]Hz$`)
)

// CleanCPUName strips trademark marks, the "11th Gen" prefix, the
// frequency suffix and a trailing "CPU" from a /proc/cpuinfo model name:
// "11th Gen Intel(R) Core(TM) i7-1185G7 @ 3.00GHz" -> "Intel Core i7-1185G7".
func CleanCPUName(s string) string {
	for {
		next := collapseSpace(cpuNoise.Replace(s))
		next = cpuGenRe.ReplaceAllString(next, "")
		next = cpuFreq.ReplaceAllString(next, "")
		next = strings.TrimSpace(strings.TrimSuffix(next, " CPU"))
		if next == s {
			return s
		}
		s = next
	}
}

func smartStatus(raw *model.RawFacts) model.SMARTStatus {
	passed, known := collector.SMARTVerdict(raw.Disk.SMART)
	switch {
	case !known:
		return model.SMARTUnknown
	case passed:
		return model.SMARTPassed
	default:
		return model.SMARTFailed
	}
}

// batteryPct is full-charge over design capacity, rounded and clamped to
// 100. A new battery can report slightly more than its design figure.
func batteryPct(b model.RawBattery) model.BatteryPct {
	if !b.Present {
		return model.BatteryUnknown
	}
	full := util.ParseFloat64(b.Full)
	design := util.ParseFloat64(b.Design)
	if design <= 0 || full < 0 {
		return model.BatteryUnknown
	}
	return model.BatteryPct(min(int(math.Round(full/design*100)), 100))
}

func roundDiv(v, unit float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Round(v / unit))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orUnknown(s string) string {
	if s == "" {
		return model.Unknown
	}
	return s
}

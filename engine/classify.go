package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ftahirops/lapaudit/model"
)

// GenUnknown is returned when no CPU generation rule matches.
const GenUnknown = 0

// MinResaleGen is the oldest Intel-equivalent generation that still
// qualifies for standard resale on CPU grounds.
const MinResaleGen = 8

// genRule maps a CPU model pattern to an Intel-equivalent generation.
type genRule struct {
	name string
	re   *regexp.Regexp
	gen  func(m []string) int
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// genRules are tried in order; the first match wins.
var genRules = []genRule{
	{
		// "Core(TM) Ultra 7 155H" (series 1 follows 14th gen)
		name: "intel-core-ultra",
		re:   regexp.MustCompile(`(?i)\bUltra\s+[3579]\s+(\d)\d{2}`),
		gen:  func(m []string) int { return 13 + atoi(m[1]) },
	},
	{
		// four digits from 10th gen on: i7-1065G7 -> 10, i7-1185G7 -> 11,
		// i5-1235U -> 12, i7-1365U -> 13
		name: "intel-core-1x-4digit",
		re:   regexp.MustCompile(`(?i)\bi[3579][- ](1[0-9])\d{2}[A-Z]`),
		gen:  func(m []string) int { return atoi(m[1]) },
	},
	{
		// i5-10210U, i5-13500H, i7-14700HX
		name: "intel-core-5digit",
		re:   regexp.MustCompile(`(?i)\bi[3579][- ](1[0-9])\d{3}`),
		gen:  func(m []string) int { return atoi(m[1]) },
	},
	{
		// i7-8565U -> 8, i5-2520M -> 2
		name: "intel-core-4digit",
		re:   regexp.MustCompile(`(?i)\bi[3579][- ]([2-9])\d{3}`),
		gen:  func(m []string) int { return atoi(m[1]) },
	},
	{
		// first-generation Core: i7-620M, i5-520M
		name: "intel-core-3digit",
		re:   regexp.MustCompile(`(?i)\bi[3579][- ]\d{3}[A-Z]*\b`),
		gen:  func(m []string) int { return 1 },
	},
	{
		// Ryzen AI 9 HX 370 (Zen 5)
		name: "amd-ryzen-ai",
		re:   regexp.MustCompile(`(?i)\bRyzen\s+AI\b`),
		gen:  func(m []string) int { return 15 },
	},
	{
		// Ryzen 5 3500U -> 9, Ryzen 7 5800H -> 11, Ryzen 7 7840U -> 13
		name: "amd-ryzen",
		re:   regexp.MustCompile(`(?i)\bRyzen\s+(?:Threadripper\s+)?\d\s+(?:PRO\s+)?(\d)\d{3}`),
		gen:  func(m []string) int { return atoi(m[1]) + 6 },
	},
}

// CPUGeneration returns the Intel-equivalent generation of a CPU model
// string, or GenUnknown.
func CPUGeneration(cpu string) int {
	for _, r := range genRules {
		if m := r.re.FindStringSubmatch(cpu); m != nil {
			return r.gen(m)
		}
	}
	return GenUnknown
}

// ramRules are matched case-insensitively against the DMI memory type.
// LPDDR4X, DDR3L and friends collapse into their family.
var ramRules = []struct {
	contains string
	typ      model.RAMType
}{
	{"DDR5", model.RAMDDR5},
	{"DDR4", model.RAMDDR4},
	{"DDR3", model.RAMDDR3},
}

// ClassifyRAM returns the family of the first recognizable type.
func ClassifyRAM(types ...string) model.RAMType {
	for _, t := range types {
		upper := strings.ToUpper(t)
		for _, r := range ramRules {
			if strings.Contains(upper, r.contains) {
				return r.typ
			}
		}
	}
	return model.RAMUnknown
}

// ClassifyStorage maps the disk controller, drive type and device path
// to a storage class. NVMe is decided by the controller or device name;
// HDD versus SSD by the drive type, where "1"/"0" is lsblk's rotational
// flag.
func ClassifyStorage(d model.RawDisk) model.StorageType {
	controller := strings.ToLower(d.Controller)
	drive := strings.ToUpper(strings.TrimSpace(d.DriveType))
	switch {
	case strings.Contains(controller, "nvme"), strings.Contains(d.Device, "/nvme"):
		return model.StorageNVMe
	case drive == "HDD", drive == "1":
		return model.StorageHDD
	case drive == "SSD", drive == "0":
		return model.StorageSSD
	}
	return model.StorageUnknown
}

// gpuVendors are lowercased substrings that mark a discrete part. An
// AMD line must also say Radeon, and APU codenames and integrated part
// names are excluded: AMD laptops report their integrated graphics as a
// Radeon VGA controller.
var gpuVendors = []struct {
	name     string
	all      []string
	any      []string
	none     []string
	noneExpr *regexp.Regexp
}{
	{name: "nvidia", any: []string{"nvidia", "geforce", "quadro", "rtx "}},
	{
		name: "amd",
		all:  []string{"radeon"},
		any:  []string{"amd", "ati]", "advanced micro devices"},
		none: []string{
			"kaveri", "kabini", "kalindi", "mullins", "beema", "carrizo",
			"bristol ridge", "stoney", "wani", "raven", "picasso", "dali",
			"pollock", "renoir", "lucienne", "cezanne", "barcelo", "van gogh",
			"rembrandt", "mendocino", "phoenix", "hawk point", "strix",
			"vega mobile", "radeon graphics",
		},
		// "[Radeon R7 Graphics]", "[Radeon Vega 8]", "[Radeon 780M]"
		noneExpr: regexp.MustCompile(`graphics\]|\bradeon vega \d+\b|\bradeon \d{3}m\b`),
	},
}

// IsDiscreteGPU reports whether s names an NVIDIA part or a dedicated
// AMD Radeon part.
func IsDiscreteGPU(s string) bool {
	lower := strings.ToLower(s)
	if lower == "" || lower == strings.ToLower(model.NoGPU) {
		return false
	}
	for _, v := range gpuVendors {
		if !matchesAll(lower, v.all) || !matchesAny(lower, v.any) || matchesAny(lower, v.none) {
			continue
		}
		if v.noneExpr != nil && v.noneExpr.MatchString(lower) {
			continue
		}
		return true
	}
	return false
}

func matchesAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func matchesAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DiscreteGPU returns the description of the first discrete adapter in
// lspci-style lines, or model.NoGPU.
func DiscreteGPU(lines []string) string {
	for _, line := range lines {
		desc := line
		if _, after, ok := strings.Cut(line, ": "); ok {
			desc = after
		}
		desc = strings.TrimSpace(desc)
		if IsDiscreteGPU(desc) {
			return desc
		}
	}
	return model.NoGPU
}

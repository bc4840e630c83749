package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

// displayClasses are the lspci class names of graphics adapters.
var displayClasses = []string{
	"VGA compatible controller",
	"3D controller",
	"Display controller",
}

// pciVendors names the GPU vendors the sysfs fallback recognizes, in the
// wording lspci uses.
var pciVendors = map[string]string{
	"10de": "NVIDIA Corporation",
	"1002": "Advanced Micro Devices, Inc. [AMD/ATI]",
	"8086": "Intel Corporation",
}

// GraphicsProbe lists the graphics adapters as lspci-style lines. An
// empty list is a valid answer: the machine has no GPU the bus reports.
type GraphicsProbe struct {
	Env Env
}

func (p *GraphicsProbe) Name() model.Subsystem { return model.SubsystemGraphics }

func (p *GraphicsProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	out, err := capture(ctx, p.Env.Runner, "lspci")
	if err == nil {
		raw.GPUs = filterDisplayLines(splitLines(out))
		return nil
	}

	gpus, ok := p.drmAdapters()
	if !ok {
		return fmt.Errorf("%w: lspci: %v; no DRM devices", ErrUnavailable, err)
	}
	raw.GPUs = gpus
	return nil
}

// filterDisplayLines keeps lspci lines whose device class is a graphics
// adapter. Audio functions on the same card are dropped.
func filterDisplayLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		for _, class := range displayClasses {
			if strings.Contains(line, class+": ") {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// drmAdapters builds lspci-like lines from /sys/class/drm/card*/device.
// ok is false when no DRM card exists at all.
func (p *GraphicsProbe) drmAdapters() (gpus []string, ok bool) {
	cards, _ := filepath.Glob(p.Env.sys("class", "drm", "card[0-9]*"))
	sort.Strings(cards)
	seen := make(map[string]bool)
	for _, card := range cards {
		if strings.Contains(filepath.Base(card), "-") {
			continue // connector, not a card
		}
		ok = true
		dev := filepath.Join(card, "device")
		lines, err := util.ReadFileLines(filepath.Join(dev, "uevent"))
		if err != nil {
			continue
		}
		kv := make(map[string]string)
		for _, l := range lines {
			if k, v, found := strings.Cut(l, "="); found {
				kv[k] = v
			}
		}
		id := strings.ToLower(kv["PCI_ID"]) // "10DE:1F99"
		slot := kv["PCI_SLOT_NAME"]
		if id == "" || seen[slot+id] {
			continue
		}
		seen[slot+id] = true

		vendor, _, _ := strings.Cut(id, ":")
		name, known := pciVendors[vendor]
		if !known {
			name = "Unknown vendor"
		}
		class := "VGA compatible controller"
		if util.ReadTrimmed(filepath.Join(dev, "boot_vga")) == "0" {
			// A secondary AMD adapter is the dedicated Radeon of a
			// switchable-graphics laptop.
			class = "3D controller"
			if vendor == "1002" {
				name += " Radeon"
			}
		}
		gpus = append(gpus, fmt.Sprintf("%s %s: %s [%s]", strings.TrimPrefix(slot, "0000:"), class, name, id))
	}
	return gpus, ok
}

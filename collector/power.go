package collector

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

const upowerBattery = "/org/freedesktop/UPower/devices/battery_BAT0"

// PowerProbe reads battery wear counters and AC adapter state from
// /sys/class/power_supply, falling back to upower for the battery.
type PowerProbe struct {
	Env Env
}

func (p *PowerProbe) Name() model.Subsystem { return model.SubsystemPower }

func (p *PowerProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	p.readSysfs(&raw.Battery)
	if raw.Battery.Present && raw.Battery.Full != "" && raw.Battery.Design != "" {
		return nil
	}

	out, err := capture(ctx, p.Env.Runner, "upower", "-i", upowerBattery)
	if err != nil {
		return fmt.Errorf("%w: no battery in sysfs: %v", ErrUnavailable, err)
	}
	full, design, present := parseUpower(out)
	if !present {
		return fmt.Errorf("%w: no battery present", ErrUnavailable)
	}
	raw.Battery.Present = true
	raw.Battery.Full, raw.Battery.Design = full, design
	if full == "" || design == "" {
		return fmt.Errorf("%w: upower reported no energy-full/energy-full-design", ErrMalformed)
	}
	return nil
}

// readSysfs fills b from power_supply class devices. The first battery
// with capacity counters wins; any online Mains supply sets ACOnline.
func (p *PowerProbe) readSysfs(b *model.RawBattery) {
	dirs, _ := filepath.Glob(p.Env.sys("class", "power_supply", "*"))
	sort.Strings(dirs)
	for _, dir := range dirs {
		switch util.ReadTrimmed(filepath.Join(dir, "type")) {
		case "Mains":
			b.ACPresent = true
			if online := util.ReadTrimmed(filepath.Join(dir, "online")); online != "" && b.ACOnline != "1" {
				b.ACOnline = online
			}
		case "Battery":
			if b.Full != "" {
				continue
			}
			if util.ReadTrimmed(filepath.Join(dir, "present")) == "0" {
				continue
			}
			b.Present = true
			full, design, err := readCapacityPair(dir)
			if err == nil {
				b.Full, b.Design = full, design
			}
		}
	}
}

// readCapacityPair prefers energy_* (µWh) and falls back to charge_*
// (µAh). Both counters come from the same family so the ratio holds.
func readCapacityPair(dir string) (full, design string, err error) {
	for _, family := range []string{"energy", "charge"} {
		full = util.ReadTrimmed(filepath.Join(dir, family+"_full"))
		design = util.ReadTrimmed(filepath.Join(dir, family+"_full_design"))
		if full != "" && design != "" {
			return full, design, nil
		}
	}
	return "", "", errors.New("no capacity counters")
}

// parseUpower extracts energy-full and energy-full-design ("45.2 Wh")
// from `upower -i` output.
func parseUpower(out string) (full, design string, present bool) {
	kv := util.ParseKeyValueLines(splitLines(out))
	full = kv["energy-full"]
	design = kv["energy-full-design"]
	present = kv["present"] == "yes" || full != ""
	if strings.TrimSpace(kv["native-path"]) == "(null)" {
		present = false
	}
	return full, design, present
}

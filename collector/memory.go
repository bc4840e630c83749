package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

// MemoryProbe reads total RAM from the kernel and module types from DMI.
type MemoryProbe struct {
	Env Env
}

func (p *MemoryProbe) Name() model.Subsystem { return model.SubsystemMemory }

func (p *MemoryProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	var errs []error

	if vm, err := mem.VirtualMemoryWithContext(p.Env.gopsutilContext(ctx)); err == nil && vm.Total > 0 {
		raw.MemTotalBytes = strconv.FormatUint(vm.Total, 10)
	} else if total, err := p.readMeminfo(); err == nil {
		raw.MemTotalBytes = total
	} else {
		errs = append(errs, err)
	}

	out, err := capture(ctx, p.Env.Runner, "dmidecode", "-t", "memory")
	if err != nil {
		errs = append(errs, err)
	} else {
		raw.MemoryTypes = parseDMIMemoryTypes(out)
		if len(raw.MemoryTypes) == 0 {
			errs = append(errs, fmt.Errorf("%w: no populated memory devices in dmidecode", ErrMalformed))
		}
	}

	return errors.Join(errs...)
}

// readMeminfo returns MemTotal in bytes as a decimal string.
func (p *MemoryProbe) readMeminfo() (string, error) {
	lines, err := util.ReadFileLines(p.Env.proc("meminfo"))
	if err != nil {
		return "", fmt.Errorf("%w: read meminfo: %v", ErrUnavailable, err)
	}
	kv := util.ParseKeyValueLines(lines)
	kb := util.ParseUint64(kv["MemTotal"])
	if kb == 0 {
		return "", fmt.Errorf("%w: MemTotal missing", ErrMalformed)
	}
	return strconv.FormatUint(kb*1024, 10), nil
}

// parseDMIMemoryTypes returns the "Type:" of every populated
// "Memory Device" block in dmidecode -t memory output.
func parseDMIMemoryTypes(out string) []string {
	var types []string
	var inDevice, populated bool
	var current string

	commit := func() {
		if inDevice && populated && current != "" {
			types = append(types, current)
		}
		inDevice, populated, current = false, false, ""
	}

	for _, line := range splitLines(out) {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Handle "):
			commit()
			continue
		case line == "Memory Device":
			inDevice = true
			continue
		}
		if !inDevice {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Size":
			populated = value != "" && !strings.HasPrefix(value, "No Module") && value != "Unknown"
		case "Type":
			current = value
		}
	}
	commit()
	return types
}

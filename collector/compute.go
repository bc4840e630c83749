package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/common"
	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/util"
)

// ComputeProbe reads the CPU model name and logical CPU count.
type ComputeProbe struct {
	Env Env
}

func (p *ComputeProbe) Name() model.Subsystem { return model.SubsystemCompute }

func (p *ComputeProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	ctx = p.Env.gopsutilContext(ctx)

	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		raw.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		raw.LogicalCPUs = n
	}
	if raw.CPUModel != "" && raw.LogicalCPUs > 0 {
		return nil
	}

	// gopsutil came back short (unusual cpuinfo layouts on some ARM and
	// older kernels); count processor stanzas directly.
	lines, err := util.ReadFileLines(p.Env.proc("cpuinfo"))
	if err != nil {
		return fmt.Errorf("%w: read cpuinfo: %v", ErrUnavailable, err)
	}
	name, count := parseCPUInfo(lines)
	if raw.CPUModel == "" {
		raw.CPUModel = name
	}
	if raw.LogicalCPUs == 0 {
		raw.LogicalCPUs = count
	}
	if raw.CPUModel == "" {
		return fmt.Errorf("%w: no model name in cpuinfo", ErrMalformed)
	}
	return nil
}

// parseCPUInfo returns the first "model name" and the number of
// "processor" stanzas.
func parseCPUInfo(lines []string) (string, int) {
	var name string
	var count int
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "model name") && name == "":
			if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
				name = strings.TrimSpace(parts[1])
			}
		case strings.HasPrefix(line, "processor"):
			count++
		}
	}
	return name, count
}

// gopsutilContext points gopsutil at the probed root instead of the host.
func (e Env) gopsutilContext(ctx context.Context) context.Context {
	if e.hostRoot() {
		return ctx
	}
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{
		common.HostProcEnvKey: e.proc(),
		common.HostSysEnvKey:  e.sys(),
	})
}

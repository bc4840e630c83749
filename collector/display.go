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

// internalConnectors are DRM connector types used for built-in panels.
var internalConnectors = []string{"-eDP-", "-LVDS-", "-DSI-"}

// DisplayProbe collects the modes the panel advertises. The built-in
// panel's DRM connector wins; xrandr and then every DRM connector are
// fallbacks for machines whose panel is not exposed as eDP/LVDS.
type DisplayProbe struct {
	Env Env
}

func (p *DisplayProbe) Name() model.Subsystem { return model.SubsystemDisplay }

func (p *DisplayProbe) Collect(ctx context.Context, raw *model.RawFacts) error {
	internal, external := p.drmModes()
	if len(internal) > 0 {
		raw.Modes = internal
		return nil
	}

	out, err := capture(ctx, p.Env.Runner, "xrandr")
	if err == nil && out != "" {
		raw.Modes = splitLines(out)
		return nil
	}

	if len(external) > 0 {
		raw.Modes = external
		return nil
	}
	return fmt.Errorf("%w: no DRM modes and no xrandr", ErrUnavailable)
}

// drmModes reads /sys/class/drm/card*-*/modes, split by whether the
// connector drives a built-in panel.
func (p *DisplayProbe) drmModes() (internal, external []string) {
	paths, _ := filepath.Glob(p.Env.sys("class", "drm", "card*-*", "modes"))
	sort.Strings(paths)
	for _, path := range paths {
		lines, err := util.ReadFileLines(path)
		if err != nil || len(lines) == 0 {
			continue
		}
		connector := filepath.Base(filepath.Dir(path))
		if isInternalConnector(connector) {
			internal = append(internal, lines...)
		} else {
			external = append(external, lines...)
		}
	}
	return internal, external
}

func isInternalConnector(name string) bool {
	for _, c := range internalConnectors {
		if strings.Contains(name, c) {
			return true
		}
	}
	return false
}

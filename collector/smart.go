package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// querySMARTHealth runs `smartctl -H --json` on device and returns the
// raw output. smartctl sets exit bits for a failing disk, so output
// with a non-zero exit is still a valid answer.
func querySMARTHealth(ctx context.Context, r Runner, device string) (string, error) {
	out, err := capture(ctx, r, "smartctl", "-H", "--json", device)
	if err != nil {
		return "", fmt.Errorf("smart health: %w", err)
	}
	return out, nil
}

// smartctlJSON is the relevant subset of smartctl --json output.
type smartctlJSON struct {
	SmartStatus *struct {
		Passed bool `json:"passed"`
	} `json:"smart_status"`
}

// SMARTVerdict reads the overall health result from smartctl output,
// JSON or the classic text form. known is false when the output carries
// no verdict (SMART unsupported, USB bridges, permission errors).
func SMARTVerdict(out string) (passed, known bool) {
	out = strings.TrimSpace(out)
	if out == "" {
		return false, false
	}
	if strings.HasPrefix(out, "{") {
		var data smartctlJSON
		if err := json.Unmarshal([]byte(out), &data); err == nil {
			if data.SmartStatus == nil {
				return false, false
			}
			return data.SmartStatus.Passed, true
		}
	}
	// "SMART overall-health self-assessment test result: PASSED"
	// "SMART Health Status: OK" (SCSI)
	for _, line := range splitLines(out) {
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "RESULT:") && !strings.Contains(upper, "HEALTH STATUS:") {
			continue
		}
		switch {
		case strings.Contains(upper, "FAILED"):
			return false, true
		case strings.Contains(upper, "PASSED"), strings.HasSuffix(upper, ": OK"):
			return true, true
		}
	}
	return false, false
}

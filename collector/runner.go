package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an inspection tool and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools from PATH.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not installed", ErrUnavailable, name)
	}
	return exec.CommandContext(ctx, path, args...).Output()
}

// OfflineRunner reports every tool as unavailable.
type OfflineRunner struct{}

func (OfflineRunner) Run(_ context.Context, name string, _ ...string) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s does not run against a probe root", ErrUnavailable, name)
}

// capture runs a tool and returns its trimmed output. A non-zero exit
// with output is accepted: smartctl and dmidecode use exit bits for
// conditions other than failure.
func capture(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	out, err := r.Run(ctx, name, args...)
	text := strings.TrimSpace(string(out))
	if err != nil && text == "" {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

// placeholders are firmware filler strings that mean "not set".
var placeholders = []string{
	"", "unknown", "n/a", "none", "not specified", "not applicable",
	"to be filled by o.e.m.", "default string", "system serial number",
	"system product name", "0123456789", "not available",
}

// cleanField returns "" for firmware placeholder values.
func cleanField(raw string) string {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	for _, p := range placeholders {
		if lower == p {
			return ""
		}
	}
	return v
}

// splitLines splits tool output into trimmed lines.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ftahirops/lapaudit/model"
)

var (
	// ErrUnavailable means the subsystem or the tool that reads it is absent.
	ErrUnavailable = errors.New("unavailable")
	// ErrMalformed means a tool ran but its output could not be parsed.
	ErrMalformed = errors.New("malformed output")
)

// DefaultTimeout bounds each probe, including every command it runs.
const DefaultTimeout = 15 * time.Second

// Probe gathers raw facts about one subsystem. A probe writes whatever
// it managed to read into raw and returns an error describing what it
// could not read; it never aborts the audit.
type Probe interface {
	Name() model.Subsystem
	Collect(ctx context.Context, raw *model.RawFacts) error
}

// Env locates the system being probed. Tests point Root at a synthetic
// tree and swap Runner for canned command output.
type Env struct {
	Root   string // filesystem root holding proc/ and sys/
	Runner Runner
}

// HostEnv probes the running system.
func HostEnv() Env {
	return Env{Root: "/", Runner: ExecRunner{}}
}

// NewEnv probes the tree at root. Inspection tools read the host, not
// the tree, so they only run when root is the host root.
func NewEnv(root string) Env {
	e := Env{Root: root, Runner: ExecRunner{}}
	if !e.hostRoot() {
		e.Runner = OfflineRunner{}
	}
	return e
}

func (e Env) proc(elem ...string) string {
	return filepath.Join(append([]string{e.Root, "proc"}, elem...)...)
}

func (e Env) sys(elem ...string) string {
	return filepath.Join(append([]string{e.Root, "sys"}, elem...)...)
}

func (e Env) hostRoot() bool {
	return e.Root == "" || e.Root == "/"
}

// Registry holds the probes of one audit run.
type Registry struct {
	probes  []Probe
	timeout time.Duration
	logger  *slog.Logger
}

// NewRegistry creates a registry with one probe per required subsystem.
func NewRegistry(env Env, timeout time.Duration, logger *slog.Logger) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		timeout: timeout,
		logger:  logger,
		probes: []Probe{
			&IdentityProbe{Env: env},
			&ComputeProbe{Env: env},
			&MemoryProbe{Env: env},
			&StorageProbe{Env: env},
			&DisplayProbe{Env: env},
			&PowerProbe{Env: env},
			&GraphicsProbe{Env: env},
		},
	}
}

// Add registers an additional probe.
func (r *Registry) Add(p Probe) {
	r.probes = append(r.probes, p)
}

// Probes returns the registered probes in run order.
func (r *Registry) Probes() []Probe {
	return r.probes
}

// CollectAll runs every probe in order. Failures are recorded on the
// returned facts and in the error list; they never stop later probes.
func (r *Registry) CollectAll(ctx context.Context) (*model.RawFacts, []error) {
	raw := &model.RawFacts{}
	var errs []error
	for _, p := range r.probes {
		start := time.Now()
		if err := r.run(ctx, p, raw); err != nil {
			raw.MarkUnavailable(p.Name(), err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			r.logger.Warn("probe degraded", "probe", p.Name(), "error", err)
			continue
		}
		r.logger.Debug("probe done", "probe", p.Name(), "took", time.Since(start))
	}
	return raw, errs
}

func (r *Registry) run(ctx context.Context, p Probe, raw *model.RawFacts) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: probe panicked: %v", ErrMalformed, v)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return p.Collect(ctx, raw)
}

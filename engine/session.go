package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ftahirops/lapaudit/model"
)

// Collector gathers raw facts from every probe. *collector.Registry
// satisfies it.
type Collector interface {
	CollectAll(ctx context.Context) (*model.RawFacts, []error)
}

// GradeInput is what the operator decides about a machine.
type GradeInput struct {
	Screen  model.Grade
	Chassis model.Grade
	Charger bool
}

// Prompter asks the operator for grades. The profile carries the
// detected values, used as defaults.
type Prompter interface {
	Grade(ctx context.Context, p model.HardwareProfile) (GradeInput, error)
}

// Store persists one record. *ledger.File satisfies it.
type Store interface {
	Append(rec model.AuditRecord) error
}

// Result is the outcome of one audit run.
type Result struct {
	RunID    string                     `json:"run_id"`
	Record   model.AuditRecord          `json:"record"`
	Decision Decision                   `json:"decision"`
	Raw      *model.RawFacts            `json:"raw"`
	Degraded map[model.Subsystem]string `json:"degraded,omitempty"`
}

// Session drives one audit: probe, normalize, grade, persist.
type Session struct {
	Collector Collector
	Prompter  Prompter // nil keeps the defaults from Normalize
	Store     Store
	Now       func() time.Time
	Logger    *slog.Logger
}

// Run performs the audit. Probe failures degrade fields and are logged;
// an aborted prompt or a failed append is returned and nothing else is
// retried.
func (s *Session) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := s.logger().With("run", res.RunID)

	raw, errs := s.Collector.CollectAll(ctx)
	res.Raw = raw
	res.Degraded = raw.Unavailable
	log.Debug("probes finished", "degraded", len(errs))

	profile := Normalize(raw)
	if profile.ServiceTag == model.Unknown {
		log.Warn("no service tag; record will not be traceable to a machine")
	}

	if s.Prompter != nil {
		in, err := s.Prompter.Grade(ctx, profile)
		if err != nil {
			return res, fmt.Errorf("grading: %w", err)
		}
		profile.ScreenGrade = in.Screen
		profile.ChassisGrade = in.Chassis
		profile.Charger = in.Charger
		profile = Canonicalize(profile)
	}

	res.Decision = Evaluate(profile)
	res.Record = model.AuditRecord{
		Timestamp:      s.now().Truncate(time.Second),
		Profile:        profile,
		Recommendation: res.Decision.Recommendation,
	}

	if err := s.Store.Append(res.Record); err != nil {
		return res, err
	}
	log.Info("audit recorded",
		"service_tag", profile.ServiceTag,
		"recommendation", res.Decision.Recommendation,
		"rule", res.Decision.Rule)
	return res, nil
}

func (s *Session) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

package workday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sweeper runs the auto-close sweep of one company through its backend.
type Sweeper struct {
	backends map[string]Backend
	now      func() time.Time
	log      *slog.Logger
}

func NewSweeper(backends map[string]Backend, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{backends: backends, now: time.Now, log: log}
}

// Sweep runs companyID's sweep now and logs the result.
func (s *Sweeper) Sweep(ctx context.Context, companyID string) (SweepReport, error) {
	backend, ok := s.backends[companyID]
	if !ok {
		return SweepReport{}, fmt.Errorf("no backend for company %s", companyID)
	}
	run := uuid.NewString()
	start := s.now()
	report, err := backend.Sweep(ctx, start)
	log := s.log.With(
		"run_id", run,
		"company", report.Company,
		"mode", report.Mode,
		"checked", report.Checked,
		"closed", report.Closed,
		"failed", report.Failed,
		"took", time.Since(start),
	)
	if err != nil {
		log.Error("auto-close sweep finished with errors", "error", err)
		return report, err
	}
	log.Info("auto-close sweep finished")
	return report, nil
}

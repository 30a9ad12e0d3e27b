package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"hikvision-integration/models"
	"hikvision-integration/service/workday"
)

// Job is one scheduled unit of work. Returned errors are logged.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner whose jobs recover from panics, so one
// failing company never stops the others.
type Scheduler struct {
	cron   *cron.Cron
	log    *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	cl := cronLogger{log: log.With("component", "scheduler")}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules job under name. expr is parsed with ParseSchedule.
func (s *Scheduler) Register(name, expr string, loc *time.Location, job Job) (cron.EntryID, error) {
	sched, err := ParseSchedule(expr, loc)
	if err != nil {
		return 0, fmt.Errorf("job %s: %w", name, err)
	}
	id := s.cron.Schedule(sched, cron.FuncJob(func() {
		if err := job(s.ctx); err != nil {
			s.log.Error("scheduled job failed", "job", name, "error", err)
		}
	}))
	s.log.Info("job scheduled", "job", name, "schedule", expr, "next", sched.Next(time.Now()))
	return id, nil
}

// SweepRunner runs one company's auto-close sweep.
type SweepRunner interface {
	Sweep(ctx context.Context, companyID string) (workday.SweepReport, error)
}

// RegisterSweeps adds a closing job for every company with auto-close on.
// It returns the number of jobs added.
func (s *Scheduler) RegisterSweeps(companies []*models.Company, runner SweepRunner) (int, error) {
	n := 0
	for _, c := range companies {
		if !c.AutoWorkdayClosing {
			continue
		}
		id := c.ID
		_, err := s.Register("auto-close "+c.Name, c.ClosingScheduleTime, c.Location(), func(ctx context.Context) error {
			_, err := runner.Sweep(ctx, id)
			return err
		})
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling, cancels running jobs' context and waits for them
// until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes the cron runner's own logs into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}

package workday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hikvision-integration/models"
	"hikvision-integration/pkg/bitrix"
	"hikvision-integration/pkg/worktime"
	"hikvision-integration/repository"
)

const (
	ReportOpen  = "Рабочий день начат камерой HikVision"
	ReportClose = "Рабочий день завершён камерой HikVision"
	ReportSweep = "Рабочий день завершён автоматически по расписанию"
)

// RemoteBackend drives the workday in Bitrix and mirrors every transition
// into the company's store. The two writes are independent: the remote call
// happens at most once, the mirror write is attempted regardless of its result.
type RemoteBackend struct {
	company  *models.Company
	client   RemoteClient
	resolver *Resolver
	store    repository.AttendanceStore
	log      *slog.Logger
}

func NewRemoteBackend(company *models.Company, client RemoteClient, store repository.AttendanceStore, log *slog.Logger) *RemoteBackend {
	return &RemoteBackend{
		company:  company,
		client:   client,
		resolver: NewResolver(client),
		store:    store,
		log:      log,
	}
}

func (b *RemoteBackend) Mode() string { return ModeRemote }

func (b *RemoteBackend) Status(ctx context.Context, entry models.AttendanceEntry) models.RemoteWorkdayStatus {
	st, err := b.resolver.ResolveWithProfile(ctx, b.company, entry.EmployeeID)
	if err != nil {
		b.log.Warn("employee profile unavailable", "employee_id", entry.EmployeeID, "error", err)
	}
	return st
}

// openedToday reports whether Bitrix already has an open timestamp on the
// entry's local day.
func (b *RemoteBackend) openedToday(entry models.AttendanceEntry, st models.RemoteWorkdayStatus) bool {
	if st.TimeStart.IsZero() {
		return false
	}
	loc := b.company.Location()
	return worktime.DateOf(st.TimeStart.In(loc)) == worktime.DateOf(entry.At.In(loc))
}

func (b *RemoteBackend) Open(ctx context.Context, entry models.AttendanceEntry, st models.RemoteWorkdayStatus) models.TransitionResult {
	req := bitrix.OpenRequest{UserID: entry.EmployeeID}
	if !b.openedToday(entry, st) {
		req.Time = entry.At.In(b.company.Location())
		req.Report = ReportOpen
	}
	resp, err := b.client.Open(ctx, b.company.B24WebhookURL, req)
	res := remoteResult(models.TransitionOpen, resp, err, bitrix.StatusOpened)
	res.Outcome = b.mirror(ctx, entry, models.ActionOpen)
	return res
}

func (b *RemoteBackend) Close(ctx context.Context, entry models.AttendanceEntry, st models.RemoteWorkdayStatus) models.TransitionResult {
	resp, err := b.client.Close(ctx, b.company.B24WebhookURL, bitrix.CloseRequest{
		UserID: entry.EmployeeID,
		Time:   entry.At.In(b.company.Location()),
		Report: ReportClose,
	})
	res := remoteResult(models.TransitionClose, resp, err, bitrix.StatusClosed)
	res.Outcome = b.mirror(ctx, entry, models.ActionClose)
	return res
}

func remoteResult(kind models.TransitionKind, resp bitrix.WorkdayStatus, err error, want string) models.TransitionResult {
	res := models.TransitionResult{Kind: kind}
	var apiErr *bitrix.APIError
	switch {
	case err == nil && resp.Status == want:
		res.Success = true
		res.Message = "workday opened"
		if kind == models.TransitionClose {
			res.Message = "workday closed"
		}
	case err == nil:
		res.Error = fmt.Sprintf("unexpected status %q", resp.Status)
	case errors.As(err, &apiErr), errors.Is(err, bitrix.ErrNoResult):
		res.Error = err.Error()
	default:
		res.Transport = true
		res.Error = err.Error()
	}
	return res
}

func (b *RemoteBackend) mirror(ctx context.Context, entry models.AttendanceEntry, action models.WorkdayAction) models.ApplyOutcome {
	outcome, err := b.store.Apply(ctx, b.company, entry, action)
	if err != nil {
		b.log.Error("mirror write failed", "employee_id", entry.EmployeeID, "action", action, "error", err)
	}
	return outcome
}

// Sweep closes every employee Bitrix reports OPENED at today's cutoff. Each
// employee is handled on its own goroutine; one failure does not stop the rest.
func (b *RemoteBackend) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	report := SweepReport{Company: b.company.Name, Mode: ModeRemote}
	users, err := b.client.ActiveUsers(ctx, b.company.B24WebhookURL)
	if err != nil {
		return report, fmt.Errorf("list active users of %s: %w", b.company.Name, err)
	}
	loc := b.company.Location()
	closeAt := worktime.DateOf(now.In(loc)).At(b.company.Cutoff(), loc)

	var (
		mu       sync.Mutex
		failures []error
		closed   int
	)
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range users {
		g.Go(func() error {
			st := b.resolver.Resolve(gctx, b.company.B24WebhookURL, u.ID)
			if !st.Success {
				fail(fmt.Errorf("status of %s: %s", u.ID, st.Error))
				return nil
			}
			if st.Status != models.StateOpen {
				return nil
			}
			resp, err := b.client.Close(gctx, b.company.B24WebhookURL, bitrix.CloseRequest{
				UserID: u.ID,
				Time:   closeAt,
				Report: ReportSweep,
			})
			if err != nil {
				fail(fmt.Errorf("close %s: %w", u.ID, err))
				return nil
			}
			if resp.Status != bitrix.StatusClosed {
				fail(fmt.Errorf("close %s: unexpected status %q", u.ID, resp.Status))
				return nil
			}
			b.log.Info("workday closed by schedule", "employee_id", u.ID, "employee", u.FullName(), "at", closeAt)
			mu.Lock()
			closed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.Checked = len(users)
	report.Closed = closed
	report.Failed = len(failures)
	return report, errors.Join(failures...)
}

package workday

import (
	"context"
	"log/slog"
	"time"

	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
	"hikvision-integration/repository"
)

// LocalBackend keeps the workday in the company's attendance store only; the
// stored record is the source of truth.
type LocalBackend struct {
	company *models.Company
	store   repository.AttendanceStore
	log     *slog.Logger
}

func NewLocalBackend(company *models.Company, store repository.AttendanceStore, log *slog.Logger) *LocalBackend {
	return &LocalBackend{company: company, store: store, log: log}
}

func (b *LocalBackend) Mode() string { return ModeLocal }

// Status is OPEN when the entry's day has an open record, CLOSED otherwise.
func (b *LocalBackend) Status(ctx context.Context, entry models.AttendanceEntry) models.RemoteWorkdayStatus {
	day := worktime.DateOf(entry.At.In(b.company.Location()))
	records, err := b.store.Records(ctx, b.company, repository.RecordFilter{
		EmployeeID: entry.EmployeeID,
		From:       day,
		To:         day,
	})
	if err != nil {
		return failedStatus(err)
	}
	st := models.RemoteWorkdayStatus{
		Success: true,
		Status:  models.StateClosed,
		Profile: &models.EmployeeProfile{
			Name:   entry.EmployeeName,
			ChatID: b.company.Recipient(entry.EmployeeID),
		},
	}
	for _, r := range records {
		if r.IsOpen() {
			st.Status = models.StateOpen
			st.TimeStart = r.Start
		}
	}
	return st
}

func (b *LocalBackend) apply(ctx context.Context, kind models.TransitionKind, entry models.AttendanceEntry, action models.WorkdayAction) models.TransitionResult {
	res := models.TransitionResult{Kind: kind}
	outcome, err := b.store.Apply(ctx, b.company, entry, action)
	res.Outcome = outcome
	if err != nil {
		res.Error = err.Error()
		if outcome == models.OutcomeUnchanged {
			return res
		}
		// the record was written; only the directory update failed
		b.log.Warn("employee directory not updated", "employee_id", entry.EmployeeID, "error", err)
	}
	res.Success = true
	res.Message = "workday " + string(outcome)
	return res
}

func (b *LocalBackend) Open(ctx context.Context, entry models.AttendanceEntry, _ models.RemoteWorkdayStatus) models.TransitionResult {
	return b.apply(ctx, models.TransitionOpen, entry, models.ActionOpen)
}

func (b *LocalBackend) Close(ctx context.Context, entry models.AttendanceEntry, _ models.RemoteWorkdayStatus) models.TransitionResult {
	return b.apply(ctx, models.TransitionClose, entry, models.ActionClose)
}

func (b *LocalBackend) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	closed, err := b.store.SweepAutoClose(ctx, b.company, now)
	return SweepReport{Company: b.company.Name, Mode: ModeLocal, Closed: closed}, err
}

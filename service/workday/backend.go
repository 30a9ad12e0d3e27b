// Package workday decides and applies workday transitions for door-access
// events, and runs the scheduled auto-close sweep.
package workday

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hikvision-integration/models"
	"hikvision-integration/pkg/telegram"
	"hikvision-integration/repository"
)

// Backend is the per-company workday backend. RemoteIntegrated companies
// track the workday in Bitrix and mirror it locally; LocalOnly companies keep
// it in their attendance store alone.
type Backend interface {
	Mode() string
	// Status reports the employee's state for the entry. Failures come back
	// as an unsuccessful status.
	Status(ctx context.Context, entry models.AttendanceEntry) models.RemoteWorkdayStatus
	Open(ctx context.Context, entry models.AttendanceEntry, status models.RemoteWorkdayStatus) models.TransitionResult
	Close(ctx context.Context, entry models.AttendanceEntry, status models.RemoteWorkdayStatus) models.TransitionResult
	Sweep(ctx context.Context, now time.Time) (SweepReport, error)
}

const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Notifier delivers a message to an employee.
type Notifier interface {
	Notify(ctx context.Context, recipient, text string) error
}

// StoreProvider resolves a company's attendance store.
type StoreProvider interface {
	For(company *models.Company) (repository.AttendanceStore, error)
}

// SweepReport summarizes one auto-close run.
type SweepReport struct {
	Company string
	Mode    string
	Checked int
	Closed  int
	Failed  int
}

type Deps struct {
	Remote RemoteClient
	Stores StoreProvider
	Logger *slog.Logger
}

// NewBackends picks each company's backend once, at load time.
func NewBackends(companies []*models.Company, deps Deps) (map[string]Backend, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backends := make(map[string]Backend, len(companies))
	for _, c := range companies {
		store, err := deps.Stores.For(c)
		if err != nil {
			return nil, err
		}
		log := logger.With("company", c.Name)
		if c.UserWithBitrix {
			if deps.Remote == nil {
				return nil, fmt.Errorf("company %s: remote integration enabled without a bitrix client", c.Name)
			}
			backends[c.ID] = NewRemoteBackend(c, deps.Remote, store, log)
			continue
		}
		backends[c.ID] = NewLocalBackend(c, store, log)
	}
	return backends, nil
}

// NewNotifiers creates a Telegram bot for every company with notifications on.
func NewNotifiers(companies []*models.Company, httpClient *http.Client) map[string]Notifier {
	out := make(map[string]Notifier)
	for _, c := range companies {
		if c.MessageToTelegram && c.TelegramBotToken != "" {
			out[c.ID] = telegram.NewBot(c.TelegramBotToken, httpClient)
		}
	}
	return out
}

package workday

import (
	"context"
	"log/slog"
	"strings"

	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
)

// CompanyResolver finds the company owning a device address.
type CompanyResolver interface {
	ByDeviceAddress(addr string) (*models.Company, bool)
}

// EventStatus classifies what the engine did with an event.
type EventStatus string

const (
	EventUnknownDevice EventStatus = "unknown_device"
	EventIgnored       EventStatus = "ignored"
	EventInvalid       EventStatus = "invalid"
	EventUnresolved    EventStatus = "unresolved"
	EventApplied       EventStatus = "applied"
	EventFailed        EventStatus = "failed"
)

// EventResult is the engine's account of one access event.
type EventResult struct {
	Status     EventStatus
	Company    string
	Transition *models.TransitionResult
	Notified   bool
	Reason     string
}

// Engine turns access events into workday transitions.
type Engine struct {
	companies CompanyResolver
	backends  map[string]Backend
	notifiers map[string]Notifier
	log       *slog.Logger
}

func NewEngine(companies CompanyResolver, backends map[string]Backend, notifiers map[string]Notifier, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if notifiers == nil {
		notifiers = map[string]Notifier{}
	}
	return &Engine{companies: companies, backends: backends, notifiers: notifiers, log: log}
}

// HandleAccessEvent runs one event through resolve, transition and notify.
// It never fails; the result says what happened.
func (e *Engine) HandleAccessEvent(ctx context.Context, ev models.AccessEvent) EventResult {
	company, ok := e.companies.ByDeviceAddress(ev.DeviceAddress)
	if !ok {
		e.log.Info("no company for device", "device", ev.DeviceAddress)
		return EventResult{Status: EventUnknownDevice, Reason: "company not found"}
	}
	log := e.log.With("company", company.Name, "employee_id", ev.EmployeeID)
	res := EventResult{Company: company.Name}

	if ev.SubEventType != company.FaceAuthCode() {
		log.Debug("event ignored", "sub_event_type", ev.SubEventType)
		res.Status, res.Reason = EventIgnored, "not a face authentication event"
		return res
	}
	backend, ok := e.backends[company.ID]
	if !ok {
		log.Error("no backend configured")
		res.Status, res.Reason = EventFailed, "no backend"
		return res
	}
	at, err := worktime.ParseEventTime(ev.DateTime, company.Location())
	if err != nil {
		log.Warn("bad event time", "date_time", ev.DateTime, "error", err)
		res.Status, res.Reason = EventInvalid, err.Error()
		return res
	}
	if strings.TrimSpace(ev.EmployeeID) == "" {
		log.Warn("event without employee id")
		res.Status, res.Reason = EventInvalid, "missing employee id"
		return res
	}
	entry := models.AttendanceEntry{EmployeeID: ev.EmployeeID, EmployeeName: ev.EmployeeName, At: at}
	log.Info("access event", "employee", ev.EmployeeName, "at", at, "mode", backend.Mode())

	st := backend.Status(ctx, entry)
	if !st.Success {
		log.Error("workday status unavailable", "error", st.Error)
		res.Status, res.Reason = EventUnresolved, st.Error
		return res
	}

	var tr models.TransitionResult
	switch st.Status {
	case models.StateClosed, models.StatePaused:
		tr = backend.Open(ctx, entry, st)
	case models.StateOpen:
		tr = backend.Close(ctx, entry, st)
	default:
		log.Warn("unknown workday status", "status", st.Status)
		res.Status, res.Reason = EventUnresolved, "unknown status "+string(st.Status)
		return res
	}
	res.Transition = &tr
	res.Status = EventApplied
	if !tr.Success {
		res.Status = EventFailed
		res.Reason = tr.Error
		log.Error("workday transition failed", "kind", tr.Kind, "transport", tr.Transport, "error", tr.Error)
	} else {
		log.Info("workday transition", "kind", tr.Kind, "outcome", tr.Outcome)
	}

	res.Notified = e.notify(ctx, company, entry, st, tr, log)
	return res
}

func (e *Engine) notify(ctx context.Context, company *models.Company, entry models.AttendanceEntry, st models.RemoteWorkdayStatus, tr models.TransitionResult, log *slog.Logger) bool {
	if !company.MessageToTelegram || st.Profile == nil || st.Profile.ChatID == "" {
		return false
	}
	n, ok := e.notifiers[company.ID]
	if !ok {
		return false
	}
	name := st.Profile.Name
	if name == "" {
		name = entry.EmployeeName
	}
	if err := n.Notify(ctx, st.Profile.ChatID, notificationText(company, name, tr)); err != nil {
		log.Warn("notification not delivered", "error", err)
		return false
	}
	return true
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"hikvision-integration/models"
	"hikvision-integration/pkg/worktime"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrStorageUnavailable  = errors.New("storage backend not configured")
	ErrMissingEmployeeData = errors.New("employee id and name are required")
	ErrDuplicateRecord     = errors.New("more than one record for the same employee and day")
)

// AttendanceStore persists a company's attendance records and employee
// directory. Every method takes the company explicitly; one store value
// serves all companies using the same storage kind.
type AttendanceStore interface {
	// ApplyEvent toggles the employee's day for the entry's date and reports
	// whether anything was written.
	ApplyEvent(ctx context.Context, company *models.Company, entry models.AttendanceEntry) (bool, error)
	// Apply performs an explicit open or close, used when another backend has
	// already decided the transition.
	Apply(ctx context.Context, company *models.Company, entry models.AttendanceEntry, action models.WorkdayAction) (models.ApplyOutcome, error)
	SweepAutoClose(ctx context.Context, company *models.Company, now time.Time) (int, error)
	Records(ctx context.Context, company *models.Company, filter RecordFilter) ([]models.AttendanceRecord, error)
	Employees(ctx context.Context, company *models.Company) ([]models.Employee, error)
	// ReplaceRecords swaps the company's whole record set. A set holding two
	// records for one employee and day fails with ErrDuplicateRecord and
	// nothing is written.
	ReplaceRecords(ctx context.Context, company *models.Company, records []models.AttendanceRecord) error
	UpsertEmployees(ctx context.Context, company *models.Company, employees []models.Employee) (int, error)
}

// RecordFilter narrows Records. Zero fields match everything.
type RecordFilter struct {
	EmployeeID string
	From       worktime.Date
	To         worktime.Date
}

func (f RecordFilter) Match(r models.AttendanceRecord) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To) {
		return false
	}
	return true
}

func validateEntry(entry models.AttendanceEntry) error {
	if strings.TrimSpace(entry.EmployeeID) == "" || strings.TrimSpace(entry.EmployeeName) == "" {
		return ErrMissingEmployeeData
	}
	return nil
}

type recordKeyOf struct {
	employeeID string
	date       worktime.Date
}

// CheckUniqueRecords fails if two records share an employee and day.
func CheckUniqueRecords(records []models.AttendanceRecord) error {
	seen := make(map[recordKeyOf]struct{}, len(records))
	for _, r := range records {
		k := recordKeyOf{employeeID: r.EmployeeID, date: r.Date}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: employee %s on %s", ErrDuplicateRecord, r.EmployeeID, r.Date)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func findRecord(records []models.AttendanceRecord, employeeID string, date worktime.Date) int {
	for i := range records {
		if records[i].EmployeeID == employeeID && records[i].Date == date {
			return i
		}
	}
	return -1
}

// applyAction runs one transition against the in-memory record set. The
// entry's instant must already be in the company's location.
func applyAction(records []models.AttendanceRecord, entry models.AttendanceEntry, action models.WorkdayAction) ([]models.AttendanceRecord, models.ApplyOutcome) {
	idx := findRecord(records, entry.EmployeeID, worktime.DateOf(entry.At))
	if idx == -1 {
		if action == models.ActionClose {
			return records, models.OutcomeUnchanged
		}
		return append(records, models.NewAttendanceRecord(entry.EmployeeID, entry.EmployeeName, entry.At)), models.OutcomeCreated
	}

	rec := &records[idx]
	switch {
	case rec.IsOpen() && action != models.ActionOpen:
		rec.Close(entry.At)
		return records, models.OutcomeClosed
	case !rec.IsOpen() && action != models.ActionClose:
		rec.Resume(entry.At)
		return records, models.OutcomeResumed
	}
	return records, models.OutcomeUnchanged
}

// sweepRecords auto-closes every eligible record and returns how many changed.
func sweepRecords(records []models.AttendanceRecord, now time.Time, cutoff worktime.Clock) int {
	closed := 0
	for i := range records {
		if records[i].AutoClose(now, cutoff) {
			closed++
		}
	}
	return closed
}

// upsertEmployee adds the employee to the directory if the id is new. Known
// ids keep their first recorded name.
func upsertEmployee(dir []models.Employee, id, name string) ([]models.Employee, bool) {
	for _, e := range dir {
		if e.ID == id {
			return dir, false
		}
	}
	return append(dir, models.Employee{ID: id, Name: name}), true
}

func filterRecords(records []models.AttendanceRecord, filter RecordFilter) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if filter.Match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}

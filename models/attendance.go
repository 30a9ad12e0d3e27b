package models

import (
	"strings"
	"time"

	"hikvision-integration/pkg/worktime"
)

type RecordStatus string

const (
	RecordOpen   RecordStatus = "OPEN"
	RecordClosed RecordStatus = "CLOSED"
)

// ParseRecordStatus maps stored labels, including the Russian ones written by
// older deployments, onto RecordStatus. Unknown labels yield "".
func ParseRecordStatus(s string) RecordStatus {
	switch strings.TrimSpace(s) {
	case "OPEN", "Открыто":
		return RecordOpen
	case "CLOSED", "Завершено":
		return RecordClosed
	}
	return ""
}

// AttendanceRecord is one employee's workday on one calendar day.
// End is the zero time while the day is open.
type AttendanceRecord struct {
	EmployeeID   string
	EmployeeName string
	Date         worktime.Date
	Start        time.Time
	End          time.Time
	Status       RecordStatus
	PauseMinutes int
	Duration     string
}

// NewAttendanceRecord opens a fresh day for the employee at the given instant.
func NewAttendanceRecord(employeeID, employeeName string, at time.Time) AttendanceRecord {
	return AttendanceRecord{
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		Date:         worktime.DateOf(at),
		Start:        at,
		Status:       RecordOpen,
	}
}

func (r AttendanceRecord) IsOpen() bool {
	return r.End.IsZero()
}

// Close ends the day at the given instant and recomputes Duration from Start.
func (r *AttendanceRecord) Close(at time.Time) {
	r.End = at
	r.Status = RecordClosed
	if !r.Start.IsZero() {
		r.Duration = worktime.FormatDuration(worktime.WholeMinutes(r.Start, r.End))
	}
}

// Resume reopens a closed day and adds the gap since End to PauseMinutes.
func (r *AttendanceRecord) Resume(at time.Time) {
	if !r.End.IsZero() {
		r.PauseMinutes += worktime.WholeMinutes(r.End, at)
	}
	r.End = time.Time{}
	r.Status = RecordOpen
}

// AutoClose closes an open record left over from an earlier day, or from today
// once now has passed the cutoff. The record is closed at the cutoff on its
// own date. It reports whether the record changed.
func (r *AttendanceRecord) AutoClose(now time.Time, cutoff worktime.Clock) bool {
	if !r.IsOpen() {
		return false
	}
	loc := now.Location()
	today := worktime.DateOf(now)
	closeAt := r.Date.At(cutoff, loc)
	if r.Date.Before(today) || (r.Date == today && now.After(closeAt)) {
		r.Close(closeAt)
		return true
	}
	return false
}

// WorkdayAction is what a store is asked to do with an employee's day.
type WorkdayAction string

const (
	// ActionToggle lets the stored record decide: none or closed opens, open closes.
	ActionToggle WorkdayAction = "toggle"
	ActionOpen   WorkdayAction = "open"
	ActionClose  WorkdayAction = "close"
)

// ApplyOutcome reports what a store did with an event.
type ApplyOutcome string

const (
	OutcomeCreated   ApplyOutcome = "created"
	OutcomeClosed    ApplyOutcome = "closed"
	OutcomeResumed   ApplyOutcome = "resumed"
	OutcomeUnchanged ApplyOutcome = "unchanged"
)

// AttendanceEntry is a single store-bound event for an employee.
type AttendanceEntry struct {
	EmployeeID   string
	EmployeeName string
	At           time.Time
}

// Employee is a directory entry kept next to the attendance records.
type Employee struct {
	ID   string `json:"id" bson:"employee_id"`
	Name string `json:"name" bson:"name"`
}

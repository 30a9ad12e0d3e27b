package models

import (
	"fmt"
	"strings"
	"time"

	"hikvision-integration/pkg/worktime"
)

// RecordRow is the flat, string-timestamped shape of an AttendanceRecord used
// by the JSON file, the workbook Events sheet and the reporting API.
type RecordRow struct {
	ID            string `json:"id"`
	UserName      string `json:"userName"`
	EventDate     string `json:"eventDate"`
	StartWorkTime string `json:"startWorkTime"`
	EndWorkTime   string `json:"endWorkTime"`
	Status        string `json:"status"`
	Pause         int    `json:"pause"`
	Duration      string `json:"duration"`
}

// RecordColumns is the column order of RecordRow in tabular stores.
var RecordColumns = []string{"id", "userName", "eventDate", "startWorkTime", "endWorkTime", "status", "pause", "duration"}

func RowFromRecord(r AttendanceRecord, loc *time.Location) RecordRow {
	status := r.Status
	if status == "" {
		status = RecordClosed
		if r.IsOpen() {
			status = RecordOpen
		}
	}
	return RecordRow{
		ID:            r.EmployeeID,
		UserName:      r.EmployeeName,
		EventDate:     r.Date.String(),
		StartWorkTime: worktime.FormatTimestamp(r.Start, loc),
		EndWorkTime:   worktime.FormatTimestamp(r.End, loc),
		Status:        string(status),
		Pause:         r.PauseMinutes,
		Duration:      r.Duration,
	}
}

// ToRecord parses the row in loc. An unparseable date is an error; an
// unparseable start time leaves Start zero, matching how old files were read.
func (row RecordRow) ToRecord(loc *time.Location) (AttendanceRecord, error) {
	id := strings.TrimSpace(row.ID)
	if id == "" {
		return AttendanceRecord{}, fmt.Errorf("record without id")
	}
	date, err := worktime.ParseDate(row.EventDate)
	if err != nil {
		return AttendanceRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	start, err := worktime.ParseTimestamp(row.StartWorkTime, loc)
	if err != nil {
		start = time.Time{}
	}
	end, err := worktime.ParseTimestamp(row.EndWorkTime, loc)
	if err != nil {
		return AttendanceRecord{}, fmt.Errorf("record %s: %w", id, err)
	}
	rec := AttendanceRecord{
		EmployeeID:   id,
		EmployeeName: row.UserName,
		Date:         date,
		Start:        start,
		End:          end,
		Status:       ParseRecordStatus(row.Status),
		PauseMinutes: row.Pause,
		Duration:     row.Duration,
	}
	// End is authoritative for open/closed.
	if rec.IsOpen() {
		rec.Status = RecordOpen
	} else {
		rec.Status = RecordClosed
	}
	return rec, nil
}

// RowsToRecords converts a whole row set, failing on the first bad row. File
// stores read row by row instead and keep the bad ones.
func RowsToRecords(rows []RecordRow, loc *time.Location) ([]AttendanceRecord, error) {
	out := make([]AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.ToRecord(loc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func RecordsToRows(records []AttendanceRecord, loc *time.Location) []RecordRow {
	out := make([]RecordRow, 0, len(records))
	for _, r := range records {
		out = append(out, RowFromRecord(r, loc))
	}
	return out
}

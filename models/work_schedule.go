package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CompanyRef accepts a company id sent either as a JSON string or a number.
type CompanyRef string

func (r *CompanyRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = CompanyRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("companyId: %w", err)
	}
	*r = CompanyRef(n.String())
	return nil
}

// ScheduleUploadPayload replaces a company's schedule and shift workbooks.
// Rows are stored as sent; their columns are owned by the dashboard.
type ScheduleUploadPayload struct {
	CompanyID CompanyRef       `json:"companyId" validate:"required"`
	Schedules []map[string]any `json:"schedules" validate:"required"`
	Shifts    []map[string]any `json:"shifts"`
}

// EventsUploadPayload replaces a company's attendance records wholesale.
type EventsUploadPayload struct {
	CompanyID CompanyRef  `json:"companyId" validate:"required"`
	Events    []RecordRow `json:"events" validate:"required,dive"`
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedEvent = errors.New("malformed access event")

type hikEventLog struct {
	IPAddress             string `json:"ipAddress"`
	DateTime              string `json:"dateTime"`
	AccessControllerEvent *struct {
		SubEventType     json.Number `json:"subEventType"`
		EmployeeNoString string      `json:"employeeNoString"`
		Name             string      `json:"name"`
	} `json:"AccessControllerEvent"`
}

// AccessEvent is a decoded door-access event. DateTime stays raw until the
// owning company (and so its timezone) is known.
type AccessEvent struct {
	EmployeeID    string
	EmployeeName  string
	DateTime      string
	DeviceAddress string
	SubEventType  int
}

// ParseEventLog decodes the embedded event_log document.
func ParseEventLog(raw string) (AccessEvent, error) {
	var log hikEventLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return AccessEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if log.AccessControllerEvent == nil {
		return AccessEvent{}, fmt.Errorf("%w: no AccessControllerEvent", ErrMalformedEvent)
	}
	ace := log.AccessControllerEvent
	sub, err := ace.SubEventType.Int64()
	if err != nil {
		return AccessEvent{}, fmt.Errorf("%w: subEventType: %v", ErrMalformedEvent, err)
	}
	ev := AccessEvent{
		EmployeeID:    strings.TrimSpace(ace.EmployeeNoString),
		EmployeeName:  strings.TrimSpace(ace.Name),
		DateTime:      strings.TrimSpace(log.DateTime),
		DeviceAddress: strings.TrimSpace(log.IPAddress),
		SubEventType:  int(sub),
	}
	if ev.DeviceAddress == "" || ev.DateTime == "" {
		return AccessEvent{}, fmt.Errorf("%w: missing ipAddress or dateTime", ErrMalformedEvent)
	}
	return ev, nil
}

// DedupKey identifies a delivery of this event; re-deliveries share the key.
func (e AccessEvent) DedupKey() string {
	return e.DeviceAddress + "|" + e.EmployeeID + "|" + e.DateTime
}

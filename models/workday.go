package models

import "time"

// WorkdayState is an employee's workday status as seen by a backend.
type WorkdayState string

const (
	StateOpen    WorkdayState = "OPEN"
	StatePaused  WorkdayState = "PAUSED"
	StateClosed  WorkdayState = "CLOSED"
	StateUnknown WorkdayState = "UNKNOWN"
)

// EmployeeProfile is the part of the remote user profile the engine needs.
type EmployeeProfile struct {
	Name     string
	LastName string
	ChatID   string
}

// RemoteWorkdayStatus is the Status Resolver's answer. When Success is false,
// Status is StateUnknown and Error explains why.
type RemoteWorkdayStatus struct {
	Success   bool
	Status    WorkdayState
	Error     string
	TimeStart time.Time
	Profile   *EmployeeProfile
}

// TransitionKind names the transition the engine attempted.
type TransitionKind string

const (
	TransitionOpen  TransitionKind = "open"
	TransitionClose TransitionKind = "close"
)

// TransitionResult captures a transition attempt; failures are data, not errors.
type TransitionResult struct {
	Kind    TransitionKind
	Success bool
	// Transport is set when the remote could not be reached at all, as opposed
	// to answering with a failure.
	Transport bool
	Message   string
	Error     string
	Outcome   ApplyOutcome
}

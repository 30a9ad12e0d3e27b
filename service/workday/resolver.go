package workday

import (
	"context"
	"errors"
	"fmt"

	"hikvision-integration/models"
	"hikvision-integration/pkg/bitrix"
)

// RemoteClient is the part of the Bitrix client the workday service uses.
type RemoteClient interface {
	Status(ctx context.Context, webhook, userID string) (bitrix.WorkdayStatus, error)
	Open(ctx context.Context, webhook string, req bitrix.OpenRequest) (bitrix.WorkdayStatus, error)
	Close(ctx context.Context, webhook string, req bitrix.CloseRequest) (bitrix.WorkdayStatus, error)
	User(ctx context.Context, webhook, userID string) (bitrix.User, error)
	ActiveUsers(ctx context.Context, webhook string) ([]bitrix.User, error)
}

// MapStatus translates a timeman status. Anything unrecognized, EXPIRED
// included, is StateUnknown.
func MapStatus(s string) models.WorkdayState {
	switch s {
	case bitrix.StatusOpened:
		return models.StateOpen
	case bitrix.StatusPaused:
		return models.StatePaused
	case bitrix.StatusClosed:
		return models.StateClosed
	}
	return models.StateUnknown
}

// Resolver reads an employee's live workday status from Bitrix. It never
// returns an error; failures come back as an unsuccessful status.
type Resolver struct {
	client RemoteClient
}

func NewResolver(client RemoteClient) *Resolver {
	return &Resolver{client: client}
}

func failedStatus(err error) models.RemoteWorkdayStatus {
	return models.RemoteWorkdayStatus{Success: false, Status: models.StateUnknown, Error: err.Error()}
}

// Resolve queries timeman.status for employeeID. A result without a STATUS
// is a failure; an unrecognized one succeeds as StateUnknown.
func (r *Resolver) Resolve(ctx context.Context, webhook, employeeID string) models.RemoteWorkdayStatus {
	st, err := r.client.Status(ctx, webhook, employeeID)
	if err != nil {
		if errors.Is(err, bitrix.ErrNoResult) {
			return failedStatus(fmt.Errorf("workday status of %s not found", employeeID))
		}
		return failedStatus(err)
	}
	if st.Status == "" {
		return failedStatus(fmt.Errorf("workday status of %s is empty", employeeID))
	}
	return models.RemoteWorkdayStatus{
		Success:   true,
		Status:    MapStatus(st.Status),
		TimeStart: st.StartedAt(),
	}
}

// ResolveWithProfile adds the employee's profile to the status. A profile
// lookup failure leaves Profile nil and does not fail the status.
func (r *Resolver) ResolveWithProfile(ctx context.Context, company *models.Company, employeeID string) (models.RemoteWorkdayStatus, error) {
	st := r.Resolve(ctx, company.B24WebhookURL, employeeID)
	if !st.Success {
		return st, nil
	}
	user, err := r.client.User(ctx, company.B24WebhookURL, employeeID)
	if err != nil {
		return st, fmt.Errorf("profile of %s: %w", employeeID, err)
	}
	st.Profile = &models.EmployeeProfile{
		Name:     user.Name,
		LastName: user.LastName,
		ChatID:   user.Field(company.FieldTelegramID),
	}
	return st, nil
}

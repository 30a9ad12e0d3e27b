package bitrix

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Workday statuses reported by timeman.
const (
	StatusOpened  = "OPENED"
	StatusPaused  = "PAUSED"
	StatusClosed  = "CLOSED"
	StatusExpired = "EXPIRED"
)

// WorkdayStatus is the timeman result object. Timestamps are kept as sent
// (ATOM format, possibly empty).
type WorkdayStatus struct {
	Status     string `json:"STATUS"`
	TimeStart  string `json:"TIME_START"`
	TimeFinish string `json:"TIME_FINISH"`
	Duration   string `json:"DURATION"`
	TimeLeaks  string `json:"TIME_LEAKS"`
}

// StartedAt parses TimeStart; the zero time means no open timestamp.
func (s WorkdayStatus) StartedAt() time.Time {
	if s.TimeStart == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.TimeStart)
	if err != nil {
		return time.Time{}
	}
	return t
}

// OpenRequest opens or resumes a workday. Time and Report are sent only when
// Time is non-zero; a bare USER_ID resumes the existing day.
type OpenRequest struct {
	UserID string
	Time   time.Time
	Report string
}

func (r OpenRequest) payload() map[string]string {
	p := map[string]string{"USER_ID": r.UserID}
	if !r.Time.IsZero() {
		p["TIME"] = r.Time.Format(time.RFC3339)
		p["REPORT"] = r.Report
	}
	return p
}

type CloseRequest struct {
	UserID string
	Time   time.Time
	Report string
}

func (r CloseRequest) payload() map[string]string {
	return map[string]string{
		"USER_ID": r.UserID,
		"TIME":    r.Time.Format(time.RFC3339),
		"REPORT":  r.Report,
	}
}

func decodeStatus(method string, env *envelope) (WorkdayStatus, error) {
	var st WorkdayStatus
	if err := json.Unmarshal(env.Result, &st); err != nil {
		return WorkdayStatus{}, fmt.Errorf("%s: decode result: %w", method, err)
	}
	return st, nil
}

func (c *Client) Status(ctx context.Context, webhook, userID string) (WorkdayStatus, error) {
	env, err := c.get(ctx, webhook, "timeman.status", url.Values{"USER_ID": {userID}})
	if err != nil {
		return WorkdayStatus{}, err
	}
	return decodeStatus("timeman.status", env)
}

func (c *Client) Open(ctx context.Context, webhook string, req OpenRequest) (WorkdayStatus, error) {
	env, err := c.post(ctx, webhook, "timeman.open", req.payload())
	if err != nil {
		return WorkdayStatus{}, err
	}
	return decodeStatus("timeman.open", env)
}

func (c *Client) Close(ctx context.Context, webhook string, req CloseRequest) (WorkdayStatus, error) {
	env, err := c.post(ctx, webhook, "timeman.close", req.payload())
	if err != nil {
		return WorkdayStatus{}, err
	}
	return decodeStatus("timeman.close", env)
}

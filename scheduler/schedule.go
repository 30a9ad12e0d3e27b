// Package scheduler runs the per-company auto-close jobs.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/teambition/rrule-go"
)

var ErrEmptySchedule = errors.New("empty schedule expression")

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule reads a closing schedule in the company's timezone. Cron
// expressions take 5 or 6 fields (leading seconds) or a descriptor such as
// @daily. Anything starting with "RRULE:" or containing "FREQ=" is an RFC 5545
// recurrence rule.
func ParseSchedule(expr string, loc *time.Location) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptySchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	if isRRule(expr) {
		return parseRRule(expr, loc)
	}
	if !strings.HasPrefix(expr, "TZ=") && !strings.HasPrefix(expr, "CRON_TZ=") {
		expr = "CRON_TZ=" + loc.String() + " " + expr
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron schedule: %w", err)
	}
	return sched, nil
}

func isRRule(expr string) bool {
	upper := strings.ToUpper(expr)
	return strings.HasPrefix(upper, "RRULE:") || strings.Contains(upper, "FREQ=")
}

// rruleSchedule adapts a recurrence rule to cron.Schedule. A rule that has run
// out of occurrences returns the zero time, which cron treats as never.
type rruleSchedule struct {
	rule *rrule.RRule
}

func parseRRule(expr string, loc *time.Location) (cron.Schedule, error) {
	if len(expr) > 6 && strings.EqualFold(expr[:6], "RRULE:") {
		expr = expr[6:]
	}
	opt, err := rrule.StrToROptionInLocation(expr, loc)
	if err != nil {
		return nil, fmt.Errorf("parse recurrence rule: %w", err)
	}
	if opt.Dtstart.IsZero() {
		now := time.Now().In(loc)
		opt.Dtstart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	}
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("build recurrence rule: %w", err)
	}
	return rruleSchedule{rule: rule}, nil
}

func (s rruleSchedule) Next(t time.Time) time.Time {
	return s.rule.After(t, false)
}

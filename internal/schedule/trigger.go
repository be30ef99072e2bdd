// Package schedule derives cron triggers from domain schedule configs and
// fires them from a background scheduler.
package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/millrace/flume/pkg/config"
)

// cronWeekdays maps schedule weekday names onto standard cron numbering,
// where sunday is 0.
var cronWeekdays = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
	"sunday":    0,
}

// Trigger is a parsed five-field cron schedule.
type Trigger struct {
	// Expr is the normalized five-field expression the trigger was built
	// from, kept for logs and the jobs listing.
	Expr string

	schedule cron.Schedule
}

// Next returns the first fire time strictly after the given instant.
func (t *Trigger) Next(after time.Time) time.Time {
	return t.schedule.Next(after)
}

// BuildTrigger derives the cron trigger for one domain. It returns nil
// without error when the domain does not exist, its schedule is disabled, or
// the schedule carries neither a cron expression nor a recognized interval;
// such domains are simply not schedulable. An explicit cron expression takes
// precedence over the interval fields. Interval schedules are lowered to the
// equivalent five-field expression and parsed through the same parser, so
// both paths agree on fire times.
func BuildTrigger(cfg *config.Global, domainID string, logger *slog.Logger) (*Trigger, error) {
	domain, ok := cfg.Domains[domainID]
	if !ok || !domain.Schedule.Enabled {
		return nil, nil
	}
	sched := domain.Schedule

	if sched.Cron != "" {
		return parseTrigger(sched.Cron)
	}

	switch sched.Interval {
	case config.IntervalDaily:
		return parseTrigger(fmt.Sprintf("%d %d * * *", sched.Minute, sched.Hour))
	case config.IntervalWeekly:
		day, ok := cronWeekdays[strings.ToLower(sched.DayOfWeek)]
		if !ok {
			logger.Warn("unrecognized day_of_week, falling back to monday",
				"domain", domainID, "day_of_week", sched.DayOfWeek)
			day = cronWeekdays["monday"]
		}
		return parseTrigger(fmt.Sprintf("%d %d * * %d", sched.Minute, sched.Hour, day))
	case config.IntervalMonthly:
		return parseTrigger(fmt.Sprintf("%d %d %d * *", sched.Minute, sched.Hour, sched.DayOfMonth))
	}
	return nil, nil
}

func parseTrigger(expr string) (*Trigger, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return &Trigger{Expr: expr, schedule: schedule}, nil
}

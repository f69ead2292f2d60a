// Package schedule provides the cron-schedule side of a service's "every"
// filter: EVERY_CRON and EVERY_NOTINCRON spec strings are standard five-field
// cron expressions, matched against the current minute the way the original
// calls crontab_match().
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// parser accepts the traditional five-field form (minute hour dom month
// dow), the same fields crontab_match() compares -- no seconds field and
// no predefined @every/@daily macros, since the original doesn't have them
// either.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Matcher implements validate.CronMatcher, caching parsed schedules by
// spec string since the same spec is matched every cycle for the
// lifetime of the service.
type Matcher struct {
	mu    sync.Mutex
	cache map[string]cron.Schedule
}

func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]cron.Schedule)}
}

func (m *Matcher) Matches(spec string, t time.Time) (bool, error) {
	sched, err := m.schedule(spec)
	if err != nil {
		return false, err
	}
	// A cron.Schedule only answers "when is the next run after t", so to
	// test "does t itself fall in the schedule" we truncate to the start
	// of t's minute and ask whether Next of the preceding instant lands
	// exactly there.
	minuteStart := t.Truncate(time.Minute)
	next := sched.Next(minuteStart.Add(-time.Second))
	return next.Equal(minuteStart), nil
}

func (m *Matcher) schedule(spec string) (cron.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sched, ok := m.cache[spec]; ok {
		return sched, nil
	}
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	m.cache[spec] = sched
	return sched, nil
}

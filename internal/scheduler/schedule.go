package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
)

// fixedInterval fires every interval measured from the previous activation.
// cron.Every rounds to whole seconds, intervals here are configured in ms.
type fixedInterval struct {
	interval time.Duration
}

var _ cron.Schedule = fixedInterval{}

func (f fixedInterval) Next(t time.Time) time.Time {
	return t.Add(f.interval)
}

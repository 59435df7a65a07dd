package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// NextRunLayout is the display format of computed next run labels.
const NextRunLayout = "2006-01-02 15:04"

// ErrInvalidSchedule is returned when a cron expression cannot be parsed.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextRunAfter returns the first activation of the standard 5-field cron
// expression strictly after from.
func NextRunAfter(cronExpression string, from time.Time) (time.Time, error) {
	if cronExpression == "" {
		return time.Time{}, ErrInvalidSchedule
	}

	schedule, err := scheduleParser.Parse(cronExpression)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidSchedule, err)
	}

	return schedule.Next(from), nil
}

// NextRunLabel formats the next activation of cronExpression for display.
func NextRunLabel(cronExpression string, from time.Time) (string, error) {
	next, err := NextRunAfter(cronExpression, from)
	if err != nil {
		return "", err
	}

	return next.Format(NextRunLayout), nil
}

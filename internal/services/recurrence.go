package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var weekdays = map[string]string{
	"monday":    "MON",
	"tuesday":   "TUE",
	"wednesday": "WED",
	"thursday":  "THU",
	"friday":    "FRI",
	"saturday":  "SAT",
	"sunday":    "SUN",
}

var recurrenceParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// recurrenceSpec converts a journal recurrence pattern ("daily", "weekly",
// "every monday", ...) into a cron expression anchored at the given hour.
// Unknown patterns return false.
func recurrenceSpec(pattern string, hour int) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(pattern)) {
	case "daily":
		return fmt.Sprintf("0 %d * * *", hour), true
	case "weekly":
		return fmt.Sprintf("0 %d * * MON", hour), true
	case "monthly":
		return fmt.Sprintf("0 %d 1 * *", hour), true
	case "annually":
		return fmt.Sprintf("0 %d 1 1 *", hour), true
	}

	if day, ok := strings.CutPrefix(strings.ToLower(pattern), "every "); ok {
		if dow, known := weekdays[strings.TrimSpace(day)]; known {
			return fmt.Sprintf("0 %d * * %s", hour, dow), true
		}
		if strings.TrimSpace(day) == "day" {
			return fmt.Sprintf("0 %d * * *", hour), true
		}
	}

	return "", false
}

// NextOccurrence computes when a recurrence pattern fires next after the
// given instant, anchored at hour (typically the morning-insight hour). The
// second return is false for patterns with no derivable schedule.
func NextOccurrence(pattern string, after time.Time, hour int) (time.Time, bool) {
	spec, ok := recurrenceSpec(pattern, hour)
	if !ok {
		return time.Time{}, false
	}

	schedule, err := recurrenceParser.Parse(spec)
	if err != nil {
		return time.Time{}, false
	}

	return schedule.Next(after), true
}

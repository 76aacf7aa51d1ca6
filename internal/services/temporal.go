package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativeAmountRe = regexp.MustCompile(`in (\d+) (day|days|hour|hours|week|weeks|month|months)`)
	clockTimeRe      = regexp.MustCompile(`at (\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	tagRe            = regexp.MustCompile(`#\w+`)
	everyWordRe      = regexp.MustCompile(`every (\w+)`)

	locationRes = []*regexp.Regexp{
		regexp.MustCompile(`in (\w+(?:\s+\w+)*)`),
		regexp.MustCompile(`for (\w+(?:\s+\w+)*)`),
		regexp.MustCompile(`at (\w+(?:\s+\w+)*)`),
	}

	// Words the location heuristic must never treat as a place.
	locationStopWords = map[string]bool{
		"today": true, "tomorrow": true, "now": true,
		"me": true, "us": true, "here": true,
	}
)

// ParseDueDate extracts an absolute due instant from free text, relative to
// now. Recognized phrases: today, tomorrow, day after tomorrow, next week and
// "in N days/hours/weeks/months" (a month is a fixed 30 days). A clock time
// matching "at H[:MM][am|pm]" overrides the time-of-day. No match returns nil;
// that is not an error.
func ParseDueDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(text)

	var due time.Time
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		due = now.AddDate(0, 0, 2)
	case strings.Contains(lower, "tomorrow"):
		due = now.AddDate(0, 0, 1)
	case strings.Contains(lower, "today"):
		due = now
	case strings.Contains(lower, "next week"):
		due = now.AddDate(0, 0, 7)
	case strings.Contains(lower, "in "):
		m := relativeAmountRe.FindStringSubmatch(lower)
		if m == nil {
			return nil
		}
		amount, _ := strconv.Atoi(m[1])
		switch {
		case strings.HasPrefix(m[2], "day"):
			due = now.AddDate(0, 0, amount)
		case strings.HasPrefix(m[2], "hour"):
			due = now.Add(time.Duration(amount) * time.Hour)
		case strings.HasPrefix(m[2], "week"):
			due = now.AddDate(0, 0, 7*amount)
		case strings.HasPrefix(m[2], "month"):
			due = now.AddDate(0, 0, 30*amount)
		}
	default:
		return nil
	}

	if m := clockTimeRe.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		switch m[3] {
		case "pm":
			if hour != 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		if hour < 24 && minute < 60 {
			due = time.Date(due.Year(), due.Month(), due.Day(), hour, minute, 0, 0, due.Location())
		}
	}

	return &due
}

// ExtractRecurring returns the recurrence pattern in the text: one of the
// literal patterns daily/weekly/monthly/annually, else "every <word>", else
// the empty string.
func ExtractRecurring(text string) string {
	lower := strings.ToLower(text)

	for _, pattern := range []string{"daily", "weekly", "monthly", "annually"} {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}

	if m := everyWordRe.FindStringSubmatch(lower); m != nil {
		return fmt.Sprintf("every %s", m[1])
	}

	return ""
}

// ExtractLocation pulls a location hint out of a weather query. Best-effort:
// "in|for|at <words>" with a small stoplist against the obvious false
// positives. Not a correctness-critical path.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)

	for _, re := range locationRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		location := strings.TrimSpace(m[1])
		if !locationStopWords[location] {
			return location
		}
	}

	return ""
}

// ExtractTags returns every #token in order of first appearance. Duplicates
// are preserved.
func ExtractTags(text string) []string {
	return tagRe.FindAllString(text, -1)
}

package services

import (
	"strings"

	"nova/internal/models"
)

// classificationRule pairs a category with its trigger keywords. Rules are
// evaluated in slice order, first match wins, so the slice order IS the
// priority order: recurrence markers and information-seeking phrasing must win
// over the generic task/reminder verbs that would otherwise also match
// ("remind me every day" is a recurring_reminder, not a reminder).
type classificationRule struct {
	category models.Category
	keywords []string
}

var classificationRules = []classificationRule{
	{models.CategoryRecurringReminder, []string{
		"every", "daily", "weekly", "monthly", "annually", "each day", "each week",
		"each month", "each year", "repeat", "recur", "recurring",
	}},
	{models.CategoryKnowledgeQuery, []string{
		"what is", "who is", "tell me about", "explain", "define", "how does",
		"when did", "where is", "why does", "search for", "look up", "find information",
		"wikipedia:", "wiki:", "search wikipedia", "look up on wikipedia",
	}},
	{models.CategoryWeather, []string{
		"weather", "temperature", "forecast", "rain", "sunny", "cloudy", "storm",
		"hot", "cold", "climate", "humidity", "wind",
	}},
	{models.CategoryNews, []string{
		"news", "headlines", "current events", "what's happening", "latest news",
		"breaking news", "today's news", "recent news",
	}},
	{models.CategoryTask, []string{
		"do", "complete", "make", "build", "create", "finish", "setup", "develop",
		"design", "get done", "finish up", "carry out", "execute", "work on",
		"resolve", "fix", "implement", "write", "code", "plan", "organize",
	}},
	{models.CategoryIdea, []string{
		"idea", "think", "concept", "invention", "vision", "plan", "brainstorm",
		"imagine", "suggestion", "proposal", "possibility", "consider", "dream",
	}},
	{models.CategoryReminder, []string{
		"remind", "remember", "note", "don't forget", "ping me", "set a reminder",
		"alert me", "notify me", "alarm", "prompt me",
	}},
	{models.CategoryNote, []string{
		"note", "log", "write down", "record", "jot down", "memo", "capture",
		"document", "save this",
	}},
}

// Classify maps raw message text to exactly one category. Matching is
// case-insensitive substring containment, not word-boundary matching, so a
// keyword inside a larger word still counts (known imprecision, kept simple
// on purpose).
func Classify(text string) models.Category {
	lower := strings.ToLower(text)

	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}

	return models.CategoryUncategorized
}

// WikiQuery reports whether the message carries the explicit wikipedia:/wiki:
// prefix that bypasses classification, and returns the query remainder.
func WikiQuery(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, prefix := range []string{"wikipedia:", "wiki:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):]), true
		}
	}
	return "", false
}

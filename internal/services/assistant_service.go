package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"nova/internal/memory"
	"nova/internal/models"
)

const helpText = `I'm your personal assistant. Here's what I can do:

📋 Capture: tasks ("finish the report by tomorrow"), ideas ("idea: solar powered bike"),
   reminders ("remind me to call mom tomorrow at 5pm"), recurring reminders
   ("water the plants every monday") and notes ("note: wifi password is hunter2").
   Add #tags anywhere to organize entries.

🔍 Look things up: "what is quantum physics", "wiki: Alan Turing",
   "weather in Paris", "latest news".

🧠 Memory commands: "show memory", "show category:task", "show #work",
   "clear memory".

Say "help" anytime to see this again.`

// AssistantService is the message dispatcher: it classifies each message and
// routes it to a meta command, an external lookup, or a journal write. It is
// safe for concurrent use; the journal and API service carry their own locks.
type AssistantService struct {
	journal *memory.Journal
	api     *APIService

	prefsMu sync.RWMutex
	prefs   models.Preferences
}

// NewAssistantService wires the dispatcher to its collaborators.
func NewAssistantService(journal *memory.Journal, api *APIService, prefs models.Preferences) *AssistantService {
	return &AssistantService{journal: journal, api: api, prefs: prefs}
}

// SetPreferences swaps in reloaded preferences.
func (a *AssistantService) SetPreferences(prefs models.Preferences) {
	a.prefsMu.Lock()
	a.prefs = prefs
	a.prefsMu.Unlock()
}

func (a *AssistantService) preferences() models.Preferences {
	a.prefsMu.RLock()
	defer a.prefsMu.RUnlock()
	return a.prefs
}

// ProcessMessage handles one user message end to end and always returns a
// well-formed response: unexpected panics in any downstream path degrade to a
// generic error reply instead of killing the request.
func (a *AssistantService) ProcessMessage(ctx context.Context, text string) (resp models.ChatResponse) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🚨 [ASSISTANT] Recovered from panic while processing message: %v", r)
			resp = models.NewErrorResponse("Something went wrong while processing that. Please try again.")
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.NewErrorResponse("I didn't catch that. Please say something!")
	}

	if query, ok := WikiQuery(trimmed); ok {
		return a.handleKnowledge(ctx, query)
	}

	if resp, handled := a.handleCommand(trimmed); handled {
		return resp
	}

	category := Classify(trimmed)
	if m := GetMetrics(); m != nil {
		m.RecordMessage(string(category))
	}

	if !category.IsLookup() {
		return a.handleJournalWrite(category, trimmed)
	}

	switch category {
	case models.CategoryKnowledgeQuery:
		return a.handleKnowledge(ctx, trimmed)
	case models.CategoryWeather:
		return a.handleWeather(ctx, trimmed)
	default:
		return a.handleNews(ctx)
	}
}

// handleCommand intercepts the meta commands that operate on the assistant
// itself rather than flowing through classification.
func (a *AssistantService) handleCommand(text string) (models.ChatResponse, bool) {
	lower := strings.ToLower(text)

	switch lower {
	case "help", "?":
		return models.NewHelpResponse(helpText), true
	case "clear memory":
		a.journal.Clear()
		return models.NewSystemResponse("🧹 Memory cleared. Starting fresh!"), true
	}

	if !strings.HasPrefix(lower, "show ") {
		return models.ChatResponse{}, false
	}

	arg := strings.TrimSpace(lower[len("show "):])
	switch {
	case arg == "memory":
		entries := a.journal.All(20)
		if len(entries) == 0 {
			return models.NewMemoryResponse("Memory is empty. Tell me something to remember!", nil, ""), true
		}
		_, recent := a.journal.Stats()
		return models.NewMemoryResponse(fmt.Sprintf("Here's what I remember (%d most recent):", len(entries)), entries, recent), true

	case strings.HasPrefix(arg, "category:"):
		name := strings.TrimSpace(arg[len("category:"):])
		category := models.Category(name)
		valid := false
		for _, c := range models.Categories {
			if c == category {
				valid = true
				break
			}
		}
		if !valid {
			return models.NewErrorResponse(fmt.Sprintf("Unknown category '%s'. Try one of: task, idea, reminder, note, recurring_reminder.", name)), true
		}
		entries := a.journal.ByCategory(category, 10)
		if len(entries) == 0 {
			return models.NewMemoryResponse(fmt.Sprintf("No entries in category '%s' yet.", name), nil, ""), true
		}
		return models.NewMemoryResponse(fmt.Sprintf("Entries in category '%s':", name), entries, ""), true

	case strings.HasPrefix(arg, "#"):
		entries := a.journal.ByTags([]string{arg}, 10)
		if len(entries) == 0 {
			return models.NewMemoryResponse(fmt.Sprintf("No entries tagged %s yet.", arg), nil, ""), true
		}
		return models.NewMemoryResponse(fmt.Sprintf("Entries tagged %s:", arg), entries, ""), true

	default:
		return models.NewErrorResponse("I don't know that show command. Try 'show memory', 'show category:task' or 'show #tag'."), true
	}
}

func (a *AssistantService) handleKnowledge(ctx context.Context, query string) models.ChatResponse {
	if strings.TrimSpace(query) == "" {
		return models.NewErrorResponse("What would you like me to look up?")
	}

	result, err := a.api.SearchWikipedia(ctx, query)
	if err != nil {
		return models.NewErrorResponse("I couldn't reach Wikipedia right now. Please try again later.")
	}

	// Keep an audit trail of what was asked, so "show memory" reflects
	// lookups too. The note records the user's question, not the article
	// Wikipedia resolved it to.
	a.journal.Append(models.CategoryNote, "Asked about: "+query, nil, nil, "")

	return models.NewKnowledgeResponse(result)
}

func (a *AssistantService) handleWeather(ctx context.Context, text string) models.ChatResponse {
	location := ExtractLocation(text)
	if location == "" {
		location = a.preferences().WeatherLocation
	}

	report, err := a.api.GetWeather(ctx, location)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return models.NewErrorResponse("Weather lookups aren't configured yet. Set an OpenWeatherMap API key to enable them.")
	case err != nil:
		return models.NewErrorResponse("The weather service isn't responding right now. Please try again later.")
	}

	summary := fmt.Sprintf("Weather in %s: %d°C, %s. Humidity %d%%, wind %.1f m/s.",
		report.Location, report.Temperature, report.Description, report.Humidity, report.WindSpeed)
	return models.NewWeatherResponse(summary, report)
}

func (a *AssistantService) handleNews(ctx context.Context) models.ChatResponse {
	prefs := a.preferences()
	topic := ""
	if len(prefs.PreferredTopics) > 0 {
		topic = prefs.PreferredTopics[0]
	}

	articles, err := a.api.GetNews(ctx, prefs.NewsCountry, topic)
	switch {
	case errors.Is(err, ErrNotConfigured):
		return models.NewErrorResponse("News lookups aren't configured yet. Set a NewsAPI key to enable them.")
	case err != nil:
		return models.NewErrorResponse("The news service isn't responding right now. Please try again later.")
	}

	if len(articles) == 0 {
		return models.NewNewsResponse("No headlines available right now.", nil)
	}
	return models.NewNewsResponse(fmt.Sprintf("Here are the latest headlines (%d):", len(articles)), articles)
}

// handleJournalWrite enriches the message with temporal metadata and persists
// it, replying with a category-specific confirmation. Tags, due date and
// recurrence are extracted for every entry regardless of category; an idea
// jotted down with "tomorrow" keeps its date.
func (a *AssistantService) handleJournalWrite(category models.Category, text string) models.ChatResponse {
	now := time.Now()
	tags := ExtractTags(text)
	dueDate := ParseDueDate(text, now)
	recurring := ExtractRecurring(text)

	a.journal.Append(category, text, tags, dueDate, recurring)

	return models.NewSuccessResponse(confirmation(category, text, dueDate, recurring), category, tags, dueDate)
}

func confirmation(category models.Category, text string, dueDate *time.Time, recurring string) string {
	var msg string
	switch category {
	case models.CategoryTask:
		msg = "✓ Task logged: " + text
		if dueDate != nil {
			msg += fmt.Sprintf(" (Due: %s)", dueDate.Format("Monday, January 2 at 3:04 PM"))
		}
	case models.CategoryReminder:
		msg = "🔔 Reminder set: " + text
		if dueDate != nil {
			msg += fmt.Sprintf(" (On: %s)", dueDate.Format("Monday, January 2 at 3:04 PM"))
		}
	case models.CategoryIdea:
		msg = "💡 Idea captured: " + text
	case models.CategoryNote:
		msg = "📝 Note saved: " + text
	case models.CategoryRecurringReminder:
		msg = "🔄 Recurring reminder set: " + text
		if recurring != "" {
			msg += fmt.Sprintf(" (Repeats: %s)", recurring)
		}
	default:
		msg = "📋 Logged: " + text
	}
	return msg
}

// MemoryStats summarizes the journal for the stats endpoint.
func (a *AssistantService) MemoryStats() map[string]interface{} {
	counts, recent := a.journal.Stats()

	byCategory := make(map[string]int, len(counts))
	for category, n := range counts {
		byCategory[string(category)] = n
	}

	return map[string]interface{}{
		"total_entries":   a.journal.Count(),
		"by_category":     byCategory,
		"recent_activity": recent,
		"api_status":      a.api.Status(),
	}
}

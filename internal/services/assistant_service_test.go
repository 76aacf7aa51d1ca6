package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"nova/internal/cache"
	"nova/internal/memory"
	"nova/internal/models"
)

func newTestAssistant(t *testing.T, apiCfg APIConfig) (*AssistantService, *memory.Journal) {
	t.Helper()
	dir := t.TempDir()
	journal := memory.NewJournal(filepath.Join(dir, "journal.json"))
	api := NewAPIService(apiCfg, cache.New(filepath.Join(dir, "cache.json")))
	return NewAssistantService(journal, api, models.DefaultPreferences()), journal
}

func TestProcessMessageEmpty(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "   ")
	if resp.Type != models.ResponseError {
		t.Errorf("Expected error type for empty message, got %s", resp.Type)
	}
}

func TestProcessMessageTaskWithDueDate(t *testing.T) {
	svc, journal := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "finish the report tomorrow #work")
	if resp.Type != models.ResponseSuccess {
		t.Fatalf("Expected success, got %s (%s)", resp.Type, resp.Response)
	}
	if resp.Category != models.CategoryTask {
		t.Errorf("Expected task category, got %s", resp.Category)
	}
	if resp.DueDate == nil {
		t.Error("Expected a due date for 'tomorrow'")
	}
	if len(resp.Tags) != 1 || resp.Tags[0] != "#work" {
		t.Errorf("Expected #work tag, got %v", resp.Tags)
	}
	if !strings.HasPrefix(resp.Response, "✓ Task logged:") {
		t.Errorf("Unexpected confirmation: %q", resp.Response)
	}
	if journal.Count() != 1 {
		t.Errorf("Expected 1 journal entry, got %d", journal.Count())
	}
}

func TestProcessMessageRecurringReminder(t *testing.T) {
	svc, journal := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "water the plants every monday")
	if resp.Category != models.CategoryRecurringReminder {
		t.Fatalf("Expected recurring_reminder, got %s", resp.Category)
	}
	if !strings.Contains(resp.Response, "Repeats: every monday") {
		t.Errorf("Expected recurrence in confirmation, got %q", resp.Response)
	}

	entries := journal.Entries()
	if len(entries) != 1 || entries[0].Recurring != "every monday" {
		t.Errorf("Expected persisted recurrence pattern, got %+v", entries)
	}
}

func TestProcessMessageUncategorized(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "hmm banana")
	if resp.Category != models.CategoryUncategorized {
		t.Errorf("Expected uncategorized, got %s", resp.Category)
	}
	if !strings.HasPrefix(resp.Response, "📋 Logged:") {
		t.Errorf("Unexpected confirmation: %q", resp.Response)
	}
}

func TestProcessMessageHelp(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "help")
	if resp.Type != models.ResponseHelp {
		t.Errorf("Expected help type, got %s", resp.Type)
	}
}

func TestProcessMessageClearMemory(t *testing.T) {
	svc, journal := newTestAssistant(t, APIConfig{})
	svc.ProcessMessage(context.Background(), "finish the report")

	resp := svc.ProcessMessage(context.Background(), "clear memory")
	if resp.Type != models.ResponseSystem {
		t.Errorf("Expected system type, got %s", resp.Type)
	}
	if journal.Count() != 0 {
		t.Errorf("Expected empty journal after clear, got %d entries", journal.Count())
	}
}

func TestShowMemoryCommands(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{})
	svc.ProcessMessage(context.Background(), "finish the report #work")
	svc.ProcessMessage(context.Background(), "idea: solar powered bike")

	resp := svc.ProcessMessage(context.Background(), "show memory")
	if resp.Type != models.ResponseMemory {
		t.Fatalf("Expected memory type, got %s", resp.Type)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(resp.Entries))
	}

	resp = svc.ProcessMessage(context.Background(), "show category:idea")
	if len(resp.Entries) != 1 || resp.Entries[0].Category != models.CategoryIdea {
		t.Errorf("Expected one idea entry, got %+v", resp.Entries)
	}

	resp = svc.ProcessMessage(context.Background(), "show #work")
	if len(resp.Entries) != 1 {
		t.Errorf("Expected one tagged entry, got %d", len(resp.Entries))
	}

	resp = svc.ProcessMessage(context.Background(), "show category:nonsense")
	if resp.Type != models.ResponseError {
		t.Errorf("Expected error for unknown category, got %s", resp.Type)
	}

	resp = svc.ProcessMessage(context.Background(), "show everything")
	if resp.Type != models.ResponseError {
		t.Errorf("Expected error for unknown show command, got %s", resp.Type)
	}
}

func TestShowMemoryEmpty(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "show memory")
	if resp.Type != models.ResponseMemory {
		t.Errorf("Expected memory type even when empty, got %s", resp.Type)
	}
	if len(resp.Entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(resp.Entries))
	}
}

func TestProcessMessageKnowledgeLookup(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title": "Go (programming language)", "extract": "Go is a statically typed language.", "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Go"}}}`))
	}))
	defer upstream.Close()

	svc, journal := newTestAssistant(t, APIConfig{WikipediaBaseURL: upstream.URL})

	resp := svc.ProcessMessage(context.Background(), "wiki: golang")
	if resp.Type != models.ResponseKnowledge {
		t.Fatalf("Expected knowledge type, got %s (%s)", resp.Type, resp.Response)
	}
	if resp.Title != "Go (programming language)" {
		t.Errorf("Unexpected title: %q", resp.Title)
	}

	// The lookup leaves an audit note recording the user's question, not
	// the article title Wikipedia resolved it to.
	notes := journal.ByCategory(models.CategoryNote, 0)
	if len(notes) != 1 || notes[0].Text != "Asked about: golang" {
		t.Errorf("Expected audit note 'Asked about: golang', got %+v", notes)
	}
}

func TestProcessMessageIdeaKeepsDueDate(t *testing.T) {
	svc, journal := newTestAssistant(t, APIConfig{})

	resp := svc.ProcessMessage(context.Background(), "idea: pitch the concept tomorrow")
	if resp.Category != models.CategoryIdea {
		t.Fatalf("Expected idea category, got %s", resp.Category)
	}
	if resp.DueDate == nil {
		t.Error("Expected 'tomorrow' to set a due date on the idea")
	}

	entries := journal.Entries()
	if len(entries) != 1 || entries[0].DueDate == nil {
		t.Errorf("Expected persisted due date on the idea entry, got %+v", entries)
	}
}

func TestProcessMessageNewsUsesPreferredTopic(t *testing.T) {
	var gotCategory string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCategory = r.URL.Query().Get("category")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles": [{"title": "Chips", "url": "http://a/1", "source": {"name": "Feed"}}]}`))
	}))
	defer upstream.Close()

	svc, _ := newTestAssistant(t, APIConfig{NewsAPIKey: "k", NewsBaseURL: upstream.URL})

	resp := svc.ProcessMessage(context.Background(), "latest news")
	if resp.Type != models.ResponseNews {
		t.Fatalf("Expected news type, got %s (%s)", resp.Type, resp.Response)
	}
	// Default preferences put technology first.
	if gotCategory != "technology" {
		t.Errorf("Expected preferred topic technology, got %q", gotCategory)
	}
}

func TestProcessMessageWeatherNotConfigured(t *testing.T) {
	svc, _ := newTestAssistant(t, APIConfig{WeatherBaseURL: "http://127.0.0.1:1"})

	resp := svc.ProcessMessage(context.Background(), "what's the weather in Paris")
	if resp.Type != models.ResponseError {
		t.Errorf("Expected graceful error without a key, got %s", resp.Type)
	}
	if !strings.Contains(resp.Response, "configured") {
		t.Errorf("Degraded reply should mention configuration, got %q", resp.Response)
	}
}

func TestProcessMessageWeatherUsesDefaultLocation(t *testing.T) {
	var gotLocation string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "New York", "main": {"temp": 20, "humidity": 40}, "weather": [{"description": "clear sky"}], "wind": {"speed": 1}, "sys": {"country": "US"}}`))
	}))
	defer upstream.Close()

	svc, _ := newTestAssistant(t, APIConfig{WeatherAPIKey: "k", WeatherBaseURL: upstream.URL})

	resp := svc.ProcessMessage(context.Background(), "how's the weather")
	if resp.Type != models.ResponseWeather {
		t.Fatalf("Expected weather type, got %s (%s)", resp.Type, resp.Response)
	}
	if gotLocation != "New York" {
		t.Errorf("Expected default location New York, got %q", gotLocation)
	}
}

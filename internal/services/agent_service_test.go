package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nova/internal/cache"
	"nova/internal/config"
	"nova/internal/memory"
	"nova/internal/models"
)

func newTestAgent(t *testing.T) (*AgentService, *memory.Journal) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		AgentStatePath:     filepath.Join(dir, "agent_state.json"),
		LookupTimeout:      time.Second,
		AgentWakeInterval:  10 * time.Millisecond,
		AgentCheckInterval: time.Millisecond,
		AgentErrorBackoff:  time.Millisecond,
		AgentStopTimeout:   time.Second,
	}
	journal := memory.NewJournal(filepath.Join(dir, "journal.json"))
	api := NewAPIService(APIConfig{
		WeatherBaseURL:   "http://127.0.0.1:1",
		NewsBaseURL:      "http://127.0.0.1:1",
		WikipediaBaseURL: "http://127.0.0.1:1",
	}, cache.New(filepath.Join(dir, "cache.json")))

	return NewAgentService(journal, api, cfg, models.DefaultPreferences()), journal
}

func TestAddPendingActionDedup(t *testing.T) {
	agent, _ := newTestAgent(t)

	added := agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "You have 1 overdue item(s): call mom",
		Priority:    8,
	})
	if !added {
		t.Fatal("First add must succeed")
	}

	added = agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "You have 1 overdue item(s): call mom",
		Priority:    8,
	})
	if added {
		t.Error("Duplicate (type, description) must be rejected")
	}
	if agent.PendingCount() != 1 {
		t.Errorf("Expected 1 pending action, got %d", agent.PendingCount())
	}

	action := agent.PendingActions()[0]
	if action.ActionID == "" {
		t.Error("Queued actions must get an ID")
	}
	if !action.RequiresApproval {
		t.Error("Queued actions must require approval")
	}
}

func TestCheckOverdueItemsQueuesNotification(t *testing.T) {
	agent, journal := newTestAgent(t)

	past := time.Now().Add(-2 * time.Hour)
	journal.Append(models.CategoryTask, "call mom", nil, &past, "")
	journal.Append(models.CategoryNote, "wifi password", nil, nil, "")

	agent.checkOverdueItems(time.Now())

	actions := agent.PendingActions()
	if len(actions) != 1 {
		t.Fatalf("Expected 1 queued action, got %d", len(actions))
	}
	if actions[0].Priority != 8 {
		t.Errorf("Overdue notifications carry priority 8, got %d", actions[0].Priority)
	}
	if !strings.Contains(actions[0].Description, "call mom") {
		t.Errorf("Expected overdue text in description, got %q", actions[0].Description)
	}

	// A second scan must not duplicate the notification.
	agent.checkOverdueItems(time.Now())
	if agent.PendingCount() != 1 {
		t.Errorf("Repeated scans must dedupe, got %d pending", agent.PendingCount())
	}
}

func TestMorningInsightOncePerDay(t *testing.T) {
	agent, journal := newTestAgent(t)

	today := time.Now()
	due := time.Date(today.Year(), today.Month(), today.Day(), 15, 0, 0, 0, time.Local)
	journal.Append(models.CategoryTask, "finish the report", nil, &due, "")

	at := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, time.Local)
	agent.checkMorningInsight(at)

	insights := agent.RecentInsights(10)
	if len(insights) != 1 {
		t.Fatalf("Expected 1 insight, got %d", len(insights))
	}
	if !strings.Contains(insights[0].Description, "1 task(s) due today") {
		t.Errorf("Expected workload in insight, got %q", insights[0].Description)
	}

	agent.checkMorningInsight(at.Add(time.Hour))
	if len(agent.RecentInsights(10)) != 1 {
		t.Error("Morning insight must fire at most once per day")
	}
}

func TestMorningInsightBeforeHour(t *testing.T) {
	agent, _ := newTestAgent(t)

	today := time.Now()
	at := time.Date(today.Year(), today.Month(), today.Day(), 5, 0, 0, 0, time.Local)
	agent.checkMorningInsight(at)

	if len(agent.RecentInsights(10)) != 0 {
		t.Error("No insight before the configured morning hour")
	}
}

func TestBriefingSuggestionWindow(t *testing.T) {
	agent, _ := newTestAgent(t)

	today := time.Now()
	inWindow := time.Date(today.Year(), today.Month(), today.Day(), 9, 2, 0, 0, time.Local)
	agent.checkBriefingSuggestion(inWindow)
	if agent.PendingCount() != 1 {
		t.Fatalf("Expected a briefing suggestion at 09:02, got %d pending", agent.PendingCount())
	}

	agent2, _ := newTestAgent(t)
	outOfWindow := time.Date(today.Year(), today.Month(), today.Day(), 9, 30, 0, 0, time.Local)
	agent2.checkBriefingSuggestion(outOfWindow)
	if agent2.PendingCount() != 0 {
		t.Error("No briefing suggestion outside the first 5 minutes of the hour")
	}
}

func TestExecuteActionUnknownID(t *testing.T) {
	agent, _ := newTestAgent(t)
	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "something",
		Priority:    5,
	})

	if _, err := agent.ExecuteAction(context.Background(), "nope"); err == nil {
		t.Fatal("Unknown action IDs must error")
	}
	if agent.PendingCount() != 1 {
		t.Error("Failed execution must leave the pending set untouched")
	}
}

func TestExecuteActionMovesToCompleted(t *testing.T) {
	agent, _ := newTestAgent(t)
	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "overdue summary",
		Priority:    8,
	})

	id := agent.PendingActions()[0].ActionID
	result, err := agent.ExecuteAction(context.Background(), id)
	if err != nil {
		t.Fatalf("ExecuteAction failed: %v", err)
	}
	if result.Type != models.ResponseSystem {
		t.Errorf("Notifications acknowledge with a system response, got %s", result.Type)
	}
	if agent.PendingCount() != 0 {
		t.Errorf("Expected empty pending set, got %d", agent.PendingCount())
	}

	// Re-execution of the same ID must fail.
	if _, err := agent.ExecuteAction(context.Background(), id); err == nil {
		t.Error("Executed actions must not be executable twice")
	}
}

func TestExecuteBriefingSuggestion(t *testing.T) {
	agent, journal := newTestAgent(t)

	today := time.Now()
	due := time.Date(today.Year(), today.Month(), today.Day(), 16, 0, 0, 0, time.Local)
	journal.Append(models.CategoryTask, "ship the release", nil, &due, "")

	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionSuggestion,
		Description: "Would you like your daily briefing?",
		Parameters:  map[string]interface{}{"suggestion": "daily_briefing"},
		Priority:    6,
	})

	id := agent.PendingActions()[0].ActionID
	result, err := agent.ExecuteAction(context.Background(), id)
	if err != nil {
		t.Fatalf("ExecuteAction failed: %v", err)
	}
	if result.Type != models.ResponseDailyBriefing {
		t.Fatalf("Expected daily_briefing response, got %s", result.Type)
	}
	if result.Briefing == nil || len(result.Briefing.TasksToday) != 1 {
		t.Errorf("Expected today's task in the briefing, got %+v", result.Briefing)
	}
}

func TestGenerateDailyPlan(t *testing.T) {
	agent, journal := newTestAgent(t)

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	journal.Append(models.CategoryTask, "overdue thing", nil, &past, "")
	journal.Append(models.CategoryTask, "upcoming thing", nil, &future, "")
	journal.Append(models.CategoryRecurringReminder, "water the plants", nil, nil, "every monday")

	plan := agent.GenerateDailyPlan(context.Background())
	if len(plan.OverdueItems) != 1 {
		t.Errorf("Expected 1 overdue item, got %d", len(plan.OverdueItems))
	}
	if len(plan.PriorityTasks) != 1 || plan.PriorityTasks[0].Text != "upcoming thing" {
		t.Errorf("Unexpected priority tasks: %+v", plan.PriorityTasks)
	}
	if len(plan.UpcomingReminders) != 1 || plan.UpcomingReminders[0].Pattern != "every monday" {
		t.Errorf("Expected the recurring reminder scheduled, got %+v", plan.UpcomingReminders)
	}
	if !plan.UpcomingReminders[0].NextRun.After(time.Now()) {
		t.Error("Recurring reminders must be scheduled in the future")
	}
	if len(plan.Suggestions) == 0 {
		t.Error("Overdue items must produce a suggestion")
	}
}

func TestGenerateDailyPlanHonorsWorkHours(t *testing.T) {
	agent, journal := newTestAgent(t)

	future := time.Now().Add(24 * time.Hour)
	journal.Append(models.CategoryTask, "upcoming thing", nil, &future, "")

	// A zero-width workday leaves no room for time blocks, whatever the
	// current wall clock is.
	prefs := models.DefaultPreferences()
	prefs.WorkHours = models.WorkHours{Start: "09:00", End: "09:00"}
	agent.SetPreferences(prefs)

	plan := agent.GenerateDailyPlan(context.Background())
	if len(plan.TimeBlocks) != 0 {
		t.Errorf("Expected no time blocks in a zero-width workday, got %+v", plan.TimeBlocks)
	}
}

func TestParseClockHour(t *testing.T) {
	if got := parseClockHour("14:30", 9); got != 14 {
		t.Errorf("parseClockHour(14:30) = %d, want 14", got)
	}
	if got := parseClockHour("bogus", 9); got != 9 {
		t.Errorf("Unparseable bounds must fall back, got %d", got)
	}
	if got := parseClockHour("", 18); got != 18 {
		t.Errorf("Empty bounds must fall back, got %d", got)
	}

	start, end := workdayHours(models.DefaultPreferences())
	if start != 9 || end != 17 {
		t.Errorf("Default workday = %d-%d, want 9-17", start, end)
	}
}

func TestAgentStatePersistence(t *testing.T) {
	agent, journal := newTestAgent(t)
	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "persist me",
		Priority:    7,
	})

	restored := NewAgentService(journal, agent.api, agent.cfg, models.DefaultPreferences())
	if restored.PendingCount() != 1 {
		t.Fatalf("Expected restored pending action, got %d", restored.PendingCount())
	}
	if restored.PendingActions()[0].Description != "persist me" {
		t.Errorf("Unexpected restored action: %+v", restored.PendingActions()[0])
	}
}

func TestAgentStartStop(t *testing.T) {
	agent, _ := newTestAgent(t)

	agent.Start()
	if !agent.IsRunning() {
		t.Fatal("Agent must report running after Start")
	}
	agent.Start() // idempotent

	done := make(chan struct{})
	go func() {
		agent.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return in time")
	}
	if agent.IsRunning() {
		t.Error("Agent must report stopped after Stop")
	}
	agent.Stop() // idempotent
}

func TestStatusSnapshot(t *testing.T) {
	agent, _ := newTestAgent(t)
	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "one",
		Priority:    3,
	})
	agent.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: "two",
		Priority:    9,
	})

	status := agent.Status()
	if status.IsActive {
		t.Error("Agent not started must report inactive")
	}
	if status.PendingActions != 2 {
		t.Errorf("Expected 2 pending, got %d", status.PendingActions)
	}
	if status.Actions[0].Priority != 9 {
		t.Errorf("Actions must be ordered highest priority first, got %+v", status.Actions)
	}
	if len(status.APIStatus) != 3 {
		t.Errorf("Expected 3 service statuses, got %d", len(status.APIStatus))
	}
}

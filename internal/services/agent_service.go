package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nova/internal/config"
	"nova/internal/logging"
	"nova/internal/memory"
	"nova/internal/models"
)

const (
	maxCompletedActions = 100
	maxInsights         = 50
)

// agentState is the persisted slice of the agent's memory.
type agentState struct {
	PendingActions []models.AgentAction     `json:"pending_actions"`
	Completed      []models.CompletedAction `json:"completed_actions"`
	Insights       []models.Insight         `json:"insights"`
	LastInsightDay string                   `json:"last_insight_day,omitempty"` // "2006-01-02"
}

// AgentService is the background monitor: it wakes periodically, scans the
// journal for overdue items and morning triggers, and queues actions the user
// must explicitly execute. State survives restarts via a JSON file.
type AgentService struct {
	journal *memory.Journal
	api     *APIService
	cfg     *config.Config

	mu             sync.RWMutex
	pendingActions []models.AgentAction
	completed      []models.CompletedAction
	insights       []models.Insight
	lastInsightDay string
	prefs          models.Preferences

	notifier func(models.AgentAction)

	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	runnerMu sync.Mutex
}

// NewAgentService creates the agent and restores any persisted state.
func NewAgentService(journal *memory.Journal, api *APIService, cfg *config.Config, prefs models.Preferences) *AgentService {
	a := &AgentService{
		journal: journal,
		api:     api,
		cfg:     cfg,
		prefs:   prefs,
	}
	a.loadState()
	return a
}

// SetNotifier registers a callback invoked whenever a new action is queued
// (used to push over websockets). Must be set before Start.
func (a *AgentService) SetNotifier(fn func(models.AgentAction)) {
	a.notifier = fn
}

// SetPreferences swaps in reloaded preferences.
func (a *AgentService) SetPreferences(prefs models.Preferences) {
	a.mu.Lock()
	a.prefs = prefs
	a.mu.Unlock()
}

func (a *AgentService) preferences() models.Preferences {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prefs
}

// Start launches the monitor loop. Calling Start on a running agent is a
// no-op.
func (a *AgentService) Start() {
	a.runnerMu.Lock()
	defer a.runnerMu.Unlock()

	if a.running {
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})

	go a.run(a.stopCh, a.doneCh)
	log.Println("🤖 [AGENT] Proactive monitor started")
}

// Stop signals the monitor loop and waits for it to exit, up to the
// configured join timeout. Always safe to call.
func (a *AgentService) Stop() {
	a.runnerMu.Lock()
	defer a.runnerMu.Unlock()

	if !a.running {
		return
	}
	a.running = false
	close(a.stopCh)

	select {
	case <-a.doneCh:
		log.Println("🤖 [AGENT] Proactive monitor stopped")
	case <-time.After(a.cfg.AgentStopTimeout):
		log.Println("⚠️  [AGENT] Monitor did not stop in time, abandoning")
	}
}

// IsRunning reports whether the monitor loop is active.
func (a *AgentService) IsRunning() bool {
	a.runnerMu.Lock()
	defer a.runnerMu.Unlock()
	return a.running
}

// run is the monitor loop. One scan failure backs the loop off; it never
// exits except on stop.
func (a *AgentService) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	wake := a.cfg.AgentWakeInterval
	checkEvery := a.cfg.AgentCheckInterval
	backoff := a.cfg.AgentErrorBackoff
	logger := logging.WithComponent("agent-monitor")

	var lastScan time.Time
	for {
		select {
		case <-stopCh:
			return
		case <-time.After(wake):
		}

		if time.Since(lastScan) < checkEvery {
			continue
		}
		lastScan = time.Now()

		if err := a.scan(); err != nil {
			log.Printf("⚠️  [AGENT] Scan failed: %v (backing off %s)", err, backoff)
			select {
			case <-stopCh:
				return
			case <-time.After(backoff):
			}
			continue
		}
		logger.Debug("scan complete", "pending_actions", a.PendingCount())
	}
}

// scan runs one monitoring pass. The checks are independent; a failure in one
// is contained so the others still run, and the first failure is reported for
// the loop's backoff.
func (a *AgentService) scan() error {
	now := time.Now()

	var firstErr error
	for _, check := range []struct {
		name string
		fn   func(time.Time)
	}{
		{"overdue-items", a.checkOverdueItems},
		{"morning-insight", a.checkMorningInsight},
		{"briefing-suggestion", a.checkBriefingSuggestion},
	} {
		if err := a.runCheck(check.name, check.fn, now); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *AgentService) runCheck(name string, fn func(time.Time), now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check %s panicked: %v", name, r)
			log.Printf("🚨 [AGENT] Check %s panicked: %v", name, r)
		}
	}()
	fn(now)
	return nil
}

// checkOverdueItems queues a single notification summarizing everything past
// due. Dedup on (type, description) keeps repeated scans from piling up.
func (a *AgentService) checkOverdueItems(now time.Time) {
	var overdue []models.JournalEntry
	for _, e := range a.journal.Entries() {
		if (e.Category == models.CategoryTask || e.Category == models.CategoryReminder) && e.IsOverdue(now) {
			overdue = append(overdue, e)
		}
	}
	if len(overdue) == 0 {
		return
	}

	var titles []string
	for _, e := range overdue {
		text := e.Text
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		titles = append(titles, text)
	}

	a.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionNotification,
		Description: fmt.Sprintf("You have %d overdue item(s): %s", len(overdue), strings.Join(titles, "; ")),
		Parameters:  map[string]interface{}{"overdue_count": len(overdue)},
		Priority:    8,
	})
}

// checkMorningInsight records one insight per day once the configured morning
// hour arrives: today's workload plus weather if available.
func (a *AgentService) checkMorningInsight(now time.Time) {
	prefs := a.preferences()
	if now.Hour() < prefs.MorningInsightHour {
		return
	}

	today := now.Format("2006-01-02")
	a.mu.RLock()
	already := a.lastInsightDay == today
	a.mu.RUnlock()
	if already {
		return
	}

	dueToday := 0
	for _, e := range a.journal.Entries() {
		if e.Category == models.CategoryTask && e.IsDueOn(now) {
			dueToday++
		}
	}

	description := fmt.Sprintf("You have %d task(s) due today.", dueToday)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.LookupTimeout)
	if report, err := a.api.GetWeather(ctx, prefs.WeatherLocation); err == nil {
		description += fmt.Sprintf(" Weather in %s: %d°C, %s.", report.Location, report.Temperature, report.Description)
	}
	cancel()

	a.addInsight(models.Insight{
		InsightType: "morning_summary",
		Title:       "Good morning!",
		Description: description,
		Confidence:  0.9,
		Timestamp:   now,
	})

	a.mu.Lock()
	a.lastInsightDay = today
	a.mu.Unlock()
	a.saveState()
}

// checkBriefingSuggestion queues a briefing suggestion in the first minutes
// of the configured briefing hour.
func (a *AgentService) checkBriefingSuggestion(now time.Time) {
	prefs := a.preferences()
	if now.Hour() != prefs.BriefingHour || now.Minute() >= 5 {
		return
	}

	a.AddPendingAction(models.AgentAction{
		ActionType:  models.ActionSuggestion,
		Description: "Would you like your daily briefing?",
		Parameters:  map[string]interface{}{"suggestion": "daily_briefing"},
		Priority:    6,
	})
}

// AddPendingAction queues an action unless an identical (type, description)
// pair is already pending. New actions get an ID, a timestamp and approval
// required, then go out through the notifier.
func (a *AgentService) AddPendingAction(action models.AgentAction) bool {
	a.mu.Lock()
	for _, existing := range a.pendingActions {
		if existing.ActionType == action.ActionType && existing.Description == action.Description {
			a.mu.Unlock()
			return false
		}
	}

	if action.ActionID == "" {
		action.ActionID = uuid.New().String()
	}
	if action.ScheduledTime == nil {
		now := time.Now()
		action.ScheduledTime = &now
	}
	action.RequiresApproval = true

	a.pendingActions = append(a.pendingActions, action)
	a.mu.Unlock()
	a.saveState()

	log.Printf("🔔 [AGENT] Queued %s action: %s", action.ActionType, action.Description)
	if a.notifier != nil {
		a.notifier(action)
	}
	return true
}

// ExecuteAction runs a pending action by ID. Unknown IDs are an error and
// leave the pending set untouched. Executed actions move to the bounded
// completed list.
func (a *AgentService) ExecuteAction(ctx context.Context, actionID string) (models.ChatResponse, error) {
	a.mu.Lock()
	idx := -1
	for i, action := range a.pendingActions {
		if action.ActionID == actionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		a.mu.Unlock()
		return models.ChatResponse{}, fmt.Errorf("no pending action with id %s", actionID)
	}
	action := a.pendingActions[idx]
	a.pendingActions = append(a.pendingActions[:idx], a.pendingActions[idx+1:]...)
	a.mu.Unlock()

	result := a.performAction(ctx, action)

	a.mu.Lock()
	a.completed = append(a.completed, models.CompletedAction{
		Action:     action,
		ExecutedAt: time.Now(),
		Result:     result,
	})
	if len(a.completed) > maxCompletedActions {
		a.completed = a.completed[len(a.completed)-maxCompletedActions:]
	}
	a.mu.Unlock()
	a.saveState()

	if m := GetMetrics(); m != nil {
		m.RecordActionExecuted()
	}
	log.Printf("✅ [AGENT] Executed action: %s", action.Description)
	return result, nil
}

func (a *AgentService) performAction(ctx context.Context, action models.AgentAction) models.ChatResponse {
	if action.ActionType == models.ActionSuggestion {
		if s, ok := action.Parameters["suggestion"].(string); ok && s == "daily_briefing" {
			briefing := a.GenerateDailyBriefing(ctx)
			return models.ChatResponse{
				Response: "Here's your daily briefing.",
				Type:     models.ResponseDailyBriefing,
				Briefing: briefing,
			}
		}
	}

	// Notifications just acknowledge; the content was already delivered.
	return models.NewSystemResponse("Acknowledged: " + action.Description)
}

// GenerateDailyBriefing assembles today's weather, headlines, tasks and
// recent insights. Lookup failures leave the corresponding section empty.
func (a *AgentService) GenerateDailyBriefing(ctx context.Context) *models.DailyBriefing {
	now := time.Now()
	prefs := a.preferences()

	briefing := &models.DailyBriefing{
		Date:     now.Format("2006-01-02"),
		Insights: a.RecentInsights(3),
	}

	if report, err := a.api.GetWeather(ctx, prefs.WeatherLocation); err == nil {
		briefing.Weather = report
	}
	topic := ""
	if len(prefs.PreferredTopics) > 0 {
		topic = prefs.PreferredTopics[0]
	}
	if articles, err := a.api.GetNews(ctx, prefs.NewsCountry, topic); err == nil {
		if len(articles) > 5 {
			articles = articles[:5]
		}
		briefing.NewsHeadlines = articles
	}

	for _, e := range a.journal.Entries() {
		if e.Category == models.CategoryTask && e.IsDueOn(now) {
			briefing.TasksToday = append(briefing.TasksToday, e)
		}
	}

	return briefing
}

// GenerateDailyPlan builds a suggested schedule for the rest of the working
// day from open tasks, overdue items and recurring reminders.
func (a *AgentService) GenerateDailyPlan(ctx context.Context) *models.DailyPlan {
	now := time.Now()
	prefs := a.preferences()

	plan := &models.DailyPlan{
		Date: now.Format("2006-01-02"),
	}

	if report, err := a.api.GetWeather(ctx, prefs.WeatherLocation); err == nil {
		plan.Weather = report
	}

	var open []models.JournalEntry
	for _, e := range a.journal.Entries() {
		switch e.Category {
		case models.CategoryTask, models.CategoryReminder:
			if e.IsOverdue(now) {
				plan.OverdueItems = append(plan.OverdueItems, e)
			} else {
				open = append(open, e)
			}
		case models.CategoryRecurringReminder:
			if e.Recurring == "" {
				continue
			}
			if next, ok := NextOccurrence(e.Recurring, now, prefs.MorningInsightHour); ok {
				plan.UpcomingReminders = append(plan.UpcomingReminders, models.UpcomingReminder{
					Text:    e.Text,
					Pattern: e.Recurring,
					NextRun: next,
				})
			}
		}
	}

	// Soonest due first; undated tasks go last.
	sort.SliceStable(open, func(i, j int) bool {
		di, dj := open[i].DueDate, open[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	if len(open) > 5 {
		open = open[:5]
	}
	plan.PriorityTasks = open

	sort.Slice(plan.UpcomingReminders, func(i, j int) bool {
		return plan.UpcomingReminders[i].NextRun.Before(plan.UpcomingReminders[j].NextRun)
	})

	workStart, workEnd := workdayHours(prefs)
	start := now.Hour() + 1
	if start < workStart {
		start = workStart
	}
	for hour, i := start, 0; hour < workEnd && i < len(open); hour, i = hour+1, i+1 {
		plan.TimeBlocks = append(plan.TimeBlocks, models.TimeBlock{
			Time:     fmt.Sprintf("%02d:00", hour),
			Task:     open[i].Text,
			Duration: "1 hour",
		})
	}

	if len(plan.OverdueItems) > 0 {
		plan.Suggestions = append(plan.Suggestions, fmt.Sprintf("Start with your %d overdue item(s).", len(plan.OverdueItems)))
	}
	if len(open) == 0 {
		plan.Suggestions = append(plan.Suggestions, "No open tasks. A good day to review your ideas!")
	}

	return plan
}

// workdayHours derives the planning window from the work-hours preference.
// Unparseable bounds fall back to a 9-to-18 day.
func workdayHours(prefs models.Preferences) (int, int) {
	return parseClockHour(prefs.WorkHours.Start, 9), parseClockHour(prefs.WorkHours.End, 18)
}

func parseClockHour(s string, fallback int) int {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return fallback
	}
	return t.Hour()
}

func (a *AgentService) addInsight(insight models.Insight) {
	a.mu.Lock()
	a.insights = append(a.insights, insight)
	if len(a.insights) > maxInsights {
		a.insights = a.insights[len(a.insights)-maxInsights:]
	}
	a.mu.Unlock()

	log.Printf("💡 [AGENT] New insight: %s", insight.Title)
}

// RecentInsights returns the newest limit insights, newest first.
func (a *AgentService) RecentInsights(limit int) []models.Insight {
	a.mu.RLock()
	defer a.mu.RUnlock()

	insights := a.insights
	if limit > 0 && len(insights) > limit {
		insights = insights[len(insights)-limit:]
	}

	out := make([]models.Insight, len(insights))
	for i, insight := range insights {
		out[len(insights)-1-i] = insight
	}
	return out
}

// PendingActions returns a copy of the pending queue, highest priority first.
func (a *AgentService) PendingActions() []models.AgentAction {
	a.mu.RLock()
	out := make([]models.AgentAction, len(a.pendingActions))
	copy(out, a.pendingActions)
	a.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// PendingCount returns the number of queued actions (exported for metrics).
func (a *AgentService) PendingCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.pendingActions)
}

// Status summarizes the agent for the status endpoint.
func (a *AgentService) Status() models.AgentStatus {
	return models.AgentStatus{
		IsActive:       a.IsRunning(),
		PendingActions: a.PendingCount(),
		RecentInsights: len(a.RecentInsights(10)),
		Actions:        a.PendingActions(),
		APIStatus:      a.api.Status(),
	}
}

// loadState restores persisted agent memory; missing or corrupt files start
// the agent empty.
func (a *AgentService) loadState() {
	data, err := os.ReadFile(a.cfg.AgentStatePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [AGENT] Failed to read state file %s: %v (starting empty)", a.cfg.AgentStatePath, err)
		}
		return
	}

	var state agentState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("⚠️  [AGENT] Corrupt state file %s: %v (starting empty)", a.cfg.AgentStatePath, err)
		return
	}

	a.pendingActions = state.PendingActions
	a.completed = state.Completed
	a.insights = state.Insights
	a.lastInsightDay = state.LastInsightDay
	log.Printf("📦 [AGENT] Restored state: %d pending, %d completed, %d insights",
		len(a.pendingActions), len(a.completed), len(a.insights))
}

// saveState persists agent memory. Failures are logged and swallowed.
func (a *AgentService) saveState() {
	a.mu.RLock()
	state := agentState{
		PendingActions: a.pendingActions,
		Completed:      a.completed,
		Insights:       a.insights,
		LastInsightDay: a.lastInsightDay,
	}
	a.mu.RUnlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("⚠️  [AGENT] Failed to marshal state: %v", err)
		return
	}
	if err := os.WriteFile(a.cfg.AgentStatePath, data, 0o644); err != nil {
		log.Printf("⚠️  [AGENT] Failed to save state to %s: %v", a.cfg.AgentStatePath, err)
	}
}

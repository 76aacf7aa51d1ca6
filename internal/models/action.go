package models

import "time"

// ActionType distinguishes what a pending action asks of the user.
type ActionType string

const (
	ActionNotification ActionType = "notification"
	ActionSuggestion   ActionType = "suggestion"
)

// AgentAction is a proactive action queued by the agent and awaiting an
// explicit execute call. Two pending actions never share the same
// (action_type, description) pair.
type AgentAction struct {
	ActionID         string                 `json:"action_id"`
	ActionType       ActionType             `json:"action_type"`
	Description      string                 `json:"description"`
	Parameters       map[string]interface{} `json:"parameters,omitempty"`
	Priority         int                    `json:"priority"` // 1-10, 10 highest
	ScheduledTime    *time.Time             `json:"scheduled_time,omitempty"`
	RequiresApproval bool                   `json:"requires_approval"`
}

// CompletedAction snapshots an executed action together with its outcome.
type CompletedAction struct {
	Action     AgentAction  `json:"action"`
	ExecutedAt time.Time    `json:"executed_at"`
	Result     ChatResponse `json:"result"`
}

// Insight is a proactive observation the agent surfaces to the user.
type Insight struct {
	InsightType string    `json:"insight_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"` // 0..1
	Timestamp   time.Time `json:"timestamp"`
}

// AgentStatus summarizes the monitor for the status endpoint.
type AgentStatus struct {
	IsActive       bool                     `json:"is_active"`
	PendingActions int                      `json:"pending_actions"`
	RecentInsights int                      `json:"recent_insights"`
	Actions        []AgentAction            `json:"actions"`
	APIStatus      map[string]ServiceStatus `json:"api_status"`
}

// TimeBlock is one suggested slot in a daily plan.
type TimeBlock struct {
	Time     string `json:"time"`
	Task     string `json:"task"`
	Duration string `json:"duration"`
}

// UpcomingReminder pairs a recurring journal entry with its computed next
// occurrence.
type UpcomingReminder struct {
	Text    string    `json:"text"`
	Pattern string    `json:"pattern"`
	NextRun time.Time `json:"next_run"`
}

// DailyPlan is the structured payload behind the daily-plan endpoint.
type DailyPlan struct {
	Date              string             `json:"date"`
	Weather           *WeatherReport     `json:"weather,omitempty"`
	PriorityTasks     []JournalEntry     `json:"priority_tasks"`
	OverdueItems      []JournalEntry     `json:"overdue_items"`
	Suggestions       []string           `json:"suggestions"`
	TimeBlocks        []TimeBlock        `json:"time_blocks"`
	UpcomingReminders []UpcomingReminder `json:"upcoming_reminders,omitempty"`
}

// DailyBriefing is the structured payload behind the daily-briefing endpoint.
type DailyBriefing struct {
	Date          string         `json:"date"`
	Weather       *WeatherReport `json:"weather,omitempty"`
	NewsHeadlines []NewsArticle  `json:"news_headlines"`
	TasksToday    []JournalEntry `json:"tasks_today"`
	Insights      []Insight      `json:"insights"`
}

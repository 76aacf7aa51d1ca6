package models

import "time"

// ResponseType tags a ChatResponse so clients can render it correctly.
type ResponseType string

const (
	ResponseSuccess       ResponseType = "success"
	ResponseError         ResponseType = "error"
	ResponseKnowledge     ResponseType = "knowledge"
	ResponseWeather       ResponseType = "weather"
	ResponseNews          ResponseType = "news"
	ResponseMemory        ResponseType = "memory"
	ResponseHelp          ResponseType = "help"
	ResponseSystem        ResponseType = "system"
	ResponseDailyPlan     ResponseType = "daily_plan"
	ResponseDailyBriefing ResponseType = "daily_briefing"
	ResponseInsights      ResponseType = "insights"
	ResponseAgentStatus   ResponseType = "agent_status"
)

// ChatResponse is the single payload shape returned by the assistant. Type
// determines which optional fields are populated; the New* constructors below
// are the only intended producers.
type ChatResponse struct {
	Response string       `json:"response"`
	Type     ResponseType `json:"type"`

	// success (journal write path)
	Category Category   `json:"category,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	// knowledge
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`

	// weather
	Weather *WeatherReport `json:"data,omitempty"`

	// news
	Articles []NewsArticle `json:"articles,omitempty"`

	// memory
	Entries []JournalEntry `json:"entries,omitempty"`
	Summary string         `json:"summary,omitempty"`

	// agent payloads
	Plan     *DailyPlan     `json:"plan,omitempty"`
	Briefing *DailyBriefing `json:"briefing,omitempty"`
	Insights []Insight      `json:"insights,omitempty"`
	Status   *AgentStatus   `json:"status,omitempty"`
}

// NewSuccessResponse builds the reply for a journal write.
func NewSuccessResponse(text string, category Category, tags []string, dueDate *time.Time) ChatResponse {
	return ChatResponse{
		Response: text,
		Type:     ResponseSuccess,
		Category: category,
		Tags:     tags,
		DueDate:  dueDate,
	}
}

// NewErrorResponse builds a structured, non-fatal error reply.
func NewErrorResponse(text string) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseError}
}

// NewKnowledgeResponse builds the reply for a Wikipedia lookup.
func NewKnowledgeResponse(result *WikiResult) ChatResponse {
	return ChatResponse{
		Response: result.Summary,
		Type:     ResponseKnowledge,
		Source:   result.Source,
		Title:    result.Title,
		URL:      result.URL,
	}
}

// NewWeatherResponse builds the reply for a weather lookup.
func NewWeatherResponse(text string, report *WeatherReport) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseWeather, Weather: report}
}

// NewNewsResponse builds the reply for a news lookup.
func NewNewsResponse(text string, articles []NewsArticle) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseNews, Articles: articles}
}

// NewMemoryResponse builds the reply for a journal query command.
func NewMemoryResponse(text string, entries []JournalEntry, summary string) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseMemory, Entries: entries, Summary: summary}
}

// NewHelpResponse wraps the static help text.
func NewHelpResponse(text string) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseHelp}
}

// NewSystemResponse reports an administrative action (e.g. memory cleared).
func NewSystemResponse(text string) ChatResponse {
	return ChatResponse{Response: text, Type: ResponseSystem}
}

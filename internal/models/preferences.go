package models

// WorkHours bounds the day for time-block planning.
type WorkHours struct {
	Start string `yaml:"start" json:"start"` // "09:00"
	End   string `yaml:"end" json:"end"`     // "17:00"
}

// Preferences tune the assistant's proactive behavior. They live in a YAML
// file next to the journal and are hot-reloaded on change.
type Preferences struct {
	ProactiveLevel     string    `yaml:"proactive_level" json:"proactive_level"` // low, medium, high
	WeatherLocation    string    `yaml:"weather_location" json:"weather_location"`
	NewsCountry        string    `yaml:"news_country" json:"news_country"`
	PreferredTopics    []string  `yaml:"preferred_news_topics" json:"preferred_news_topics"`
	MorningInsightHour int       `yaml:"morning_insight_hour" json:"morning_insight_hour"`
	BriefingHour       int       `yaml:"briefing_hour" json:"briefing_hour"`
	WorkHours          WorkHours `yaml:"work_hours" json:"work_hours"`
}

// DefaultPreferences returns the preferences used when no file exists.
func DefaultPreferences() Preferences {
	return Preferences{
		ProactiveLevel:     "medium",
		WeatherLocation:    "New York",
		NewsCountry:        "us",
		PreferredTopics:    []string{"technology", "science"},
		MorningInsightHour: 8,
		BriefingHour:       9,
		WorkHours:          WorkHours{Start: "09:00", End: "17:00"},
	}
}

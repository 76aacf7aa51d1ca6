package models

// ServiceStatus describes the reachability of an external lookup service.
type ServiceStatus string

const (
	StatusUnknown ServiceStatus = "unknown"
	StatusOnline  ServiceStatus = "online"
	StatusOffline ServiceStatus = "offline"
	StatusNoKey   ServiceStatus = "no_key" // service reachable in principle but not configured
)

// WeatherReport is the normalized weather lookup payload.
type WeatherReport struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"` // °C, rounded
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Country     string  `json:"country,omitempty"`
}

// NewsArticle is one normalized headline.
type NewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
}

// WikiResult is a normalized Wikipedia summary.
type WikiResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Source  string `json:"source"`
}

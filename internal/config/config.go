package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"nova/internal/models"
)

// Config holds all application configuration
type Config struct {
	Port string

	// Storage paths (flat files, single process)
	JournalPath     string
	CachePath       string
	AgentStatePath  string
	PreferencesPath string
	SnapshotDir     string

	// External lookup services
	WeatherAPIKey    string
	NewsAPIKey       string
	WeatherBaseURL   string
	NewsBaseURL      string
	WikipediaBaseURL string
	LookupTimeout    time.Duration

	// Proactive agent tuning
	AgentWakeInterval  time.Duration
	AgentCheckInterval time.Duration
	AgentErrorBackoff  time.Duration
	AgentStopTimeout   time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3001"),

		JournalPath:     getEnv("JOURNAL_PATH", "nova_memory.json"),
		CachePath:       getEnv("CACHE_PATH", "api_cache.json"),
		AgentStatePath:  getEnv("AGENT_STATE_PATH", "agent_memory.json"),
		PreferencesPath: getEnv("PREFERENCES_PATH", "preferences.yaml"),
		SnapshotDir:     getEnv("SNAPSHOT_DIR", "snapshots"),

		WeatherAPIKey:    getEnv("OPENWEATHER_API_KEY", ""),
		NewsAPIKey:       getEnv("NEWS_API_KEY", ""),
		WeatherBaseURL:   getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		NewsBaseURL:      getEnv("NEWS_BASE_URL", "https://newsapi.org/v2"),
		WikipediaBaseURL: getEnv("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org/api/rest_v1"),
		LookupTimeout:    getDurationEnv("LOOKUP_TIMEOUT", 10*time.Second),

		AgentWakeInterval:  getDurationEnv("AGENT_WAKE_INTERVAL", time.Minute),
		AgentCheckInterval: getDurationEnv("AGENT_CHECK_INTERVAL", 5*time.Minute),
		AgentErrorBackoff:  getDurationEnv("AGENT_ERROR_BACKOFF", 5*time.Minute),
		AgentStopTimeout:   getDurationEnv("AGENT_STOP_TIMEOUT", 5*time.Second),
	}
}

// LoadPreferences loads assistant preferences from a YAML file. A missing or
// unreadable file yields the defaults (never an error to the caller).
func LoadPreferences(filePath string) models.Preferences {
	prefs := models.DefaultPreferences()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  Failed to read preferences file %s: %v (using defaults)", filePath, err)
		}
		return prefs
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		log.Printf("⚠️  Failed to parse preferences file %s: %v (using defaults)", filePath, err)
		return models.DefaultPreferences()
	}

	return prefs
}

// SavePreferences writes preferences back to the YAML file.
func SavePreferences(filePath string, prefs models.Preferences) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

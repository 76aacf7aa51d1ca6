package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"nova/internal/cache"
	"nova/internal/models"
)

// TTLs per lookup domain: weather changes fast, encyclopedia articles don't.
const (
	weatherTTL = 600 * time.Second
	newsTTL    = 900 * time.Second
	wikiTTL    = 3600 * time.Second
)

// Sentinel errors the dispatcher turns into degraded user-facing replies.
var (
	// ErrNotConfigured means the service needs an API key that is not set.
	ErrNotConfigured = errors.New("service not configured")
	// ErrUnavailable means the service is configured but did not answer.
	ErrUnavailable = errors.New("service unavailable")
)

// APIService performs the external lookups (weather, news, Wikipedia) behind
// the TTL cache. It owns the per-service connectivity status and never caches
// an unavailable result. Outbound calls are rate limited and bounded by the
// client timeout; callers must not hold journal or agent locks across them.
type APIService struct {
	cache   *cache.Cache
	client  *http.Client
	limiter *rate.Limiter

	mu         sync.RWMutex
	weatherKey string
	newsKey    string
	status     map[string]models.ServiceStatus

	weatherBase string
	newsBase    string
	wikiBase    string
}

// APIConfig carries what the service needs from the process configuration.
type APIConfig struct {
	WeatherAPIKey    string
	NewsAPIKey       string
	WeatherBaseURL   string
	NewsBaseURL      string
	WikipediaBaseURL string
	LookupTimeout    time.Duration
}

// NewAPIService creates the lookup service. Call TestConnectivity afterwards
// to populate the status map.
func NewAPIService(cfg APIConfig, c *cache.Cache) *APIService {
	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &APIService{
		cache:   c,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4), // personal-scale politeness toward upstreams
		status: map[string]models.ServiceStatus{
			"wikipedia": models.StatusUnknown,
			"weather":   models.StatusUnknown,
			"news":      models.StatusUnknown,
		},
		weatherKey:  cfg.WeatherAPIKey,
		newsKey:     cfg.NewsAPIKey,
		weatherBase: strings.TrimRight(cfg.WeatherBaseURL, "/"),
		newsBase:    strings.TrimRight(cfg.NewsBaseURL, "/"),
		wikiBase:    strings.TrimRight(cfg.WikipediaBaseURL, "/"),
	}
}

// TestConnectivity probes each upstream and records its status. Missing keys
// are reported as no_key without issuing a request.
func (s *APIService) TestConnectivity(ctx context.Context) {
	s.mu.Lock()
	weatherKey, newsKey := s.weatherKey, s.newsKey
	s.mu.Unlock()

	wikiStatus := models.StatusOffline
	if s.probe(ctx, s.wikiBase+"/page/summary/Python") {
		wikiStatus = models.StatusOnline
	}

	weatherStatus := models.StatusNoKey
	if weatherKey != "" {
		weatherStatus = models.StatusOffline
		if s.probe(ctx, fmt.Sprintf("%s/weather?q=London&appid=%s", s.weatherBase, url.QueryEscape(weatherKey))) {
			weatherStatus = models.StatusOnline
		}
	}

	newsStatus := models.StatusNoKey
	if newsKey != "" {
		newsStatus = models.StatusOffline
		if s.probe(ctx, fmt.Sprintf("%s/top-headlines?country=us&pageSize=1&apiKey=%s", s.newsBase, url.QueryEscape(newsKey))) {
			newsStatus = models.StatusOnline
		}
	}

	s.mu.Lock()
	s.status["wikipedia"] = wikiStatus
	s.status["weather"] = weatherStatus
	s.status["news"] = newsStatus
	s.mu.Unlock()

	log.Printf("🔌 [API] Connectivity: wikipedia=%s weather=%s news=%s", wikiStatus, weatherStatus, newsStatus)
}

func (s *APIService) probe(ctx context.Context, probeURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Status returns the current per-service connectivity status.
func (s *APIService) Status() map[string]models.ServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.ServiceStatus, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

// SetAPIKey updates a service credential at runtime and re-probes
// connectivity. Unknown services are an input error.
func (s *APIService) SetAPIKey(ctx context.Context, service, key string) error {
	s.mu.Lock()
	switch service {
	case "weather":
		s.weatherKey = key
	case "news":
		s.newsKey = key
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown service %q", service)
	}
	s.mu.Unlock()

	s.TestConnectivity(ctx)
	return nil
}

// SearchWikipedia resolves a knowledge query via the Wikipedia summary API,
// cache-first. A 404 produces a fallback result that is not cached.
func (s *APIService) SearchWikipedia(ctx context.Context, query string) (*models.WikiResult, error) {
	topic := extractTopic(query)
	cacheKey := "wiki_" + normalizeKey(topic)

	var cached models.WikiResult
	if s.cache.GetJSON(cacheKey, &cached) {
		s.recordLookup("wikipedia", "hit")
		log.Printf("📦 [API] Wikipedia cache hit for: %s", topic)
		return &cached, nil
	}

	result, err := s.fetchWikipedia(ctx, topic)
	if err != nil {
		s.recordLookup("wikipedia", "unavailable")
		s.markOffline("wikipedia")
		return nil, err
	}

	s.recordLookup("wikipedia", "fetched")
	if result.Source == "Wikipedia" { // fallback results are not worth keeping
		if err := s.cache.Set(cacheKey, result, wikiTTL); err != nil {
			log.Printf("⚠️  [API] Failed to cache wikipedia result: %v", err)
		}
	}
	return result, nil
}

func (s *APIService) fetchWikipedia(ctx context.Context, topic string) (*models.WikiResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	encoded := strings.ReplaceAll(topic, " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.wikiBase+"/page/summary/"+url.PathEscape(encoded), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload struct {
			Title       string `json:"title"`
			Extract     string `json:"extract"`
			ContentURLs struct {
				Desktop struct {
					Page string `json:"page"`
				} `json:"desktop"`
			} `json:"content_urls"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("%w: decoding summary: %v", ErrUnavailable, err)
		}

		summary := payload.Extract
		if summary == "" {
			summary = "No summary available."
		}
		title := payload.Title
		if title == "" {
			title = topic
		}
		return &models.WikiResult{
			Title:   title,
			Summary: summary,
			URL:     payload.ContentURLs.Desktop.Page,
			Source:  "Wikipedia",
		}, nil

	case http.StatusNotFound:
		// Not an outage: answer with a pointer instead of more API calls.
		return &models.WikiResult{
			Title:   topic,
			Summary: fmt.Sprintf("I couldn't find specific information about '%s' on Wikipedia. This might be a specialized topic that requires more specific search terms.", topic),
			URL:     "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(topic, " ", "_"),
			Source:  "Wikipedia (fallback)",
		}, nil

	default:
		return nil, fmt.Errorf("%w: wikipedia returned status %d", ErrUnavailable, resp.StatusCode)
	}
}

// GetWeather returns current conditions for a location, cache-first.
func (s *APIService) GetWeather(ctx context.Context, location string) (*models.WeatherReport, error) {
	cacheKey := "weather_" + normalizeKey(location)

	var cached models.WeatherReport
	if s.cache.GetJSON(cacheKey, &cached) {
		s.recordLookup("weather", "hit")
		log.Printf("📦 [API] Weather cache hit for: %s", location)
		return &cached, nil
	}

	s.mu.RLock()
	key := s.weatherKey
	s.mu.RUnlock()
	if key == "" {
		s.recordLookup("weather", "unavailable")
		return nil, ErrNotConfigured
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.recordLookup("weather", "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reqURL := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		s.weatherBase, url.QueryEscape(location), url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		s.recordLookup("weather", "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordLookup("weather", "unavailable")
		s.markOffline("weather")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.recordLookup("weather", "unavailable")
		s.markOffline("weather")
		return nil, fmt.Errorf("%w: weather API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Name string `json:"name"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Sys struct {
			Country string `json:"country"`
		} `json:"sys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.recordLookup("weather", "unavailable")
		return nil, fmt.Errorf("%w: decoding weather: %v", ErrUnavailable, err)
	}

	name := payload.Name
	if name == "" {
		name = location
	}
	description := ""
	if len(payload.Weather) > 0 {
		description = titleCase(payload.Weather[0].Description)
	}

	report := &models.WeatherReport{
		Location:    name,
		Temperature: int(payload.Main.Temp + 0.5),
		Description: description,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Country:     payload.Sys.Country,
	}

	s.recordLookup("weather", "fetched")
	if err := s.cache.Set(cacheKey, report, weatherTTL); err != nil {
		log.Printf("⚠️  [API] Failed to cache weather result: %v", err)
	}

	s.markOnline("weather")
	log.Printf("🌤️  [API] Weather data retrieved for: %s", location)
	return report, nil
}

// GetNews returns the latest headlines for a country, cache-first. A
// non-empty topic narrows the headlines to that category.
func (s *APIService) GetNews(ctx context.Context, country, topic string) ([]models.NewsArticle, error) {
	if country == "" {
		country = "us"
	}
	segment := topic
	if segment == "" {
		segment = "general"
	}
	cacheKey := fmt.Sprintf("news_%s_%s", country, normalizeKey(segment))

	var cached []models.NewsArticle
	if s.cache.GetJSON(cacheKey, &cached) {
		s.recordLookup("news", "hit")
		log.Println("📦 [API] News cache hit")
		return cached, nil
	}

	s.mu.RLock()
	key := s.newsKey
	s.mu.RUnlock()
	if key == "" {
		s.recordLookup("news", "unavailable")
		return nil, ErrNotConfigured
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.recordLookup("news", "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	reqURL := fmt.Sprintf("%s/top-headlines?country=%s&pageSize=10&apiKey=%s",
		s.newsBase, url.QueryEscape(country), url.QueryEscape(key))
	if topic != "" {
		reqURL += "&category=" + url.QueryEscape(topic)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		s.recordLookup("news", "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.recordLookup("news", "unavailable")
		s.markOffline("news")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.recordLookup("news", "unavailable")
		s.markOffline("news")
		return nil, fmt.Errorf("%w: news API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
			PublishedAt string `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.recordLookup("news", "unavailable")
		return nil, fmt.Errorf("%w: decoding news: %v", ErrUnavailable, err)
	}

	articles := make([]models.NewsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		articles = append(articles, models.NewsArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      source,
			PublishedAt: a.PublishedAt,
		})
	}

	s.recordLookup("news", "fetched")
	if err := s.cache.Set(cacheKey, articles, newsTTL); err != nil {
		log.Printf("⚠️  [API] Failed to cache news result: %v", err)
	}

	s.markOnline("news")
	log.Printf("📰 [API] News data retrieved: %d articles", len(articles))
	return articles, nil
}

func (s *APIService) markOffline(service string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[service] = models.StatusOffline
}

func (s *APIService) markOnline(service string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[service] = models.StatusOnline
}

func (s *APIService) recordLookup(domain, result string) {
	if m := GetMetrics(); m != nil {
		m.RecordLookup(domain, result)
		if result == "hit" {
			m.RecordCacheHit()
		} else {
			m.RecordCacheMiss()
		}
	}
}

// Lead-ins stripped from natural-language questions before hitting the
// encyclopedia ("what is quantum physics" -> "Quantum physics").
var topicStopPhrases = []string{
	"what is", "who is", "tell me about", "explain", "define",
	"how does", "when did", "where is", "why does",
}

func extractTopic(query string) string {
	topic := strings.TrimSpace(strings.ToLower(query))

	for _, phrase := range topicStopPhrases {
		if strings.HasPrefix(topic, phrase) {
			topic = strings.TrimSpace(topic[len(phrase):])
			break
		}
	}

	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(topic, article) {
			topic = strings.TrimSpace(topic[len(article):])
			break
		}
	}

	topic = strings.Join(strings.Fields(topic), " ")
	topic = strings.TrimSuffix(topic, "?")

	if topic == "" {
		return query
	}
	return strings.ToUpper(topic[:1]) + topic[1:]
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

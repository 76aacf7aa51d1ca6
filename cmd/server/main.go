package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"nova/internal/cache"
	"nova/internal/config"
	"nova/internal/handlers"
	"nova/internal/jobs"
	"nova/internal/logging"
	"nova/internal/memory"
	"nova/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting Nova Assistant Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration and preferences
	cfg := config.Load()
	prefs := config.LoadPreferences(cfg.PreferencesPath)
	log.Printf("📋 Configuration loaded (Port: %s, Journal: %s)", cfg.Port, cfg.JournalPath)

	// Storage
	lookupCache := cache.New(cfg.CachePath)
	journal := memory.NewJournal(cfg.JournalPath)

	// Services
	apiService := services.NewAPIService(services.APIConfig{
		WeatherAPIKey:    cfg.WeatherAPIKey,
		NewsAPIKey:       cfg.NewsAPIKey,
		WeatherBaseURL:   cfg.WeatherBaseURL,
		NewsBaseURL:      cfg.NewsBaseURL,
		WikipediaBaseURL: cfg.WikipediaBaseURL,
		LookupTimeout:    cfg.LookupTimeout,
	}, lookupCache)

	probeCtx, probeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	apiService.TestConnectivity(probeCtx)
	probeCancel()

	assistantService := services.NewAssistantService(journal, apiService, prefs)
	agentService := services.NewAgentService(journal, apiService, cfg, prefs)
	connManager := services.NewConnectionManager()

	// Metrics (registers gauges backed by the agent and connection manager)
	services.InitMetrics(agentService, connManager)

	// Handlers
	healthHandler := handlers.NewHealthHandler(connManager)
	chatHandler := handlers.NewChatHandler(assistantService, lookupCache)
	agentHandler := handlers.NewAgentHandler(agentService)
	configHandler := handlers.NewConfigHandler(apiService)
	wsHandler := handlers.NewWebSocketHandler(connManager, assistantService)

	// Proactive actions go out over the chat sockets as they are queued
	agentService.SetNotifier(wsHandler.BroadcastAction)
	agentService.Start()

	// Background maintenance jobs
	maintenance, err := jobs.NewMaintenance(lookupCache, journal, apiService, cfg.SnapshotDir)
	if err != nil {
		log.Fatalf("❌ Failed to create maintenance scheduler: %v", err)
	}
	maintenance.Start()
	log.Println("🕐 Background jobs: cache sweep (hourly), journal snapshot (daily 3 AM), API status refresh (every 30m)")

	// Hot-reload preferences on file change
	go config.WatchFile(cfg.PreferencesPath, func() {
		reloaded := config.LoadPreferences(cfg.PreferencesPath)
		assistantService.SetPreferences(reloaded)
		agentService.SetPreferences(reloaded)
		log.Println("✅ Preferences reloaded")
	})

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Nova Assistant v1.0",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("nova")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Single-user deployment; the limiter just guards against runaway clients
	app.Use("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// Routes
	app.Get("/health", healthHandler.Handle)
	app.Post("/api/chat", chatHandler.HandleChat)
	app.Get("/api/stats", chatHandler.HandleStats)
	app.Get("/api/agent/status", agentHandler.HandleStatus)
	app.Get("/api/agent/insights", agentHandler.HandleInsights)
	app.Get("/api/agent/daily-plan", agentHandler.HandleDailyPlan)
	app.Get("/api/agent/daily-briefing", agentHandler.HandleDailyBriefing)
	app.Post("/api/agent/action", agentHandler.HandleAction)
	app.Post("/api/config/api-key", configHandler.HandleSetAPIKey)
	app.Get("/api/external/status", configHandler.HandleExternalStatus)

	// WebSocket route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.Handle))

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("💬 Chat endpoint: http://localhost:%s/api/chat", cfg.Port)
	log.Printf("🔌 WebSocket endpoint: ws://localhost:%s/ws/chat", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		agentService.Stop()
		maintenance.Stop()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

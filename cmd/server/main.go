package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/openmatchhq/open-match/server/internal/config"
	"github.com/openmatchhq/open-match/server/internal/database"
	"github.com/openmatchhq/open-match/server/internal/githubapi"
	"github.com/openmatchhq/open-match/server/internal/handler"
	"github.com/openmatchhq/open-match/server/internal/llm"
	"github.com/openmatchhq/open-match/server/internal/notify"
	"github.com/openmatchhq/open-match/server/internal/repository"
	"github.com/openmatchhq/open-match/server/internal/service"
)

// main is the single entry-point for the REST API.
func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  - Database: %s", cfg.DBName)
	log.Printf("  - LLM provider: %s", cfg.LLMProvider)

	// Notification channel (Slack). Without a token it degrades to a no-op.
	var notif notify.Notifier = notify.Nop{}
	if cfg.SlackToken != "" {
		notif = notify.NewSlack(cfg.SlackToken, cfg.SlackChannel)
	}

	// Connect to MongoDB
	client, mongoCtx, cancel, err := database.NewMongo(cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancel()
	defer client.Disconnect(mongoCtx)
	log.Printf("Connected to MongoDB")

	catalog := repository.NewCatalog(client.Database(cfg.DBName))

	// Completion/embedding provider
	var provider llm.Client
	switch cfg.LLMProvider {
	case "vertex":
		provider, err = llm.NewVertex(context.Background(), cfg.ProjectID, cfg.Location)
		if err != nil {
			log.Fatalf("Failed to initialize Vertex AI provider: %v", err)
		}
	default:
		provider = llm.NewOpenAI(cfg.OpenAIKey)
	}
	defer provider.Close()

	// GitHub gateway
	gateway := githubapi.NewClient(cfg.GitHubToken, notif)

	// Services
	indexSvc := service.NewIndexService(gateway, catalog, provider, notif)
	summarySvc := service.NewSummaryService(catalog, provider, notif)
	syncSvc := service.NewSyncService(catalog, gateway, indexSvc, summarySvc, provider, notif)
	profileSvc := service.NewProfileService(provider, notif)
	matchSvc := service.NewMatchService(catalog, service.NewPlaceholderScorer())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(logger.New())
	app.Use(cors.New())

	// Register routes
	handler.RegisterRoutes(app, cfg.WebhookSecret, syncSvc, profileSvc, matchSvc, client, notif)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openmatchhq/open-match/server/internal/notify"
	"github.com/openmatchhq/open-match/server/internal/service"
)

// RegisterRoutes mounts every endpoint on the app.
func RegisterRoutes(app *fiber.App,
	webhookSecret string,
	syncSvc *service.SyncService,
	profileSvc *service.ProfileService,
	matchSvc *service.MatchService,
	db *mongo.Client,
	notif notify.Notifier,
) {
	NewWebhookHandler(webhookSecret, syncSvc, notif).Register(app)
	NewHealthHandler(db).Register(app)

	v1 := app.Group("/api/v1")
	NewMatchHandler(profileSvc, matchSvc).Register(v1)
	NewIssuesHandler(matchSvc).Register(v1)
}

package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/presencematic/whatsapp-orders/internal/config"
	"github.com/presencematic/whatsapp-orders/internal/handlers"
	"github.com/presencematic/whatsapp-orders/internal/middleware"
	"github.com/presencematic/whatsapp-orders/internal/storage"
)

// SetupRoutes configures all routes
func SetupRoutes(app *fiber.App, cfg *config.Config, whatsapp *handlers.WhatsAppHandler, health *handlers.HealthHandler, orders *storage.DatabaseOrderSink) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to PresenceMatic Café!",
			"version": health.Version,
			"endpoints": fiber.Map{
				"health":        "/health",
				"bot":           "/bot",
				"webhook":       "/webhook/whatsapp",
				"test_whatsapp": "/test/whatsapp",
			},
		})
	})

	app.Get("/health", health.Check)

	// ========== WEBHOOK ROUTES ==========
	webhookChain := []fiber.Handler{whatsapp.HandleWebhook}
	if cfg.ValidateWebhooks() {
		// Production: Validate webhook signature
		webhookChain = append([]fiber.Handler{middleware.ValidateTwilioSignature(cfg.TwilioAuthToken, cfg.PublicBaseURL)}, webhookChain...)
	} else {
		log.Println("⚠️  WhatsApp webhook validation DISABLED")
	}

	app.Post("/bot", webhookChain...)
	app.Group("/webhook").Post("/whatsapp", webhookChain...)

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", whatsapp.HandleTestWebhook)
	}

	// ========== ADMIN ROUTES ==========
	if orders != nil && cfg.AdminToken != "" {
		admin := app.Group("/admin", middleware.RequireAdminToken(cfg.AdminToken))
		admin.Get("/orders/:sender", handlers.NewOrderHandler(orders).ListBySender)
	}
}

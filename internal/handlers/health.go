package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/presencematic/whatsapp-orders/internal/services"
	"github.com/presencematic/whatsapp-orders/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	sessions storage.SessionStore
	sink     services.OrderSink
	twilio   bool
	checks   map[string]func() error
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, sessions storage.SessionStore, sink services.OrderSink, twilioConfigured bool) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		sessions: sessions,
		sink:     sink,
		twilio:   twilioConfigured,
		checks:   make(map[string]func() error),
	}
}

// AddCheck registers a dependency whose failure marks the service unhealthy
func (h *HealthHandler) AddCheck(name string, check func() error) {
	h.checks[name] = check
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "healthy"
	statusCode := fiber.StatusOK

	dependencies := fiber.Map{}
	for name, check := range h.checks {
		if err := check(); err != nil {
			dependencies[name] = "error: " + err.Error()
			status = "unhealthy"
			statusCode = fiber.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "connected"
	}

	sessions, err := h.sessions.Count(c.UserContext())
	if err != nil {
		status = "unhealthy"
		statusCode = fiber.StatusServiceUnavailable
	}

	_, noSink := h.sink.(services.NoopSink)

	return c.Status(statusCode).JSON(fiber.Map{
		"status":       status,
		"service":      "PresenceMatic Order Bot",
		"version":      h.Version,
		"dependencies": dependencies,
		"services": fiber.Map{
			"sessions":     sessions,
			"order_store":  h.sink.Name(),
			"orders_saved": !noSink,
			"twilio":       h.twilio,
		},
	})
}

package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/twiml"

	"github.com/presencematic/whatsapp-orders/internal/services"
)

const unknownSender = "unknown"

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	orders *services.OrderService
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(orders *services.OrderService) *WhatsAppHandler {
	return &WhatsAppHandler{orders: orders}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // WhatsApp number (whatsapp:+919876543210)
	To         string `form:"To"`   // Your Twilio number
	Body       string `form:"Body"` // Message text
	NumMedia   string `form:"NumMedia"`
}

// HandleWebhook processes an incoming WhatsApp message and answers with TwiML
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload

	// An unreadable payload is answered like an empty message
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
	}

	from := payload.From
	if from == "" {
		from = unknownSender
	}

	log.Printf("📱 WhatsApp Message from %s: %s", from, payload.Body)

	reply := h.orders.HandleMessage(c.UserContext(), from, payload.Body)

	doc, err := twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: reply.Text},
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render reply")
	}

	c.Set(fiber.HeaderContentType, "text/xml; charset=utf-8")
	return c.SendString(doc)
}

// TestWebhookPayload is the JSON body accepted by the development endpoint
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	from := payload.From
	if from == "" {
		from = unknownSender
	}

	log.Printf("🧪 Test webhook received from %s: %s", from, payload.Message)

	reply := h.orders.HandleMessage(c.UserContext(), from, payload.Message)

	log.Printf("📤 Test response generated: %s", reply.Text)

	response := fiber.Map{
		"success":   true,
		"response":  reply.Text,
		"persisted": nil,
	}
	if reply.Persist.Attempted {
		response["persisted"] = reply.Persist.Saved()
		if reply.Persist.Err != nil {
			response["persist_error"] = reply.Persist.Err.Error()
		}
	}
	return c.JSON(response)
}

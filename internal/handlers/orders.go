package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/presencematic/whatsapp-orders/internal/storage"
)

// OrderHandler exposes orders mirrored into the database
type OrderHandler struct {
	orders *storage.DatabaseOrderSink
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *storage.DatabaseOrderSink) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListBySender returns every order a sender has submitted
func (h *OrderHandler) ListBySender(c *fiber.Ctx) error {
	sender, err := url.PathUnescape(c.Params("sender"))
	if err != nil || sender == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid sender")
	}

	orders, err := h.orders.OrdersBySender(c.UserContext(), sender)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load orders")
	}

	return c.JSON(fiber.Map{
		"sender": sender,
		"count":  len(orders),
		"orders": orders,
	})
}

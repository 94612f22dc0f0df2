package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presencematic/whatsapp-orders/internal/models"
	"github.com/presencematic/whatsapp-orders/internal/services"
	"github.com/presencematic/whatsapp-orders/internal/storage"
)

type memorySink struct {
	mu      sync.Mutex
	records []models.OrderRecord
	err     error
}

func (s *memorySink) Append(ctx context.Context, record models.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.err
}

func (s *memorySink) Name() string { return "memory" }

func newTestApp(sink services.OrderSink) (*fiber.App, storage.SessionStore) {
	sessions := storage.NewMemoryStore(0)
	orders := services.NewOrderService(sessions, services.NewConversationEngine(), sink, time.Second)
	h := NewWhatsAppHandler(orders)

	app := fiber.New()
	app.Post("/bot", h.HandleWebhook)
	app.Post("/test/whatsapp", h.HandleTestWebhook)
	return app, sessions
}

func sendWebhook(t *testing.T, app *fiber.App, from, body string) (int, string) {
	t.Helper()
	form := url.Values{}
	if from != "" {
		form.Set("From", from)
	}
	form.Set("Body", body)

	req := httptest.NewRequest(fiber.MethodPost, "/bot", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/xml")
	return resp.StatusCode, string(raw)
}

func TestHandleWebhook_FullConversation(t *testing.T) {
	sink := &memorySink{}
	app, _ := newTestApp(sink)
	from := "whatsapp:+1555"

	status, doc := sendWebhook(t, app, from, "Hi")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, doc, "<Response>")
	assert.Contains(t, doc, "<Message>")
	assert.Contains(t, doc, "Welcome")

	_, doc = sendWebhook(t, app, from, "yes")
	assert.Contains(t, doc, "Cold Coffee")

	_, doc = sendWebhook(t, app, from, "1,3")
	assert.Contains(t, doc, "delivery address")

	_, doc = sendWebhook(t, app, from, "221B Baker St")
	assert.Contains(t, doc, "Thank you")

	require.Len(t, sink.records, 1)
	row := sink.records[0].Row()
	assert.Equal(t, []interface{}{"whatsapp:+1555", "1,3", "221B Baker St", "Pending"}, row[1:])
}

func TestHandleWebhook_EmptyBody(t *testing.T) {
	app, sessions := newTestApp(&memorySink{})

	status, doc := sendWebhook(t, app, "whatsapp:+1555", "  ")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, doc, "receive any message")

	_, err := sessions.Get(context.Background(), "whatsapp:+1555")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestHandleWebhook_MissingSender(t *testing.T) {
	app, sessions := newTestApp(&memorySink{})

	_, doc := sendWebhook(t, app, "", "hello")
	assert.Contains(t, doc, "Welcome")

	session, err := sessions.Get(context.Background(), unknownSender)
	require.NoError(t, err)
	assert.Equal(t, models.StageMenu, session.Stage)
}

func TestHandleTestWebhook(t *testing.T) {
	app, _ := newTestApp(&memorySink{})

	send := func(message string) map[string]interface{} {
		payload, _ := json.Marshal(TestWebhookPayload{From: "+1555", Message: message})
		req := httptest.NewRequest(fiber.MethodPost, "/test/whatsapp", strings.NewReader(string(payload)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	out := send("hi")
	assert.Equal(t, true, out["success"])
	assert.Equal(t, services.ReplyGreeting, out["response"])
	assert.Nil(t, out["persisted"])

	send("yes")
	send("2")
	out = send("Flat 9")
	assert.Equal(t, services.ReplyConfirmation, out["response"])
	assert.Equal(t, true, out["persisted"])
}

func TestHandleTestWebhook_ReportsFailedWrite(t *testing.T) {
	app, _ := newTestApp(services.NoopSink{})

	var last map[string]interface{}
	for _, msg := range []string{"hi", "yes", "2", "Flat 9"} {
		payload, _ := json.Marshal(TestWebhookPayload{From: "+1555", Message: msg})
		req := httptest.NewRequest(fiber.MethodPost, "/test/whatsapp", strings.NewReader(string(payload)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		last = nil
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&last))
		resp.Body.Close()
	}

	assert.Equal(t, services.ReplyConfirmation, last["response"])
	assert.Equal(t, false, last["persisted"])
	assert.Equal(t, services.ErrSinkUnavailable.Error(), last["persist_error"])
}

func TestHandleTestWebhook_InvalidPayload(t *testing.T) {
	app, _ := newTestApp(&memorySink{})

	req := httptest.NewRequest(fiber.MethodPost, "/test/whatsapp", strings.NewReader("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

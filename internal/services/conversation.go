package services

import (
	"strings"
	"time"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// greetings restart the flow from any stage
var greetings = map[string]bool{
	"hi":    true,
	"hello": true,
	"hey":   true,
}

const confirmWord = "yes"

// Outcome is the engine's decision for one inbound message
type Outcome struct {
	// Session is the sender's next session; nil leaves the stored session untouched
	Session *models.Session
	// Reply is always non-empty
	Reply string
	// Persist is the order to append to the order sink, if the message completed one
	Persist *models.OrderRecord
}

// ConversationEngine decides stage transitions and replies. It holds no state
// of its own and never performs I/O.
type ConversationEngine struct {
	now func() time.Time
}

// NewConversationEngine creates an engine that stamps orders with the wall clock
func NewConversationEngine() *ConversationEngine {
	return &ConversationEngine{now: time.Now}
}

// normalize prepares text for keyword comparison
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Next computes the outcome of text arriving from sender while in session.
// A nil session means the sender has not started a conversation.
func (e *ConversationEngine) Next(sender, text string, session *models.Session) Outcome {
	body := strings.TrimSpace(text)
	if body == "" {
		return Outcome{Reply: ReplyEmptyMessage}
	}

	cmd := normalize(body)
	now := e.now()

	// A greeting starts over, dropping anything captured so far
	if greetings[cmd] {
		return Outcome{
			Session: &models.Session{Stage: models.StageMenu, UpdatedAt: now},
			Reply:   ReplyGreeting,
		}
	}

	if session == nil {
		return Outcome{Reply: ReplyFallback}
	}

	switch session.Stage {
	case models.StageMenu:
		if cmd != confirmWord {
			break
		}
		next := session.Clone()
		next.Stage = models.StageOrder
		next.UpdatedAt = now
		return Outcome{Session: next, Reply: ReplyMenu}

	case models.StageOrder:
		next := session.Clone()
		next.Stage = models.StageAddress
		next.Items = body
		next.UpdatedAt = now
		return Outcome{Session: next, Reply: ReplyAskAddress}

	case models.StageAddress:
		next := session.Clone()
		next.Stage = models.StageDone
		next.Address = body
		next.UpdatedAt = now

		record := models.NewOrderRecord(sender, next.Items, next.Address, now)
		return Outcome{Session: next, Reply: ReplyConfirmation, Persist: &record}
	}

	return Outcome{Reply: ReplyFallback}
}

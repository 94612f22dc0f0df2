package storage

import (
	"context"
	"errors"
	"time"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// ErrSessionNotFound is returned when a sender has no stored session
var ErrSessionNotFound = errors.New("session not found")

// SessionStore defines the storage operations for conversation sessions
type SessionStore interface {
	// Get returns the sender's session or ErrSessionNotFound
	Get(ctx context.Context, sender string) (*models.Session, error)
	// Set replaces the sender's session
	Set(ctx context.Context, sender string, session *models.Session) error
	// Delete removes the sender's session, if any
	Delete(ctx context.Context, sender string) error
	// Expire removes sessions last updated before cutoff and reports how many were removed
	Expire(ctx context.Context, cutoff time.Time) (int, error)
	// Count returns the number of stored sessions (for monitoring)
	Count(ctx context.Context) (int, error)
}

package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/presencematic/whatsapp-orders/internal/storage"
)

// SessionSweeper periodically removes sessions nobody has touched for a while
type SessionSweeper struct {
	store    storage.SessionStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewSessionSweeper creates a sweeper that drops sessions older than ttl every interval
func NewSessionSweeper(store storage.SessionStore, ttl, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Start begins sweeping in the background until ctx is cancelled or Stop is called
func (s *SessionSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		log.Println("Session sweeper already running")
		return
	}
	if s.ttl <= 0 || s.interval <= 0 {
		log.Println("⚠️  Session expiry disabled - sessions are kept until restart")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	log.Printf("Starting session sweeper (ttl %v, every %v)", s.ttl, s.interval)
	go s.run(ctx)
}

// Stop halts the sweeper and waits for it to exit
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("Session sweeper stopped")
}

func (s *SessionSweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("⚠️  Session sweep failed: %v", err)
			}
		}
	}
}

// Sweep removes expired sessions once and reports how many were dropped
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.Expire(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("Cleaned up %d expired sessions", removed)
	}
	return removed, nil
}

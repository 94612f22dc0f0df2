package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/presencematic/whatsapp-orders/internal/models"
	"github.com/presencematic/whatsapp-orders/internal/storage"
)

// Notifier is told about the result of every order write
type Notifier interface {
	OrderSaved(ctx context.Context, record models.OrderRecord) error
	OrderNotSaved(ctx context.Context, record models.OrderRecord, cause error) error
}

// PersistResult reports what happened to the order a message completed
type PersistResult struct {
	Attempted bool
	Record    *models.OrderRecord
	Err       error
}

// Saved reports whether an order was written successfully
func (p PersistResult) Saved() bool {
	return p.Attempted && p.Err == nil
}

// Reply is the result of handling one inbound message
type Reply struct {
	Text    string
	Persist PersistResult
}

// OrderService runs inbound messages through the conversation engine
type OrderService struct {
	sessions       storage.SessionStore
	engine         *ConversationEngine
	sink           OrderSink
	notifier       Notifier
	persistTimeout time.Duration
	locks          *senderLocks
}

// NewOrderService creates the order service. A nil sink disables persistence.
func NewOrderService(sessions storage.SessionStore, engine *ConversationEngine, sink OrderSink, persistTimeout time.Duration) *OrderService {
	if sink == nil {
		sink = NoopSink{}
	}
	return &OrderService{
		sessions:       sessions,
		engine:         engine,
		sink:           sink,
		persistTimeout: persistTimeout,
		locks:          newSenderLocks(),
	}
}

// SetNotifier installs a notifier for order write results
func (s *OrderService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Sink returns the configured order sink
func (s *OrderService) Sink() OrderSink {
	return s.sink
}

// HandleMessage processes body from sender and returns the reply to send back.
// The reply never depends on whether the order write succeeded.
func (s *OrderService) HandleMessage(ctx context.Context, sender, body string) Reply {
	// Empty messages never touch the session store
	if strings.TrimSpace(body) == "" {
		return Reply{Text: ReplyEmptyMessage}
	}

	outcome := s.advance(ctx, sender, body)

	reply := Reply{Text: outcome.Reply}
	if outcome.Persist != nil {
		reply.Persist = s.persist(ctx, *outcome.Persist)
	}
	return reply
}

// advance runs the engine for sender while holding the sender's lock
func (s *OrderService) advance(ctx context.Context, sender, body string) Outcome {
	unlock := s.locks.lock(sender)
	defer unlock()

	current, err := s.sessions.Get(ctx, sender)
	if err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			log.Printf("⚠️  Failed to load session for %s: %v", sender, err)
		}
		current = nil
	}

	outcome := s.engine.Next(sender, body, current)
	if outcome.Session != nil {
		if err := s.sessions.Set(ctx, sender, outcome.Session); err != nil {
			log.Printf("⚠️  Failed to save session for %s: %v", sender, err)
		}
	}
	return outcome
}

// persist makes one bounded attempt to append the order and applies the result policy
func (s *OrderService) persist(ctx context.Context, record models.OrderRecord) PersistResult {
	result := PersistResult{Attempted: true, Record: &record}

	writeCtx := ctx
	if s.persistTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, s.persistTimeout)
		defer cancel()
	}

	result.Err = s.sink.Append(writeCtx, record)
	switch {
	case result.Err == nil:
		log.Printf("✅ Order saved to %s: %v", s.sink.Name(), record.Row())
	case errors.Is(result.Err, ErrSinkUnavailable):
		log.Printf("⚠️  Sheet not available; order not saved: %v", record.Row())
	default:
		log.Printf("⚠️  Failed to save order to %s: %v", s.sink.Name(), result.Err)
	}

	s.notify(record, result.Err)
	return result
}

// notify alerts staff in the background so the reply is not delayed
func (s *OrderService) notify(record models.OrderRecord, cause error) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		if cause == nil {
			err = s.notifier.OrderSaved(ctx, record)
		} else {
			err = s.notifier.OrderNotSaved(ctx, record, cause)
		}
		if err != nil {
			log.Printf("❌ Failed to alert staff about order from %s: %v", record.Sender, err)
		}
	}()
}

// senderLocks serializes work per sender. Entries are dropped once nobody holds them.
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	sync.Mutex
	refs int
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*senderLock)}
}

func (l *senderLocks) lock(sender string) func() {
	l.mu.Lock()
	sl, ok := l.locks[sender]
	if !ok {
		sl = &senderLock{}
		l.locks[sender] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.Lock()
	return func() {
		sl.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sender)
		}
		l.mu.Unlock()
	}
}

func (l *senderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

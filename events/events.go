package events

import (
	"context"
	"sync"

	"casino/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeAccountCreated EventType = "account_created"
	EventTypeDuelResolved   EventType = "duel_resolved"
	EventTypeRouletteSpun   EventType = "roulette_spun"
	EventTypeLotteryEnded   EventType = "lottery_ended"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	DiscordID       int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account registration
type AccountCreatedEvent struct {
	DiscordID      int64
	Username       string
	InitialBalance int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// DuelResolvedEvent represents a finished blackjack duel
type DuelResolvedEvent struct {
	SessionID string
	WinnerID  int64
	LoserID   int64
	Wager     int64
	Draw      bool
}

func (e DuelResolvedEvent) Type() EventType {
	return EventTypeDuelResolved
}

// RouletteSpunEvent represents a resolved roulette round
type RouletteSpunEvent struct {
	TableID    string
	WinningNum int
	Players    int
	Winners    int
}

func (e RouletteSpunEvent) Type() EventType {
	return EventTypeRouletteSpun
}

// LotteryEndedEvent represents a lottery round that was resolved.
// WinnerID is nil when the round closed with no entries. ChannelID is
// the channel the round was announced in, carried from the persisted
// round so subscribers can report results after a restart.
type LotteryEndedEvent struct {
	LotteryID int64
	WinnerID  *int64
	Prize     int64
	Entries   int
	Forced    bool
	ChannelID string
}

func (e LotteryEndedEvent) Type() EventType {
	return EventTypeLotteryEnded
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers. Handlers run on
// their own goroutines so a slow or panicking subscriber cannot block a
// game resolution.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events raised inside a unit of work and
// flushes them to the real bus only after the database commit, so
// subscribers never observe a change that was rolled back.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
// Events are emitted on a background context so they outlive the
// transaction's deadline.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Event types emitted by the reward engine.
const (
	LootBoxEarned  Type = "loot.box.earned"
	LootBoxOpened  Type = "loot.box.opened"
	LootBoxClaimed Type = "loot.box.claimed"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// LootBoxEarnedPayloadV1 is the typed payload for box mint events
type LootBoxEarnedPayloadV1 struct {
	UserID       string `json:"user_id"`
	Level        int    `json:"level"`
	Created      int    `json:"created"`
	PendingCount int    `json:"pending_count"`
	Source       string `json:"source,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// LootBoxOpenedPayloadV1 is the typed payload for box open events
type LootBoxOpenedPayloadV1 struct {
	UserID    string `json:"user_id"`
	BoxID     string `json:"box_id"`
	Tier      string `json:"tier"`
	DropCount int    `json:"drop_count"`
	Timestamp int64  `json:"timestamp"`
}

// LootBoxClaimedPayloadV1 is the typed payload for claim settlement events
type LootBoxClaimedPayloadV1 struct {
	UserID      string `json:"user_id"`
	Claimed     int    `json:"claimed"`
	TokensAdded int    `json:"tokens_added"`
	XPAdded     int    `json:"xp_added"`
	Timestamp   int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewLootBoxEarnedEvent creates a mint event describing the aggregate grant
func NewLootBoxEarnedEvent(userID string, level, created, pendingCount int, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootBoxEarned,
		Payload: LootBoxEarnedPayloadV1{
			UserID:       userID,
			Level:        level,
			Created:      created,
			PendingCount: pendingCount,
			Source:       source,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewLootBoxOpenedEvent creates an open event for one box
func NewLootBoxOpenedEvent(userID, boxID, tier string, dropCount int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootBoxOpened,
		Payload: LootBoxOpenedPayloadV1{
			UserID:    userID,
			BoxID:     boxID,
			Tier:      tier,
			DropCount: dropCount,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewLootBoxClaimedEvent creates a claim settlement event
func NewLootBoxClaimedEvent(userID string, claimed, tokensAdded, xpAdded int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LootBoxClaimed,
		Payload: LootBoxClaimedPayloadV1{
			UserID:      userID,
			Claimed:     claimed,
			TokensAdded: tokensAdded,
			XPAdded:     xpAdded,
			Timestamp:   time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers execute synchronously; the resilient publisher shields
	// request paths from handler failures.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

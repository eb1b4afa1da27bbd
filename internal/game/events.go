package game

import (
	"github.com/lox/bjtrainer/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for engine events
const (
	EventTypeRoundStart    EventType = "round_start"
	EventTypeReshuffle     EventType = "reshuffle"
	EventTypePlayerAction  EventType = "player_action"
	EventTypeDealerCard    EventType = "dealer_card"
	EventTypeRoundEnd      EventType = "round_end"
	EventTypeCountVerified EventType = "count_verified"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens during a session
type GameEvent interface {
	EventType() EventType
	RoundNumber() int
}

// RoundStartEvent is published after the initial deal
type RoundStartEvent struct {
	Round int
	Bet   int
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) RoundNumber() int     { return e.Round }

// ReshuffleEvent is published when the shoe is rebuilt, normally before a
// round and, if the shoe runs dry, from the discards mid-round
type ReshuffleEvent struct {
	Round int
	// CountBefore is the running count discarded by the reshuffle
	CountBefore int
	// MidRound is set when the discards were shuffled back in during play
	MidRound bool
}

func (e ReshuffleEvent) EventType() EventType { return EventTypeReshuffle }
func (e ReshuffleEvent) RoundNumber() int     { return e.Round }

// PlayerActionEvent is published for every accepted player decision
type PlayerActionEvent struct {
	Round    int
	Feedback Feedback
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) RoundNumber() int     { return e.Round }

// DealerCardEvent is published for the hole card reveal and each dealer draw
type DealerCardEvent struct {
	Round int
	Card  deck.Card
	Total int
}

func (e DealerCardEvent) EventType() EventType { return EventTypeDealerCard }
func (e DealerCardEvent) RoundNumber() int     { return e.Round }

// RoundEndEvent is published once every hand is resolved
type RoundEndEvent struct {
	Round    int
	Results  []Result
	Bankroll int
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) RoundNumber() int     { return e.Round }

// CountVerifiedEvent is published when a count guess is graded
type CountVerifiedEvent struct {
	Round   int
	Guess   int
	Actual  int
	Correct bool
}

func (e CountVerifiedEvent) EventType() EventType { return EventTypeCountVerified }
func (e CountVerifiedEvent) RoundNumber() int     { return e.Round }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation. Delivery is
// synchronous, in subscription order.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}

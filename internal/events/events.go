// Package events fans order lifecycle changes out to the live board and,
// when configured, to a RabbitMQ exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/ghanu-pos/api/internal/model"
	"github.com/ghanu-pos/api/internal/ws"
	"github.com/google/uuid"
)

// Event describes one order transition.
type Event struct {
	ID          uuid.UUID   `json:"id"`
	Type        string      `json:"type"`
	OrderNumber int         `json:"order_number"`
	Status      string      `json:"status"`
	Total       string      `json:"total"`
	Actor       string      `json:"actor,omitempty"`
	At          time.Time   `json:"at"`
	Order       model.Order `json:"order"`
}

// New builds an event for order o.
func New(eventType string, o model.Order, actor string) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		OrderNumber: o.OrderNumber,
		Status:      o.Status.String(),
		Total:       o.Total.StringFixed(2),
		Actor:       actor,
		At:          time.Now().UTC(),
		Order:       o,
	}
}

// Publisher delivers order events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HubPublisher pushes events to websocket clients on a topic.
type HubPublisher struct {
	hub   *ws.Hub
	topic string
}

func NewHubPublisher(hub *ws.Hub, topic string) *HubPublisher {
	return &HubPublisher{hub: hub, topic: topic}
}

func (p *HubPublisher) Publish(_ context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.hub.Broadcast(p.topic, ws.Event{Type: e.Type, Payload: payload})
	return nil
}

// Logged wraps a publisher so failures are logged instead of returned.
// Order workflow must not fail because a subscriber is down.
type Logged struct {
	Next Publisher
}

func (l Logged) Publish(ctx context.Context, e Event) error {
	if err := l.Next.Publish(ctx, e); err != nil {
		log.Printf("ERROR: publish %s for order %d: %v", e.Type, e.OrderNumber, err)
	}
	return nil
}

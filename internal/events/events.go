// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events publishes structural-change notifications over Valkey
// pub/sub. Delivery is best-effort and fire-and-forget: a failed
// publish is logged and never fails the mutation that triggered it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Valkey pub/sub channel structural changes go out on.
const Channel = "shopcms:category-events"

// Event is the wire shape of one structural-change notification.
type Event struct {
	Type       string    `json:"type"`
	CategoryID uuid.UUID `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits category events to Valkey.
type Publisher struct {
	client *redis.Client
}

// NewPublisher returns a publisher over the given Valkey client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Notify publishes one event. Errors are logged, not returned — the
// engine's correctness never depends on delivery.
func (p *Publisher) Notify(ctx context.Context, event string, categoryID uuid.UUID) {
	payload, err := json.Marshal(Event{
		Type:       event,
		CategoryID: categoryID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		slog.Warn("event marshal failed", "event", event, "error", err)
		return
	}

	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		slog.Warn("event publish failed", "event", event, "category_id", categoryID, "error", err)
		return
	}
	slog.Debug("event published", "event", event, "category_id", categoryID)
}

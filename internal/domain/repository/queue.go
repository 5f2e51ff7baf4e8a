package repository

import (
	"context"
	"time"
)

// Catalog event operations.
const (
	OpCreated       = "created"
	OpUpdated       = "updated"
	OpDeleted       = "deleted"
	OpMediaReplaced = "media_replaced"
)

// Entity types carried by catalog events.
const (
	EntityVideo      = "video"
	EntityCategory   = "category"
	EntityGenre      = "genre"
	EntityCastMember = "cast_member"
)

// CatalogEvent is the integration message published after a unit of work
// commits. The indexer consumes it, reloads the aggregate from the source of
// truth and refreshes the search projection.
type CatalogEvent struct {
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Operation  string    `json:"operation"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventBus defines the interface for publishing and consuming catalog events.
// Implementations should be provided by the infrastructure layer (e.g. RabbitMQ).
type EventBus interface {
	// Publish sends catalog events. Must only be called after the writes the
	// events describe are durable.
	Publish(ctx context.Context, events []CatalogEvent) error

	// Consume starts consuming catalog events, invoking handler for each.
	// A handler error leaves the message for redelivery.
	Consume(ctx context.Context, handler func(event CatalogEvent) error) error

	// Close gracefully closes the connection to the broker.
	Close() error
}

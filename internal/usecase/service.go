// Package usecase contains the application services orchestrating the domain
// aggregates, the unit of work and the infrastructure ports.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hszk-dev/catalog/internal/domain/model"
	"github.com/hszk-dev/catalog/internal/domain/repository"
	"github.com/hszk-dev/catalog/internal/infrastructure/metrics"
)

// Repositories bundles the relational repositories bound to one unit of work.
type Repositories struct {
	Videos      repository.VideoRepository
	Categories  repository.CategoryRepository
	Genres      repository.GenreRepository
	CastMembers repository.CastMemberRepository
}

// UnitOfWorkFactory builds a fresh unit of work plus the repositories bound
// to it. Every logical operation gets its own instance; the unit of work is
// never shared across operations.
type UnitOfWorkFactory func() (repository.UnitOfWork, Repositories)

// publishCommitted publishes the catalog event for a committed operation,
// plus one media-replaced event per replaced audio/video slot recorded by the
// aggregates the unit of work collected. Publish failures are logged, not
// propagated: the write is already durable and the projection catches up on
// the next event for the same entity.
func publishCommitted(ctx context.Context, bus repository.EventBus, uow repository.UnitOfWork, entityType, entityID, operation string) {
	events := []repository.CatalogEvent{{
		EntityType: entityType,
		EntityID:   entityID,
		Operation:  operation,
		OccurredAt: time.Now().UTC(),
	}}
	for _, root := range uow.AggregateRoots() {
		for _, e := range root.Events() {
			if _, ok := e.(model.VideoAudioMediaReplaced); ok {
				events = append(events, repository.CatalogEvent{
					EntityType: repository.EntityVideo,
					EntityID:   root.EntityID(),
					Operation:  repository.OpMediaReplaced,
					OccurredAt: e.OccurredAt(),
				})
			}
		}
		root.ClearEvents()
	}

	if err := bus.Publish(ctx, events); err != nil {
		slog.Warn("failed to publish catalog events",
			"entity_type", entityType,
			"entity_id", entityID,
			"operation", operation,
			"error", err,
		)
		return
	}
	for _, e := range events {
		metrics.EventsPublishedTotal.WithLabelValues(e.EntityType, e.Operation).Inc()
	}
}

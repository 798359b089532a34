package services

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/events"
	"go-storefront/utils"
)

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid " + what + " id")
	}
	return id, nil
}

// publish emits an event and only logs failures; events never fail the
// request that produced them.
func publish(ctx context.Context, p Publisher, logger *slog.Logger, topic, eventType, aggregateID, aggregateType string, data any) {
	if p == nil {
		return
	}
	event, err := events.NewEvent(eventType, aggregateID, aggregateType, data)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}
	event.WithCorrelationID(utils.CorrelationIDFromContext(ctx))

	if err := p.Publish(ctx, topic, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("aggregate_id", aggregateID),
			slog.String("error", err.Error()),
		)
	}
}

package service

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// publish never fails the caller; a lost event is only logged.
func publish(ctx context.Context, pub events.Publisher, topic string, ev events.Event) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, events.Key(ev.EntityID), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed",
			"topic", topic, "type", ev.Type, "entity_id", ev.EntityID, "error", err)
	}
}

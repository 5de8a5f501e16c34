package events

import (
	"strconv"
	"time"
)

type Event struct {
	Type       string         `json:"type"`
	EntityID   uint           `json:"entity_id"`
	UserID     uint           `json:"user_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func New(typ string, entityID, userID uint, payload map[string]any) Event {
	return Event{
		Type:       typ,
		EntityID:   entityID,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

func Key(id uint) string { return strconv.FormatUint(uint64(id), 10) }

package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/valcriss/sovrane/internal"
)

// EventTypeEntityChanged is published after every successful mutation so
// connected subscribers can refresh the entity. The payload deliberately
// carries only the entity kind, id, action and acting user; the caller
// already got the full entity in the response.
const EventTypeEntityChanged = "entity.changed"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	KindUser       = "user"
	KindDepartment = "department"
	KindSite       = "site"
	KindUserGroup  = "user-group"
	KindPermission = "permission"
	KindRole       = "role"
)

func NewEntityChangedEvent(ctx context.Context, kind, entityID, action string) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeEntityChanged,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"kind":     kind,
			"id":       entityID,
			"action":   action,
			"actor_id": internal.ActorIDFromContext(ctx),
		},
	}
}

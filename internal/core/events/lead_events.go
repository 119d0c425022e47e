package events

import (
	"time"

	"github.com/google/uuid"
)

// Lead lifecycle event types. The audit recorder subscribes to all of them;
// recording failures never propagate back into the business operation.
const (
	EventLeadCreated         = "lead.created"
	EventLeadAssigned        = "lead.assigned"
	EventLeadPriorityChanged = "lead.priority_changed"
	EventLeadDeleted         = "lead.deleted"
)

// NewLeadEvent builds a lead lifecycle event. The actor and lead IDs are
// always present in the payload; callers add change-specific fields.
func NewLeadEvent(eventType string, actorID, leadID int64, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["actor_id"] = actorID
	data["lead_id"] = leadID

	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/lead-management/internal/core/events"
)

// Recorder turns lead lifecycle events into audit entries. It subscribes to
// the event bus, so recording runs off the request path; a failed write is
// logged and dropped, never surfaced to the caller that changed the lead.
type Recorder struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger.With("component", "audit_recorder"),
	}
}

// Register wires the recorder to every lead lifecycle event type.
func (r *Recorder) Register(bus *events.EventBus) {
	for _, eventType := range []string{
		events.EventLeadCreated,
		events.EventLeadAssigned,
		events.EventLeadPriorityChanged,
		events.EventLeadDeleted,
	} {
		bus.Subscribe(eventType, r.HandleLeadEvent)
	}
}

func (r *Recorder) HandleLeadEvent(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload type for event %s", event.EventType())
	}

	entry := &Entry{
		ActorID:     asInt64(data["actor_id"]),
		Action:      event.EventType(),
		Description: describe(event.EventType(), data),
		SubjectType: SubjectLead,
		SubjectID:   asInt64(data["lead_id"]),
		Before:      snapshotJSON(data["before"]),
		After:       snapshotJSON(data["after"]),
		CreatedAt:   event.OccurredAt(),
	}

	if err := r.repo.Append(toDataModel(entry)); err != nil {
		r.logger.Error("failed to append audit entry",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"lead_id", entry.SubjectID,
			"error", err)
		return err
	}

	r.logger.Debug("audit entry recorded",
		"action", entry.Action,
		"actor_id", entry.ActorID,
		"lead_id", entry.SubjectID)
	return nil
}

// Trail returns the recorded entries for one lead, oldest first.
func (r *Recorder) Trail(leadID int64) ([]*Entry, error) {
	models, err := r.repo.ForSubject(SubjectLead, leadID)
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(models))
	for _, m := range models {
		entries = append(entries, fromDataModel(m))
	}
	return entries, nil
}

func describe(eventType string, data map[string]interface{}) string {
	switch eventType {
	case events.EventLeadCreated:
		return "lead created"
	case events.EventLeadAssigned:
		if to, ok := data["new_assignee"]; ok {
			return fmt.Sprintf("lead assigned to user %v", to)
		}
		return "lead unassigned"
	case events.EventLeadPriorityChanged:
		return fmt.Sprintf("priority changed from %v to %v", data["old_priority"], data["new_priority"])
	case events.EventLeadDeleted:
		return "lead deleted"
	default:
		return eventType
	}
}

func snapshotJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		parsed, _ := n.Int64()
		return parsed
	default:
		return 0
	}
}

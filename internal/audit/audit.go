package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/audit"
)

// Entry is one audit fact: who did what to which subject, with optional
// before/after JSON snapshots. Entries are append-only.
type Entry struct {
	ID          int64     `json:"id"`
	ActorID     int64     `json:"actor_id"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	SubjectType string    `json:"subject_type"`
	SubjectID   int64     `json:"subject_id"`
	Before      string    `json:"before,omitempty"`
	After       string    `json:"after,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const SubjectLead = "lead"

// RepositoryAPI defines the append-only audit store.
type RepositoryAPI interface {
	Append(entry *auditDatamodel.Activity) error
	ForSubject(subjectType string, subjectID int64) ([]*auditDatamodel.Activity, error)
}

func toDataModel(e *Entry) *auditDatamodel.Activity {
	return &auditDatamodel.Activity{
		ActorID:     e.ActorID,
		Action:      e.Action,
		Description: e.Description,
		SubjectType: e.SubjectType,
		SubjectID:   e.SubjectID,
		Before:      e.Before,
		After:       e.After,
		CreatedAt:   e.CreatedAt,
	}
}

func fromDataModel(m *auditDatamodel.Activity) *Entry {
	return &Entry{
		ID:          m.ID,
		ActorID:     m.ActorID,
		Action:      m.Action,
		Description: m.Description,
		SubjectType: m.SubjectType,
		SubjectID:   m.SubjectID,
		Before:      m.Before,
		After:       m.After,
		CreatedAt:   m.CreatedAt,
	}
}

package lead

import (
	"time"

	leadDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/lead"
)

// Priority is the sales-funnel classification of a lead. The set is fixed;
// Closing and Lost are terminal.
type Priority string

const (
	PriorityCold    Priority = "Cold"
	PriorityWarm    Priority = "Warm"
	PriorityHot     Priority = "Hot"
	PriorityBooking Priority = "Booking"
	PriorityClosing Priority = "Closing"
	PriorityLost    Priority = "Lost"
)

// AllPriorities returns every priority in funnel order. Aggregations iterate
// this so that absent priorities still show up zero-filled.
func AllPriorities() []Priority {
	return []Priority{PriorityCold, PriorityWarm, PriorityHot, PriorityBooking, PriorityClosing, PriorityLost}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityCold, PriorityWarm, PriorityHot, PriorityBooking, PriorityClosing, PriorityLost:
		return true
	}
	return false
}

func (p Priority) IsTerminal() bool {
	return p == PriorityClosing || p == PriorityLost
}

// statusVocabulary is the curated status set; each status belongs to exactly
// one priority band.
var statusVocabulary = map[string]Priority{
	"New Inquiry":          PriorityCold,
	"No Answer":            PriorityCold,
	"Follow Up Later":      PriorityCold,
	"Interested":           PriorityWarm,
	"Requested Info":       PriorityWarm,
	"Call Back Scheduled":  PriorityWarm,
	"Site Visit Scheduled": PriorityHot,
	"Site Visit Done":      PriorityHot,
	"Negotiation":          PriorityHot,
	"Booking Form Filled":  PriorityBooking,
	"Down Payment Pending": PriorityBooking,
	"Contract Signed":      PriorityClosing,
	"Fully Paid":           PriorityClosing,
	"Handover Done":        PriorityClosing,
	"Not Interested":       PriorityLost,
	"Budget Mismatch":      PriorityLost,
	"Bought Elsewhere":     PriorityLost,
	"Unreachable":          PriorityLost,
}

// PriorityForStatus resolves the priority band a status belongs to.
func PriorityForStatus(status string) (Priority, bool) {
	p, ok := statusVocabulary[status]
	return p, ok
}

// StatusesForPriority lists the curated statuses within one priority band.
func StatusesForPriority(p Priority) []string {
	var statuses []string
	for status, prio := range statusVocabulary {
		if prio == p {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// StatusBelongsTo reports whether status is valid within the given priority.
func StatusBelongsTo(status string, p Priority) bool {
	prio, ok := statusVocabulary[status]
	return ok && prio == p
}

// Lead is a prospective customer tracked through the sales funnel.
// ManagerID/SupervisorID are a denormalized snapshot of the assignee's
// hierarchy links taken at assignment time; they must be re-synced whenever
// AssignedTo changes or visibility scoping silently breaks.
type Lead struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Project      string    `json:"project,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	Priority     Priority  `json:"priority"`
	Status       string    `json:"status"`
	Description  string    `json:"description,omitempty"`
	AssignedTo   *int64    `json:"assigned_to,omitempty"`
	CreatedBy    int64     `json:"created_by"`
	ManagerID    *int64    `json:"manager_id,omitempty"`
	SupervisorID *int64    `json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (l *Lead) IsAssigned() bool {
	return l.AssignedTo != nil
}

func (l *Lead) IsTerminal() bool {
	return l.Priority.IsTerminal()
}

// History records one priority transition of a lead. Append-only: entries are
// never mutated or deleted once written.
type History struct {
	ID          int64     `json:"id"`
	LeadID      int64     `json:"lead_id"`
	OldPriority Priority  `json:"old_priority,omitempty"`
	NewPriority Priority  `json:"new_priority"`
	Description string    `json:"description,omitempty"`
	ActorID     int64     `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToDataModel(l *Lead) *leadDatamodel.Lead {
	return &leadDatamodel.Lead{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Project:      l.Project,
		Unit:         l.Unit,
		Priority:     string(l.Priority),
		Status:       l.Status,
		Description:  l.Description,
		AssignedTo:   l.AssignedTo,
		CreatedBy:    l.CreatedBy,
		ManagerID:    l.ManagerID,
		SupervisorID: l.SupervisorID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func FromDataModel(l *leadDatamodel.Lead) *Lead {
	return &Lead{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Project:      l.Project,
		Unit:         l.Unit,
		Priority:     Priority(l.Priority),
		Status:       l.Status,
		Description:  l.Description,
		AssignedTo:   l.AssignedTo,
		CreatedBy:    l.CreatedBy,
		ManagerID:    l.ManagerID,
		SupervisorID: l.SupervisorID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func FromDataModelSlice(leads []*leadDatamodel.Lead) []*Lead {
	result := make([]*Lead, len(leads))
	for i, l := range leads {
		result[i] = FromDataModel(l)
	}
	return result
}

func HistoryFromDataModel(h *leadDatamodel.History) *History {
	return &History{
		ID:          h.ID,
		LeadID:      h.LeadID,
		OldPriority: Priority(h.OldPriority),
		NewPriority: Priority(h.NewPriority),
		Description: h.Description,
		ActorID:     h.ActorID,
		CreatedAt:   h.CreatedAt,
	}
}

package lead

import (
	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// AssigneeLookup resolves a lead's assignee to their current hierarchy links.
// Both CanAccess and Scope.Matches go through the same lookup so the two
// access paths cannot drift apart.
type AssigneeLookup func(userID int64) (hierarchy.Member, bool)

// CanAccess is the single-lead access decision used for show/edit/delete.
// Callers must treat false as a hard authorization failure, never as "show
// partial data". First match wins:
//
//	superadmin  -> always
//	manager     -> creator, assignee, snapshot manager, or assignee's manager
//	supervisor  -> creator, assignee, snapshot supervisor, or assignee's supervisor
//	agent       -> assignee or creator
//	no role     -> never
func CanAccess(user hierarchy.Member, l *Lead, lookup AssigneeLookup) bool {
	switch user.EffectiveRole() {
	case hierarchy.RoleSuperadmin:
		return true

	case hierarchy.RoleManager:
		if l.CreatedBy == user.ID {
			return true
		}
		if l.AssignedTo != nil && *l.AssignedTo == user.ID {
			return true
		}
		if l.ManagerID != nil && *l.ManagerID == user.ID {
			return true
		}
		return assigneeLinkedTo(l, user.ID, lookup, func(m hierarchy.Member) *int64 { return m.ManagerID })

	case hierarchy.RoleSupervisor:
		if l.CreatedBy == user.ID {
			return true
		}
		if l.AssignedTo != nil && *l.AssignedTo == user.ID {
			return true
		}
		if l.SupervisorID != nil && *l.SupervisorID == user.ID {
			return true
		}
		return assigneeLinkedTo(l, user.ID, lookup, func(m hierarchy.Member) *int64 { return m.SupervisorID })

	case hierarchy.RoleAgent:
		if l.AssignedTo != nil && *l.AssignedTo == user.ID {
			return true
		}
		return l.CreatedBy == user.ID
	}

	return false
}

func assigneeLinkedTo(l *Lead, userID int64, lookup AssigneeLookup, link func(hierarchy.Member) *int64) bool {
	if l.AssignedTo == nil || lookup == nil {
		return false
	}
	assignee, ok := lookup(*l.AssignedTo)
	if !ok {
		return false
	}
	id := link(assignee)
	return id != nil && *id == userID
}

package hierarchy

// CanAssign decides whether actor may set or change a lead's assignee to
// candidate. It is pure: the caller is responsible for re-syncing the lead's
// hierarchy snapshot from the candidate's current links atomically with the
// assignment itself.
//
// Rules:
//   - superadmin may assign to any agent
//   - manager may assign to agents whose ManagerID is the actor
//   - supervisor may assign to agents whose SupervisorID is the actor
//   - agent may only self-assign
func CanAssign(actor, candidate Member) bool {
	// only agents carry leads
	if candidate.EffectiveRole() != RoleAgent {
		return false
	}

	switch actor.EffectiveRole() {
	case RoleSuperadmin:
		return true
	case RoleManager:
		return candidate.ManagerID != nil && *candidate.ManagerID == actor.ID
	case RoleSupervisor:
		return candidate.SupervisorID != nil && *candidate.SupervisorID == actor.ID
	case RoleAgent:
		return actor.ID == candidate.ID
	}
	return false
}

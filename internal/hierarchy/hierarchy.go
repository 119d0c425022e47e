package hierarchy

// Role is the single authority-determining role of a user. Users may hold
// several role labels in storage; access decisions always branch on the
// effective (highest precedence) role.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleAgent      Role = "agent"
	RoleNone       Role = ""
)

// precedence: superadmin > manager > supervisor > agent. Unknown labels rank
// below everything and never grant access.
var rolePrecedence = map[Role]int{
	RoleSuperadmin: 4,
	RoleManager:    3,
	RoleSupervisor: 2,
	RoleAgent:      1,
}

func AllRoles() []Role {
	return []Role{RoleSuperadmin, RoleManager, RoleSupervisor, RoleAgent}
}

func IsValidRole(label string) bool {
	_, ok := rolePrecedence[Role(label)]
	return ok
}

// EffectiveRole picks the highest-precedence role from a set of role labels.
// Empty or fully unknown sets yield RoleNone.
func EffectiveRole(labels []string) Role {
	best := RoleNone
	bestRank := 0
	for _, label := range labels {
		if rank, ok := rolePrecedence[Role(label)]; ok && rank > bestRank {
			best = Role(label)
			bestRank = rank
		}
	}
	return best
}

// Member is a user's position in the organizational hierarchy, as supplied by
// the identity collaborator. ManagerID and SupervisorID are back-references to
// the users above this member, nil when not set.
type Member struct {
	ID           int64
	Name         string
	Roles        []string
	ManagerID    *int64
	SupervisorID *int64
}

func (m Member) EffectiveRole() Role {
	return EffectiveRole(m.Roles)
}

func (m Member) HasRole(role Role) bool {
	for _, label := range m.Roles {
		if Role(label) == role {
			return true
		}
	}
	return false
}

// DirectReports returns the members whose hierarchy link points at `of`,
// filtered by the link field appropriate for the caller's effective role:
// managers match on ManagerID, supervisors on SupervisorID. A superadmin gets
// every agent; agents have no reports.
func DirectReports(of Member, all []Member) []Member {
	var reports []Member
	switch of.EffectiveRole() {
	case RoleSuperadmin:
		for _, m := range all {
			if m.EffectiveRole() == RoleAgent {
				reports = append(reports, m)
			}
		}
	case RoleManager:
		for _, m := range all {
			if m.ManagerID != nil && *m.ManagerID == of.ID && m.ID != of.ID {
				reports = append(reports, m)
			}
		}
	case RoleSupervisor:
		for _, m := range all {
			if m.SupervisorID != nil && *m.SupervisorID == of.ID && m.ID != of.ID {
				reports = append(reports, m)
			}
		}
	}
	return reports
}

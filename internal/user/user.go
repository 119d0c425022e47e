package user

import (
	"time"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// User is a CRM account with its position in the management hierarchy.
// Accounts are never hard-deleted; IsActive is the soft state.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Roles        []string  `json:"roles,omitempty"`
	ManagerID    *int64    `json:"manager_id,omitempty"`
	SupervisorID *int64    `json:"supervisor_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Member() hierarchy.Member {
	return hierarchy.Member{
		ID:           u.ID,
		Name:         u.Name,
		Roles:        u.Roles,
		ManagerID:    u.ManagerID,
		SupervisorID: u.SupervisorID,
	}
}

func (u *User) EffectiveRole() hierarchy.Role {
	return hierarchy.EffectiveRole(u.Roles)
}

package user

import (
	"errors"
	"strings"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// CreateUserDTO is the administrator payload for creating an account.
type CreateUserDTO struct {
	Email        string   `json:"email" validate:"required,email"`
	Name         string   `json:"name" validate:"required"`
	Password     string   `json:"password" validate:"required,min=8"`
	Roles        []string `json:"roles" validate:"required,min=1"`
	ManagerID    *int64   `json:"manager_id,omitempty"`
	SupervisorID *int64   `json:"supervisor_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(dto.Roles) == 0 {
		return errors.New("at least one role is required")
	}
	for _, role := range dto.Roles {
		if !hierarchy.IsValidRole(role) {
			return errors.New("unknown role: " + role)
		}
	}
	return nil
}

// ReassignHierarchyDTO moves a user under a different manager/supervisor.
// Existing leads keep their snapshot until they are themselves reassigned.
type ReassignHierarchyDTO struct {
	ManagerID    *int64 `json:"manager_id"`
	SupervisorID *int64 `json:"supervisor_id"`
}

package user

import (
	"log/slog"

	internal "github.com/frahmantamala/lead-management/internal"
	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

// Repository defines the data access methods for users.
type Repository interface {
	GetByID(userID int64) (*User, error)
	GetAll() ([]*User, error)
	Create(u *User, passwordHash string) error
	GrantRoles(userID int64, roles []string, grantedBy int64) error
	UpdateHierarchy(userID int64, managerID, supervisorID *int64) error
	Deactivate(userID int64) error
}

// PasswordHasher is satisfied by the auth package's bcrypt helpers.
type PasswordHasher func(password string, cost int) (string, error)

type Service struct {
	repo       Repository
	hash       PasswordHasher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, hash PasswordHasher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		hash:       hash,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// Member satisfies lead.UserDirectory.
func (s *Service) Member(userID int64) (hierarchy.Member, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return hierarchy.Member{}, internal.ErrUserNotFound
	}
	return u.Member(), nil
}

// Members satisfies analytics.Directory.
func (s *Service) Members() ([]hierarchy.Member, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	members := make([]hierarchy.Member, len(users))
	for i, u := range users {
		members[i] = u.Member()
	}
	return members, nil
}

// CreateUser provisions an account. Only a superadmin may create users.
func (s *Service) CreateUser(actor hierarchy.Member, dto CreateUserDTO) (*User, error) {
	if actor.EffectiveRole() != hierarchy.RoleSuperadmin {
		s.logger.Warn("create user denied", "actor_id", actor.ID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hash(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		Roles:        dto.Roles,
		ManagerID:    dto.ManagerID,
		SupervisorID: dto.SupervisorID,
		IsActive:     true,
	}
	if err := s.repo.Create(u, hash); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}
	if err := s.repo.GrantRoles(u.ID, dto.Roles, actor.ID); err != nil {
		s.logger.Error("failed to grant roles", "error", err, "user_id", u.ID)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "actor_id", actor.ID, "roles", dto.Roles)
	return u, nil
}

// Team lists the actor's direct reports per the hierarchy rules.
func (s *Service) Team(actor hierarchy.Member) ([]*User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	all := make([]hierarchy.Member, len(users))
	byID := make(map[int64]*User, len(users))
	for i, u := range users {
		all[i] = u.Member()
		byID[u.ID] = u
	}

	var team []*User
	for _, m := range hierarchy.DirectReports(actor, all) {
		team = append(team, byID[m.ID])
	}
	return team, nil
}

// ReassignHierarchy moves a user under different leadership. Existing lead
// snapshots are untouched: they re-sync on the next lead reassignment.
func (s *Service) ReassignHierarchy(actor hierarchy.Member, userID int64, dto ReassignHierarchyDTO) (*User, error) {
	if actor.EffectiveRole() != hierarchy.RoleSuperadmin {
		s.logger.Warn("hierarchy reassignment denied", "actor_id", actor.ID, "user_id", userID)
		return nil, internal.ErrUnauthorizedAccess
	}

	u, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateHierarchy(userID, dto.ManagerID, dto.SupervisorID); err != nil {
		s.logger.Error("failed to reassign hierarchy", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("user hierarchy reassigned",
		"user_id", userID,
		"actor_id", actor.ID,
		"manager_id", dto.ManagerID,
		"supervisor_id", dto.SupervisorID)

	u.ManagerID = dto.ManagerID
	u.SupervisorID = dto.SupervisorID
	return u, nil
}

// Deactivate soft-disables an account; users are never hard-deleted.
func (s *Service) Deactivate(actor hierarchy.Member, userID int64) error {
	if actor.EffectiveRole() != hierarchy.RoleSuperadmin {
		s.logger.Warn("deactivation denied", "actor_id", actor.ID, "user_id", userID)
		return internal.ErrUnauthorizedAccess
	}
	if _, err := s.GetByID(userID); err != nil {
		return err
	}

	if err := s.repo.Deactivate(userID); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("user deactivated", "user_id", userID, "actor_id", actor.ID)
	return nil
}

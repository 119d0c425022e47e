package postgres

import (
	"time"

	userDatamodel "github.com/frahmantamala/lead-management/internal/core/datamodel/user"
	"github.com/frahmantamala/lead-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var model userDatamodel.User
	if err := r.db.Where("id = ? AND is_active = true", userID).First(&model).Error; err != nil {
		return nil, err
	}

	u := fromDataModel(&model)
	roles, err := r.rolesFor(userID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return u, nil
}

func (r *UserRepository) GetAll() ([]*user.User, error) {
	var models []userDatamodel.User
	if err := r.db.Where("is_active = true").Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		u := fromDataModel(&models[i])
		roles, err := r.rolesFor(u.ID)
		if err != nil {
			return nil, err
		}
		u.Roles = roles
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) Create(u *user.User, passwordHash string) error {
	model := &userDatamodel.User{
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: passwordHash,
		ManagerID:    u.ManagerID,
		SupervisorID: u.SupervisorID,
		IsActive:     u.IsActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepository) GrantRoles(userID int64, roles []string, grantedBy int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, roleName := range roles {
			var role userDatamodel.Role
			err := tx.Where("name = ?", roleName).First(&role).Error
			if err == gorm.ErrRecordNotFound {
				role = userDatamodel.Role{Name: roleName, CreatedAt: time.Now()}
				if err := tx.Create(&role).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			grant := userDatamodel.UserRole{
				UserID:    userID,
				RoleID:    role.ID,
				GrantedBy: &grantedBy,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&grant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *UserRepository) UpdateHierarchy(userID int64, managerID, supervisorID *int64) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"manager_id":    managerID,
			"supervisor_id": supervisorID,
			"updated_at":    time.Now(),
		}).Error
}

func (r *UserRepository) Deactivate(userID int64) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) rolesFor(userID int64) ([]string, error) {
	var roles []string
	err := r.db.Model(&userDatamodel.Role{}).
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &roles).Error
	return roles, err
}

func fromDataModel(m *userDatamodel.User) *user.User {
	return &user.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		ManagerID:    m.ManagerID,
		SupervisorID: m.SupervisorID,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

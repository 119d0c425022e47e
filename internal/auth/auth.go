package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithRoles(userID int64) (*User, error)
}

type RepositoryAPI interface {
	GetPasswordForEmail(email string) (passwordHash string, userID int64, err error)
	GetUserWithRoles(userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64) (token string, err error)
	GenerateRefreshToken(userID int64) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// User is the authenticated identity: role labels plus hierarchy links, the
// exact inputs every access decision needs.
type User struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles,omitempty"`
	ManagerID    *int64   `json:"manager_id,omitempty"`
	SupervisorID *int64   `json:"supervisor_id,omitempty"`
}

// Member converts the identity into its hierarchy position for the core
// access functions.
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

func (u *User) HasRole(role hierarchy.Role) bool {
	return u.Member().HasRole(role)
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

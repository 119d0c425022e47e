package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/lead-management/internal/hierarchy"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository for testing
type mockAuthRepository struct {
	passwords     map[string]string // email -> password hash
	userIDs       map[string]int64  // email -> user ID
	usersByID     map[int64]*User   // user ID -> identity with roles
	returnError   bool
	errorToReturn error
}

func newMockAuthRepository() *mockAuthRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	mgrID := int64(2)
	spvID := int64(3)

	return &mockAuthRepository{
		passwords: map[string]string{
			"agent@example.com":   string(hashedPassword),
			"manager@example.com": string(hashedPassword),
			"admin@example.com":   string(hashedPassword),
		},
		userIDs: map[string]int64{
			"agent@example.com":   4,
			"manager@example.com": 2,
			"admin@example.com":   1,
		},
		usersByID: map[int64]*User{
			1: {ID: 1, Email: "admin@example.com", Name: "Admin", Roles: []string{"superadmin"}},
			2: {ID: 2, Email: "manager@example.com", Name: "Manager", Roles: []string{"manager"}},
			4: {ID: 4, Email: "agent@example.com", Name: "Agent", Roles: []string{"agent"}, ManagerID: &mgrID, SupervisorID: &spvID},
		},
	}
}

func (m *mockAuthRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.returnError {
		return "", 0, m.errorToReturn
	}

	if hash, exists := m.passwords[email]; exists {
		if userID, ok := m.userIDs[email]; ok {
			return hash, userID, nil
		}
	}
	return "", 0, errors.New("user not found")
}

func (m *mockAuthRepository) GetUserWithRoles(userID int64) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}

	if user, exists := m.usersByID[userID]; exists {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAuthRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service       *Service
		mockRepo      *mockAuthRepository
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret"
		refreshSecret string        = "test-refresh-secret"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
		service = NewService(mockRepo, tokenGen)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				dto := LoginDTO{
					Email:    "agent@example.com",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
			})

			ginkgo.It("should embed the user ID in the access token", func() {
				dto := LoginDTO{
					Email:    "manager@example.com",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(2)))
				gomega.Expect(claims.Subject).To(gomega.Equal("2"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return error for unknown email", func() {
				dto := LoginDTO{
					Email:    "nonexistent@example.com",
					Password: "any_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for wrong password", func() {
				dto := LoginDTO{
					Email:    "agent@example.com",
					Password: "wrong_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should return validation error for empty email", func() {
				dto := LoginDTO{Email: "", Password: "password"}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("email is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return validation error for empty password", func() {
				dto := LoginDTO{Email: "agent@example.com", Password: ""}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should return invalid credentials error", func() {
				mockRepo.setError(errors.New("database error"))
				dto := LoginDTO{
					Email:    "agent@example.com",
					Password: "correct_password",
				}

				tokens, err := service.Authenticate(dto)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var validRefreshToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "agent@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validRefreshToken = tokens.RefreshToken
		})

		ginkgo.Context("when refresh token is valid", func() {
			ginkgo.It("should return a new token pair", func() {
				newTokens, err := service.RefreshTokens(validRefreshToken)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(newTokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(newTokens.RefreshToken).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should preserve the user ID in the new tokens", func() {
				newTokens, err := service.RefreshTokens(validRefreshToken)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.ValidateAccessToken(newTokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(4)))
			})
		})

		ginkgo.Context("when refresh token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				tokens, err := service.RefreshTokens("invalid.token.format")

				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should return error for a token signed with another secret", func() {
				foreignGen := NewJWTTokenGenerator("other-access-secret", "other-refresh-secret", accessTTL, refreshTTL)
				foreignToken, err := foreignGen.GenerateRefreshToken(4)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				tokens, err := service.RefreshTokens(foreignToken)

				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		var validAccessToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "admin@example.com",
				Password: "correct_password",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			validAccessToken = tokens.AccessToken
		})

		ginkgo.Context("when access token is valid", func() {
			ginkgo.It("should return claims with the user ID", func() {
				claims, err := service.ValidateAccessToken(validAccessToken)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims).ToNot(gomega.BeNil())
				gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
				gomega.Expect(claims.ExpiresAt).ToNot(gomega.BeNil())
			})
		})

		ginkgo.Context("when access token is invalid", func() {
			ginkgo.It("should return error for malformed token", func() {
				claims, err := service.ValidateAccessToken("invalid.token")

				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for empty token", func() {
				claims, err := service.ValidateAccessToken("")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("GetUserWithRoles", func() {
		ginkgo.Context("when user exists", func() {
			ginkgo.It("should return the identity with roles and hierarchy links", func() {
				user, err := service.GetUserWithRoles(4)

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(user).ToNot(gomega.BeNil())
				gomega.Expect(user.ID).To(gomega.Equal(int64(4)))
				gomega.Expect(user.Roles).To(gomega.ConsistOf("agent"))
				gomega.Expect(user.ManagerID).ToNot(gomega.BeNil())
				gomega.Expect(*user.ManagerID).To(gomega.Equal(int64(2)))
				gomega.Expect(user.EffectiveRole()).To(gomega.Equal(hierarchy.RoleAgent))
			})
		})

		ginkgo.Context("when user does not exist", func() {
			ginkgo.It("should return error", func() {
				user, err := service.GetUserWithRoles(999)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(user).To(gomega.BeNil())
			})
		})
	})
})

var _ = ginkgo.Describe("JWTTokenGenerator", func() {
	var (
		tokenGen      *JWTTokenGenerator
		accessSecret  string        = "test-access-secret-key"
		refreshSecret string        = "test-refresh-secret-key"
		accessTTL     time.Duration = 15 * time.Minute
		refreshTTL    time.Duration = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
	})

	ginkgo.Describe("GenerateAccessToken", func() {
		ginkgo.It("should generate a token that round-trips through ValidateToken", func() {
			token, err := tokenGen.GenerateAccessToken(123)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(123)))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(accessTTL), time.Minute))
		})
	})

	ginkgo.Describe("GenerateRefreshToken", func() {
		ginkgo.It("should generate a token with the refresh TTL", func() {
			token, err := tokenGen.GenerateRefreshToken(456)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(token).ToNot(gomega.BeEmpty())

			claims, err := tokenGen.ValidateToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(456)))
			gomega.Expect(claims.ExpiresAt.Time).To(gomega.BeTemporally("~", time.Now().Add(refreshTTL), time.Minute))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.Context("with invalid input", func() {
			ginkgo.It("should return error for malformed token", func() {
				claims, err := tokenGen.ValidateToken("invalid.token.here")

				gomega.Expect(err).To(gomega.Equal(ErrInvalidToken))
				gomega.Expect(claims).To(gomega.BeNil())
			})

			ginkgo.It("should return error for empty token", func() {
				claims, err := tokenGen.ValidateToken("")

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})

		ginkgo.Context("with expired token", func() {
			ginkgo.It("should return ErrTokenExpired", func() {
				expiredGen := NewJWTTokenGenerator(accessSecret, refreshSecret, accessTTL, refreshTTL)
				expiredGen.AccessTokenTTL = -1 * time.Hour
				token, err := expiredGen.GenerateAccessToken(123)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := tokenGen.ValidateToken(token)

				gomega.Expect(err).To(gomega.Equal(ErrTokenExpired))
				gomega.Expect(claims).To(gomega.BeNil())
			})
		})
	})
})

var _ = ginkgo.Describe("LoginDTO", func() {
	ginkgo.Describe("Validate", func() {
		ginkgo.It("should accept a complete payload", func() {
			dto := LoginDTO{Email: "agent@example.com", Password: "secure_password"}
			gomega.Expect(dto.Validate()).To(gomega.Succeed())
		})

		ginkgo.It("should reject empty email", func() {
			dto := LoginDTO{Password: "password"}
			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("email is required"))
		})

		ginkgo.It("should reject empty password", func() {
			dto := LoginDTO{Email: "agent@example.com"}
			err := dto.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("password is required"))
		})
	})
})

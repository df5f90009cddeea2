package service

import (
	"context"
	"testing"
	"time"

	"github.com/CuasDev/fel/internal/config"
	"github.com/CuasDev/fel/internal/dto"
	"github.com/CuasDev/fel/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 24}
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password, role string, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{ID: uuid.New(), Name: "Test User", Email: email, PasswordHash: string(hash), Role: role, Active: active}
	repo.byID[u.ID] = u
	return u
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestRegister_AlwaysCreatesPlainUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "Ana", Email: " Ana@Fel.test ", Password: "secreto1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.User.Role)
	assert.Equal(t, "ana@fel.test", resp.User.Email)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	claims := parseClaims(t, resp.AccessToken)
	assert.Equal(t, TokenAccess, claims["typ"])
	assert.Equal(t, "user", claims["role"])

	_, err = svc.Register(context.Background(), dto.RegisterRequest{Name: "Ana 2", Email: "ana@fel.test", Password: "secreto1"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newTestCfg())
	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "A", Email: "nope", Password: "123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestLogin(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@fel.test", "admin123", model.RoleAdmin, true)
	seedUser(t, repo, "old@fel.test", "old12345", model.RoleUser, false)
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ADMIN@fel.test", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@fel.test", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "ghost@fel.test", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "old@fel.test", Password: "old12345"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "inactive users cannot log in")
}

func TestRefresh_RequiresRefreshToken(t *testing.T) {
	repo := newStubUserRepo()
	seedUser(t, repo, "admin@fel.test", "admin123", model.RoleAdmin, true)
	svc := NewAuthService(repo, newTestCfg())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "admin@fel.test", Password: "admin123"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "an access token is not a refresh token")
	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": login.User.ID, "typ": TokenRefresh, "exp": time.Now().Add(-time.Hour).Unix(),
	})
	s, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateUser_AndProfile(t *testing.T) {
	repo := newStubUserRepo()
	admin := seedUser(t, repo, "admin@fel.test", "admin123", model.RoleAdmin, true)
	other := seedUser(t, repo, "bob@fel.test", "bob12345", model.RoleUser, true)
	svc := NewAuthService(repo, newTestCfg())

	role := model.RoleManager
	resp, err := svc.UpdateUser(context.Background(), other.ID, dto.UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, resp.Role)

	taken := "admin@fel.test"
	_, err = svc.UpdateProfile(context.Background(), other.ID, dto.UpdateProfileRequest{Email: &taken})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	pw := "nuevo123"
	_, err = svc.UpdateProfile(context.Background(), admin.ID, dto.UpdateProfileRequest{Password: &pw})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@fel.test", Password: pw})
	assert.NoError(t, err)

	_, err = svc.Profile(context.Background(), uuid.New())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteUser_RefusesSelf(t *testing.T) {
	repo := newStubUserRepo()
	admin := seedUser(t, repo, "admin@fel.test", "admin123", model.RoleAdmin, true)
	other := seedUser(t, repo, "bob@fel.test", "bob12345", model.RoleUser, true)
	svc := NewAuthService(repo, newTestCfg())

	var conflict *ConflictError
	assert.ErrorAs(t, svc.DeleteUser(context.Background(), admin.ID, admin.ID), &conflict)
	assert.NoError(t, svc.DeleteUser(context.Background(), admin.ID, other.ID))

	var nf *NotFoundError
	assert.ErrorAs(t, svc.DeleteUser(context.Background(), admin.ID, other.ID), &nf)

	list, err := svc.ListUsers(context.Background(), dto.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Pagination.Total)
	assert.Equal(t, 10, list.Pagination.Limit)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

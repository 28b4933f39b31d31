package service

import (
	"testing"
	"time"

	"techtrain_backend/internal/config"
	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/util"
	"techtrain_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()

	db, err := database.InitDB(":memory:")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour

	userRepo := repository.NewUserRepository(db)
	return NewAuthService(userRepo, cfg), userRepo
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(RegisterRequest{
		Username: "operator1",
		Email:    "operator1@example.com",
		Password: "s3cret-pass",
		FullName: "Operator One",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, model.RoleTrainee, user.RoleID)
	assert.NotEqual(t, "s3cret-pass", user.Password, "password must be stored hashed")
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newAuthFixture(t)

	req := RegisterRequest{Username: "operator1", Email: "operator1@example.com", Password: "s3cret-pass"}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	assert.ErrorIs(t, err, util.ErrUsernameRegistered)

	req.Username = "operator2"
	_, err = svc.Register(req)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(RegisterRequest{
		Username: "operator1",
		Email:    "operator1@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	resp, err := svc.Login(LoginRequest{Username: "operator1", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := util.ParseJWT(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "operator1", claims.Username)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, model.RoleTrainee, claims.RoleID)
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Register(RegisterRequest{
		Username: "operator1",
		Email:    "operator1@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Username: "operator1", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Username: "ghost", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, userRepo := newAuthFixture(t)

	user, err := svc.Register(RegisterRequest{
		Username: "operator1",
		Email:    "operator1@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	user.Disabled = true
	require.NoError(t, userRepo.Update(user))

	_, err = svc.Login(LoginRequest{Username: "operator1", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}

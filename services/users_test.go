package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-storefront/apperrors"
	"go-storefront/models"
	"go-storefront/utils"
)

func newTestUserService(f *fixture, revoker SessionRevoker) (*UserService, *utils.TokenManager) {
	tokens := utils.NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	return NewUserService(f.users, tokens, revoker, newTestLogger()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	svc, tokens := newTestUserService(f, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	res, err := svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Empty(t, res.User.Password)

	claims, err := tokens.ParseJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestRegister_Failures(t *testing.T) {
	f := newFixture()
	svc, _ := newTestUserService(f, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Username: "ann2", Email: "a@b.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newFixture()
	svc, _ := newTestUserService(f, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: strings.Repeat("a", 73)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// 40 runes but 80 bytes: passes the length tag, rejected by bcrypt.
	_, err = svc.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: strings.Repeat("é", 40)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.users.FindByEmail(ctx, "a@b.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture()
	svc, _ := newTestUserService(f, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: "ann", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	f := newFixture()
	revoker := new(mockRevoker)
	svc, tokens := newTestUserService(f, revoker)

	token, err := tokens.GenerateJWT("507f1f77bcf86cd799439011", models.RoleUser)
	require.NoError(t, err)
	claims, err := tokens.ParseJWT(token)
	require.NoError(t, err)

	revoker.On("Revoke", mock.Anything, claims.Id, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 59*time.Minute && ttl <= time.Hour
	})).Return(nil).Once()

	require.NoError(t, svc.Logout(context.Background(), claims))
	revoker.AssertExpectations(t)
}

func TestLogout_WithoutRevoker(t *testing.T) {
	svc, _ := newTestUserService(newFixture(), nil)
	assert.NoError(t, svc.Logout(context.Background(), &utils.Claims{}))
}

func TestUserAdministration(t *testing.T) {
	f := newFixture()
	svc, _ := newTestUserService(f, nil)
	ctx := context.Background()
	u := f.addUser("a@b.com")

	_, err := svc.UpdateRole(ctx, u.ID.Hex(), RoleInput{Role: "root"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err := svc.UpdateRole(ctx, u.ID.Hex(), RoleInput{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@b.com", users[0].Email)

	require.NoError(t, svc.Delete(ctx, u.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, u.ID.Hex()), apperrors.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	svc, _ := newTestUserService(f, nil)
	ctx := context.Background()
	u := f.addUser("a@b.com")

	_, err := svc.UpdateProfile(ctx, u.ID.Hex(), ProfileInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	long := string(make([]byte, 301))
	_, err = svc.UpdateProfile(ctx, u.ID.Hex(), ProfileInput{Bio: &long})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	bio, job := "hello", "tailor"
	updated, err := svc.UpdateProfile(ctx, u.ID.Hex(), ProfileInput{Bio: &bio, Profession: &job})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "tailor", updated.Profession)
	assert.Equal(t, "a@b.com", updated.Username)
}

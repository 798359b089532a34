package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-storefront/apperrors"
	"go-storefront/models"
	"go-storefront/utils"
)

const passwordCost = 11

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginInput is a sign-in request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued session token and the signed-in user.
type LoginResult struct {
	Token string
	User  *models.User
}

// RoleInput is an admin role change.
type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// ProfileInput is a partial profile update. Nil fields are left unchanged.
type ProfileInput struct {
	Username   *string `json:"username" validate:"omitempty,min=1"`
	ProfileImg *string `json:"profileImg"`
	Bio        *string `json:"bio" validate:"omitempty,max=300"`
	Profession *string `json:"profession"`
}

// UserService manages accounts and sessions.
type UserService struct {
	users   UserStore
	tokens  *utils.TokenManager
	revoker SessionRevoker
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserService creates a UserService. revoker may be nil, in which case
// logout only clears the client cookie.
func NewUserService(users UserStore, tokens *utils.TokenManager, revoker SessionRevoker, logger *slog.Logger) *UserService {
	return &UserService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a user account with the user role.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	// bcrypt limits the password to 72 bytes, which multibyte input can
	// exceed within 72 characters.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperrors.ValidationFields("password is too long", map[string]string{
			"password": "must be at most 72 bytes",
		})
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hash),
		Role:      models.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.Hex()))
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid password")
	}

	token, err := s.tokens.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &LoginResult{Token: token, User: user}, nil
}

// Logout revokes the session token for the rest of its lifetime.
func (s *UserService) Logout(ctx context.Context, claims *utils.Claims) error {
	if s.revoker == nil || claims == nil || claims.Id == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.Id, claims.ExpiresIn(s.now()))
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Delete removes a user account.
func (s *UserService) Delete(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "user")
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, idHex string, input RoleInput) (*models.User, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	id, err := parseID(idHex, "user")
	if err != nil {
		return nil, err
	}
	return s.users.UpdateRole(ctx, id, input.Role)
}

// UpdateProfile applies the provided profile fields to the calling user.
func (s *UserService) UpdateProfile(ctx context.Context, userIDHex string, input ProfileInput) (*models.User, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	id, err := parseID(userIDHex, "user")
	if err != nil {
		return nil, err
	}

	upd := models.ProfileUpdate{
		Username:   input.Username,
		ProfileImg: input.ProfileImg,
		Bio:        input.Bio,
		Profession: input.Profession,
	}
	if upd.Empty() {
		return nil, apperrors.Validation("no profile fields provided")
	}
	return s.users.UpdateProfile(ctx, id, upd)
}

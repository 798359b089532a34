package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"go-storefront/apperrors"
	"go-storefront/middleware"
	"go-storefront/services"
	"go-storefront/utils"
)

// UserController handles user-related requests
type UserController struct {
	users        *services.UserService
	tokens       *utils.TokenManager
	cookieSecure bool
	logger       *slog.Logger
}

// NewUserController creates a new UserController
func NewUserController(users *services.UserService, tokens *utils.TokenManager, cookieSecure bool, logger *slog.Logger) *UserController {
	return &UserController{
		users:        users,
		tokens:       tokens,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (uc *UserController) sessionCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   uc.cookieSecure,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   maxAge,
		Expires:  expires,
	}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if _, err := uc.users.Register(ctx, input); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	writeMessage(w, http.StatusCreated, "user registered successfully")
}

// Login handles user login and sets the session cookie
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := uc.users.Login(ctx, input)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	expiry := uc.tokens.Expiry()
	http.SetCookie(w, uc.sessionCookie(res.Token, int(expiry.Seconds()), time.Now().Add(expiry)))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// Logout clears the session cookie and revokes the presented token.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	// An invalid or missing token still logs out; there is nothing to revoke.
	if claims, err := uc.tokens.ParseJWT(middleware.TokenFromRequest(r)); err == nil {
		ctx, cancel := requestContext(r)
		defer cancel()
		if err := uc.users.Logout(ctx, claims); err != nil {
			writeError(w, r, uc.logger, apperrors.Persistence("revoke session", err))
			return
		}
	}

	http.SetCookie(w, uc.sessionCookie("", -1, time.Unix(0, 0)))
	writeMessage(w, http.StatusOK, "logged out successfully")
}

// ListUsers returns every user, newest first.
func (uc *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	users, err := uc.users.List(ctx)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// DeleteUser removes a user account.
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := uc.users.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "user deleted successfully")
}

// UpdateUserRole changes a user's role.
func (uc *UserController) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var input services.RoleInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.users.UpdateRole(ctx, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    user,
	})
}

// UpdateProfile updates the caller's own profile.
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, uc.logger, apperrors.Unauthorized("No token provided!"))
		return
	}

	var input services.ProfileInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, uc.logger, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.users.UpdateProfile(ctx, claims.UserID, input)
	if err != nil {
		writeError(w, r, uc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "user profile updated successfully",
		"user":    user,
	})
}

package routehandlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
	"github.com/coreybb/locallibrary/validator"
	"github.com/coreybb/locallibrary/webutil"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type AuthHandler struct {
	Users  UserStore
	Tokens *auth.TokenIssuer
}

func NewAuthHandler(users UserStore, tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type credentials struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister creates a borrower account without capabilities.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) error {
	var req credentials
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	username := strings.TrimSpace(req.Username)

	v := validator.New()
	v.Check(validator.NotBlank(username), "username", "must be provided")
	v.Check(validator.MaxChars(username, maxUsernameChars), "username", fmt.Sprintf("must not be more than %d characters", maxUsernameChars))
	v.Check(validator.MinChars(req.Password, minPasswordChars), "password", fmt.Sprintf("must be at least %d characters", minPasswordChars))
	if req.Email != nil {
		v.Check(validator.Matches(*req.Email, validator.EmailRX), "email", "must be a valid email address")
	}
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.Users.CreateUser(r.Context(), &user); err != nil {
		return fmt.Errorf("failed to register user %q: %w", username, err)
	}

	return h.respondWithToken(w, http.StatusCreated, &user)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req credentials
	if err := webutil.DecodeJSON(w, r, &req); err != nil {
		return err
	}

	user, err := h.Users.GetUserByUsername(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, models.ErrNotFound) {
		return webutil.ErrUnauthorized(auth.ErrInvalidCredentials.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return webutil.ErrUnauthorized(err.Error())
	}

	return h.respondWithToken(w, http.StatusOK, user)
}

// HandleGetMe returns the current user's account.
func (h *AuthHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) error {
	actor := auth.ActorFromContext(r.Context())
	if actor == nil {
		return models.ErrUnauthenticated
	}
	user, err := h.Users.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user %s: %w", actor.ID, err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, user)
	return nil
}

// HandleDeleteUser removes an account. Copies it borrowed lose their borrower.
func (h *AuthHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := webutil.ParseUUIDParam(r, paramID)
	if err != nil {
		return err
	}
	if err := h.Users.DeleteUser(r.Context(), userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *models.User) error {
	token, err := h.Tokens.Issue(user)
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, status, tokenResponse{Token: token, User: *user})
	return nil
}

package routehandlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
	rh "github.com/coreybb/locallibrary/route-handlers"
	"github.com/coreybb/locallibrary/webutil"
)

type fakeUserStore struct {
	byUsername map[string]models.User
}

func (s *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	if _, exists := s.byUsername[user.Username]; exists {
		return models.NewValidationError("username", "is already taken")
	}
	user.ID = "7a6b5c4d-3e2f-4a1b-8c9d-0e1f2a3b4c5d"
	if user.Capabilities == nil {
		user.Capabilities = []string{}
	}
	s.byUsername[user.Username] = *user
	return nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := s.byUsername[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	for _, u := range s.byUsername {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeUserStore) DeleteUser(_ context.Context, userID string) error {
	for name, u := range s.byUsername {
		if u.ID == userID {
			delete(s.byUsername, name)
			return nil
		}
	}
	return models.ErrNotFound
}

func Test_RegisterThenLogin(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]models.User{}}
	tokens := auth.NewTokenIssuer([]byte("test-secret"))
	h := rh.NewAuthHandler(users, tokens)
	router := newRouter(nil, func(r chi.Router) {
		r.Post("/register", webutil.MakeHandler(h.HandleRegister))
		r.Post("/login", webutil.MakeHandler(h.HandleLogin))
	})

	rec, body := do(t, router, http.MethodPost, "/register", `{"username":"reader","password":"correct horse","email":"reader@example.org"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "reader", user["username"])
	assert.NotContains(t, user, "password_hash")

	actor, err := tokens.Parse(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "reader", actor.Username)
	assert.Empty(t, actor.Capabilities)

	rec, _ = do(t, router, http.MethodPost, "/register", `{"username":"reader","password":"another one"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, body = do(t, router, http.MethodPost, "/login", `{"username":"reader","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])

	rec, _ = do(t, router, http.MethodPost, "/login", `{"username":"reader","password":"wrong password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/login", `{"username":"nobody","password":"correct horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_HandleRegister_Validation(t *testing.T) {
	h := rh.NewAuthHandler(&fakeUserStore{byUsername: map[string]models.User{}}, auth.NewTokenIssuer([]byte("s")))
	router := newRouter(nil, func(r chi.Router) {
		r.Post("/register", webutil.MakeHandler(h.HandleRegister))
	})

	rec, body := do(t, router, http.MethodPost, "/register", `{"username":"","password":"short","email":"nope"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body["error"], "username")
	assert.Contains(t, body["error"], "password")
	assert.Contains(t, body["error"], "email")
}

func Test_HandleGetMe(t *testing.T) {
	users := &fakeUserStore{byUsername: map[string]models.User{
		"reader": {ID: borrower.ID, Username: "reader", Capabilities: []string{}},
	}}
	h := rh.NewAuthHandler(users, auth.NewTokenIssuer([]byte("s")))

	mount := func(r chi.Router) { r.Get("/me", webutil.MakeHandler(h.HandleGetMe)) }

	rec, body := do(t, newRouter(borrower, mount), http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reader", body["username"])

	rec, _ = do(t, newRouter(nil, mount), http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

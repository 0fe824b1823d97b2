package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/coreybb/locallibrary/auth"
	"github.com/coreybb/locallibrary/models"
)

type librarianStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GrantCapability(ctx context.Context, userID, capability string) error
}

// bootstrapLibrarian makes sure the configured librarian account exists and
// holds the circulation capability. The password of an existing account is
// left alone. Nothing happens when either setting is empty.
func bootstrapLibrarian(ctx context.Context, users librarianStore, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	existing, err := users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if slices.Contains(existing.Capabilities, auth.CapMarkReturned) {
			return nil
		}
		if err := users.GrantCapability(ctx, existing.ID, auth.CapMarkReturned); err != nil {
			return err
		}
		log.Printf("INFO (Bootstrap): Granted %s to existing user %s", auth.CapMarkReturned, username)
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("failed to look up librarian %q: %w", username, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	librarian := models.User{
		Username:     username,
		PasswordHash: hash,
		Capabilities: []string{auth.CapMarkReturned},
	}
	if err := users.CreateUser(ctx, &librarian); err != nil {
		return fmt.Errorf("failed to create librarian %q: %w", username, err)
	}
	log.Printf("INFO (Bootstrap): Created librarian account %s", username)
	return nil
}

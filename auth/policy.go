// Package auth implements the access policy: who the acting user is and which
// capabilities they hold.
package auth

import (
	"context"
	"slices"

	"github.com/coreybb/locallibrary/models"
)

const (
	// CapMarkReturned allows renewing loans and changing copy status.
	CapMarkReturned = "catalog.can_mark_returned"

	// CapManageCatalog gates create/update/delete of catalog records. It is the
	// same token as CapMarkReturned: one librarian flag covers both.
	CapManageCatalog = CapMarkReturned
)

// Actor is the authenticated user making a request.
type Actor struct {
	ID           string
	Username     string
	Capabilities []string
}

// Policy answers capability questions about an actor.
type Policy interface {
	HasCapability(actor *Actor, capability string) bool
}

// CapabilityPolicy grants exactly the capabilities listed on the actor.
type CapabilityPolicy struct{}

func NewCapabilityPolicy() CapabilityPolicy {
	return CapabilityPolicy{}
}

func (CapabilityPolicy) HasCapability(actor *Actor, capability string) bool {
	if actor == nil {
		return false
	}
	return slices.Contains(actor.Capabilities, capability)
}

// Require returns models.ErrUnauthenticated for a nil actor and
// models.ErrPermissionDenied when the actor lacks capability.
func Require(policy Policy, actor *Actor, capability string) error {
	if actor == nil {
		return models.ErrUnauthenticated
	}
	if !policy.HasCapability(actor, capability) {
		return models.ErrPermissionDenied
	}
	return nil
}

type actorContextKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

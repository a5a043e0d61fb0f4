package auth

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
)

var ErrNotAuthenticated = errors.New("auth: no signed-in user")

// Provider resolves the identity of the current caller. The checkout flow
// fails fast when no identity is present.
type Provider interface {
	CurrentUser(ctx context.Context) (uuid.UUID, error)
}

type ctxKey struct{}

// WithUser returns a context carrying the signed-in user id.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext extracts the signed-in user id, if any.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// ContextProvider reads the identity the transport layer placed on the
// request context.
type ContextProvider struct{}

func NewContextProvider() ContextProvider {
	return ContextProvider{}
}

func (ContextProvider) CurrentUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

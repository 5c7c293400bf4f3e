// Package session carries the signed-in user through a request's context.
package session

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/domain"
)

type contextKey string

const (
	userCtxKey  contextKey = "session_user"
	tokenCtxKey contextKey = "session_token"
)

// WithUser returns a context carrying user as the current identity.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// WithToken stores the raw bearer token so the session can be ended later.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey, token)
}

// CurrentUser returns the signed-in user, or an anonymous User and false.
func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey).(domain.User)
	if !ok || u.IsAnonymous() {
		return domain.User{}, false
	}
	return u, true
}

// Require returns the signed-in user or domain.ErrAuthRequired.
func Require(ctx context.Context) (domain.User, error) {
	u, ok := CurrentUser(ctx)
	if !ok {
		return domain.User{}, domain.ErrAuthRequired
	}
	return u, nil
}

// UserID is CurrentUser's id, empty for anonymous visitors.
func UserID(ctx context.Context) string {
	u, _ := CurrentUser(ctx)
	return u.ID
}

func Token(ctx context.Context) string {
	t, _ := ctx.Value(tokenCtxKey).(string)
	return t
}

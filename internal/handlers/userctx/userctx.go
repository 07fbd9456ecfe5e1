package userctx

import (
	"context"

	"github.com/nkiryanov/qrgen/internal/models"
	"github.com/nkiryanov/qrgen/internal/service/auth"
)

type ctxKey string

const sessionKey ctxKey = "session"

// Create a new context with the client session
func New(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Extract the session from the context
func Session(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*auth.Session)
	return s, ok && s != nil
}

// Extract the signed in user from the context
func FromContext(ctx context.Context) (models.User, bool) {
	s, ok := Session(ctx)
	if !ok {
		return models.User{}, false
	}
	return s.User()
}

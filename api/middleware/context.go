package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/internal/checkout"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxGroup  contextKey = "group"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func GroupFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxGroup).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the acting user into the context.
func WithIdentity(ctx context.Context, userID uuid.UUID, group string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID.String())
	return context.WithValue(ctx, ctxGroup, group)
}

// IdentityFromContext rebuilds the typed identity the services expect.
// A zero UserID means the request never passed Auth.
func IdentityFromContext(ctx context.Context) checkout.Identity {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return checkout.Identity{}
	}
	return checkout.Identity{UserID: userID, Group: GroupFromContext(ctx)}
}

package middleware

import (
	"context"
)

type ctxKey string

const (
	ctxKeyHTMX     ctxKey = "htmx"
	ctxKeySession  ctxKey = "session"
	ctxKeyUser     ctxKey = "user"
	ctxKeyLocaleFB ctxKey = "locale_fallback"
)

// User represents the signed-in account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"u"`
	FullName string `json:"n,omitempty"`
}

// WithUser attaches the signed-in user.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the signed-in user, or nil for guests.
func UserFromContext(ctx context.Context) *User {
	if v := ctx.Value(ctxKeyUser); v != nil {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

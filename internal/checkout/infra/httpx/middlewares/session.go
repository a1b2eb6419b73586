package middlewares

import (
	"context"
	"net/http"
)

// contextKey is unexported so these context values cannot collide with keys
// from other packages.
type contextKey string

const (
	HeaderXUserID    = "X-User-ID"
	HeaderXUserEmail = "X-User-Email"

	contextKeyUserID contextKey = "user_id"
	contextKeyEmail  contextKey = "user_email"
)

// AttachSessionIdentity copies the authenticated identity headers (set by
// the session-owning front) into typed context values. Authentication
// itself happens upstream; the checkout core only refuses to proceed when
// the user id is absent.
func AttachSessionIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyUserID, r.Header.Get(HeaderXUserID))
		ctx = context.WithValue(ctx, contextKeyEmail, r.Header.Get(HeaderXUserEmail))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Identity extracts the session identity attached by AttachSessionIdentity.
// Both values are empty when the middleware did not run or the headers were
// missing.
func Identity(ctx context.Context) (userID, email string) {
	userID, _ = ctx.Value(contextKeyUserID).(string)
	email, _ = ctx.Value(contextKeyEmail).(string)
	return userID, email
}

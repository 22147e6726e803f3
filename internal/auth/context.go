package auth

import "context"

type usernameCtxKey struct{}

// ContextWithUsername stores the session's username in ctx.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameCtxKey{}, username)
}

// UsernameFromContext returns the username set by the auth middleware.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameCtxKey{}).(string)
	return username, ok && username != ""
}

package auth

import "context"

type contextKey struct{}

// WithUsername returns a context carrying the authenticated username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextKey{}, username)
}

// Username returns the authenticated username, or "" when the request is anonymous.
func Username(ctx context.Context) string {
	username, _ := ctx.Value(contextKey{}).(string)
	return username
}

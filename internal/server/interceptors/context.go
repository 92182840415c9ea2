package interceptors

import "context"

type contextKey struct{ name string }

var (
	usernameKey = contextKey{"username"}
	userIDKey   = contextKey{"user_id"}
)

// WithIdentity returns a context carrying the authenticated username and
// numeric user id. Handlers read them via GetUsername and GetUserID.
func WithIdentity(ctx context.Context, username string, userID int64) context.Context {
	ctx = context.WithValue(ctx, usernameKey, username)
	ctx = context.WithValue(ctx, userIDKey, userID)
	return ctx
}

// GetUsername returns the username from context and true if set; otherwise "", false.
func GetUsername(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	return v, ok
}

// GetUserID returns the user id from context and true if set; otherwise 0, false.
func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

package ctxutil

import "context"

type userKey struct{}

// WithUserID records the caller resolved by the identity middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(Default(ctx), userKey{}, userID)
}

func GetUserID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

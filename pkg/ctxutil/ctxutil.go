package ctxutil

import "context"

type ctxKey string

const (
	memberIDKey  ctxKey = "member_id"
	adminKey     ctxKey = "is_admin"
	requestIDKey ctxKey = "request_id"
)

// WithMemberID stores the authenticated member ID in the context.
func WithMemberID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, memberIDKey, id)
}

// MemberIDFromCtx extracts the member ID from the context.
// Returns 0 and false if the value is missing, zero, or the wrong type.
func MemberIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(memberIDKey).(int64)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// WithAdmin marks the context as belonging to an admin caller.
func WithAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// IsAdmin reports whether the context belongs to an admin caller.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(adminKey).(bool)
	return admin
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

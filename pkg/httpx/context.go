package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeyToken   ctxKey = "token"
	CtxKeySession ctxKey = "session" // decoded token store payload
)

// WithIdentity records an authenticated caller on ctx. session is whatever
// payload the authenticating middleware loaded for the token.
func WithIdentity(ctx context.Context, userID, rawToken string, session any) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, CtxKeyToken, rawToken)
	ctx = context.WithValue(ctx, CtxKeySession, session)
	return ctx
}

// UserIDFromContext returns the authenticated user id. ok is false for
// anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}

// TokenFromContext returns the raw bearer token the caller authenticated with.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(CtxKeyToken).(string)
	return tok, ok && tok != ""
}

// SessionFromContext returns the session payload stored by WithIdentity.
func SessionFromContext[T any](ctx context.Context) (T, bool) {
	s, ok := ctx.Value(CtxKeySession).(T)
	return s, ok
}

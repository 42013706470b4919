package domain

import "context"

// SessionContextKey is the key under which the resolved SessionRecord is
// stored in the request context by the request gate.
const SessionContextKey = "auth_session"

type sessionCtxKey struct{}

// ContextWithSession returns a context carrying the given session record.
func ContextWithSession(ctx context.Context, record *SessionRecord) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, record)
}

// SessionFromContext retrieves the SessionRecord placed in the context by the
// request gate, if any.
func SessionFromContext(ctx context.Context) (*SessionRecord, bool) {
	record, ok := ctx.Value(sessionCtxKey{}).(*SessionRecord)
	return record, ok && record != nil
}

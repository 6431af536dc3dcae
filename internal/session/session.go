package session

import (
	"context"
	"errors"
	"time"

	"github.com/romay-erp/romay/internal/capability"
)

var (
	// ErrNoToken indicates the request carried no credential at all.
	ErrNoToken = errors.New("session: no token")
	// ErrTokenInvalid indicates a malformed or badly signed token.
	ErrTokenInvalid = errors.New("session: invalid token")
	// ErrTokenExpired indicates the access token is past its deadline.
	ErrTokenExpired = errors.New("session: token expired")
	// ErrRevoked indicates a verified token whose session record is gone.
	ErrRevoked = errors.New("session: revoked")
)

// Session is the resolved authentication state for one request. It is
// created by the Manager and read-only everywhere else.
type Session struct {
	ID            string
	UserID        int64
	Role          capability.Role
	Authenticated bool
	ExpiresAt     time.Time
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessionContextKey struct{}

// ContextWith stores the resolved session in context.
func ContextWith(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// FromContext extracts the resolved session, or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

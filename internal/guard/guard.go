// Package guard decides, per navigation, whether a protected route may be
// served for the current session.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/romay-erp/romay/internal/capability"
	"github.com/romay-erp/romay/internal/platform/httpx"
	"github.com/romay-erp/romay/internal/session"
)

// CookieName carries the access token for browser clients that do not set
// an Authorization header.
const CookieName = "romay_token"

// LoginPath is where denied browser navigations are sent.
const LoginPath = "/auth/login"

// Resolver resolves an access token into a session.
type Resolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// Guard wraps protected routes. Each request is either allowed (session in
// context, inner handler runs), or denied (redirect or 401); the pending
// identity check blocks inside Resolve, bounded by its deadline, so no
// intermediate state is ever rendered.
type Guard struct {
	resolver Resolver
	logger   *slog.Logger
	secure   bool
}

// New constructs a Guard.
func New(resolver Resolver, logger *slog.Logger, secure bool) *Guard {
	return &Guard{resolver: resolver, logger: logger, secure: secure}
}

// Protect denies requests without a valid session and injects the resolved
// session into context otherwise.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			g.deny(w, r, false)
			return
		}
		sess, err := g.resolver.Resolve(r.Context(), token)
		if err != nil {
			if g.logger != nil && !isCredentialError(err) {
				g.logger.Warn("session resolve", slog.Any("error", err))
			}
			// The credential is known bad now; make the client drop it.
			g.deny(w, r, true)
			return
		}
		ctx := session.ContextWith(r.Context(), &sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRolePrefix enforces the "/{segment}/..." convention: the leading
// path segment must be the session role's own segment. Must run inside
// Protect.
func (g *Guard) RequireRolePrefix(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil {
			g.deny(w, r, false)
			return
		}
		segment := leadingSegment(r.URL.Path)
		role, ok := capability.ParseRole(segment)
		if !ok || role != sess.Role {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "route belongs to another role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only the listed roles through. Must run inside Protect.
func (g *Guard) RequireRole(allowed ...capability.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil || !capability.Allowed(sess.Role, allowed...) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TokenFromRequest extracts the access token from the Authorization header
// or, failing that, the auth cookie.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// deny redirects browser navigations to the login boundary and answers API
// clients with a 401 problem. clearCookie removes a credential that failed
// resolution so subsequent requests do not retry it.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   g.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func leadingSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func isCredentialError(err error) bool {
	return errors.Is(err, session.ErrNoToken) ||
		errors.Is(err, session.ErrTokenInvalid) ||
		errors.Is(err, session.ErrTokenExpired) ||
		errors.Is(err, session.ErrRevoked)
}

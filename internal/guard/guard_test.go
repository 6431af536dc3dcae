package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/romay-erp/romay/internal/capability"
	"github.com/romay-erp/romay/internal/guard"
	"github.com/romay-erp/romay/internal/session"
	_ "github.com/romay-erp/romay/testing"
)

type stubResolver struct {
	sess session.Session
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (session.Session, error) {
	if s.err != nil {
		return session.Session{}, s.err
	}
	return s.sess, nil
}

func okHandler(t *testing.T, wantRole capability.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil {
			t.Fatal("expected session in context")
		}
		if sess.Role != wantRole {
			t.Fatalf("expected role %s, got %s", wantRole, sess.Role)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestProtectWithoutToken(t *testing.T) {
	g := guard.New(&stubResolver{}, nil, false)
	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected content must not render")
	}))

	req := httptest.NewRequest(http.MethodGet, "/manager/clients", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestProtectRedirectsBrowsers(t *testing.T) {
	g := guard.New(&stubResolver{}, nil, false)
	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected content must not render")
	}))

	req := httptest.NewRequest(http.MethodGet, "/manager/clients", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != guard.LoginPath {
		t.Fatalf("expected redirect to %s, got %s", guard.LoginPath, loc)
	}
}

func TestProtectInvalidTokenClearsCookie(t *testing.T) {
	g := guard.New(&stubResolver{err: session.ErrTokenInvalid}, nil, false)
	handler := g.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("protected content must not render")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/navigation", nil)
	req.AddCookie(&http.Cookie{Name: guard.CookieName, Value: "stale"})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	cleared := false
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == guard.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected stale auth cookie to be cleared")
	}
}

func TestProtectAllows(t *testing.T) {
	resolver := &stubResolver{sess: session.Session{
		ID:            "s1",
		UserID:        4,
		Role:          capability.RoleManager,
		Authenticated: true,
	}}
	g := guard.New(resolver, nil, false)
	handler := g.Protect(okHandler(t, capability.RoleManager))

	req := httptest.NewRequest(http.MethodGet, "/manager/clients", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestRequireRolePrefix(t *testing.T) {
	resolver := &stubResolver{sess: session.Session{
		ID:            "s1",
		Role:          capability.RoleManager,
		Authenticated: true,
	}}
	g := guard.New(resolver, nil, false)
	handler := g.Protect(g.RequireRolePrefix(okHandler(t, capability.RoleManager)))

	req := httptest.NewRequest(http.MethodGet, "/manager/clients/123", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for own prefix, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/warehouse/products", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign prefix, got %d", res.Code)
	}
}

func TestRequireRole(t *testing.T) {
	resolver := &stubResolver{sess: session.Session{
		ID:            "s1",
		Role:          capability.RoleStorekeeper,
		Authenticated: true,
	}}
	g := guard.New(resolver, nil, false)
	handler := g.Protect(g.RequireRole(capability.RoleCEO)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("ceo-only content must not render")
	})))

	req := httptest.NewRequest(http.MethodGet, "/jobs/health", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestTokenFromRequestPrefersBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: guard.CookieName, Value: "cookie-token"})
	if got := guard.TokenFromRequest(req); got != "header-token" {
		t.Fatalf("expected header token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: guard.CookieName, Value: "cookie-token"})
	if got := guard.TokenFromRequest(req); got != "cookie-token" {
		t.Fatalf("expected cookie token, got %q", got)
	}
}

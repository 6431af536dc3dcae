package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/romay-erp/romay/internal/guard"
	"github.com/romay-erp/romay/internal/platform/httpx"
	"github.com/romay-erp/romay/internal/session"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	secure    bool
}

// NewHandler constructs a Handler instance. secure marks the auth cookie
// HTTPS-only and should be true in production.
func NewHandler(logger *slog.Logger, service *Service, secure bool) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		secure:    secure,
	}
}

// MountRoutes registers auth routes. protect guards the identity and logout
// endpoints, which require a resolved session.
func (h *Handler) MountRoutes(r chi.Router, protect func(http.Handler) http.Handler) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.handleLogin)
	r.Get("/login", h.loginBoundary)
	r.Post("/refresh", h.handleRefresh)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/me", h.handleMe)
		r.Post("/logout", h.handleLogout)
	})
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required,min=7"`
	Password string `json:"password" validate:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type identityResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	DisplayRole string `json:"display_role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	pair, err := h.service.Login(r.Context(), req.Phone, req.Password, r.RemoteAddr, r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "phone or password is incorrect")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.setAuthCookie(w, pair.AccessToken)
	httpx.JSON(w, http.StatusOK, pair)
}

// loginBoundary anchors the redirect target for denied browser navigations.
// The login UI itself belongs to the dashboard SPA.
func (h *Handler) loginBoundary(w http.ResponseWriter, r *http.Request) {
	httpx.Problem(w, http.StatusUnauthorized, "Authentication Required", "POST credentials to /auth/login")
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken, r.RemoteAddr, r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "refresh token is invalid or expired")
			return
		}
		h.logger.Error("refresh", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.setAuthCookie(w, pair.AccessToken)
	httpx.JSON(w, http.StatusOK, pair)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	user, err := h.service.Identity(r.Context(), sess)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session is no longer valid")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": identityResponse{
		ID:          user.ID,
		Name:        user.Name,
		Role:        user.Role.String(),
		DisplayRole: user.Role.DisplayName(),
	}})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	_ = httpx.DecodeJSON(r, &req)

	sess := session.FromContext(r.Context())
	if err := h.service.Logout(r.Context(), sess, req.RefreshToken); err != nil {
		h.logger.Error("logout", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.clearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// setAuthCookie mirrors the access token into the auth cookie so browser
// navigations carry it without a script-managed header.
func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     guard.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.AccessTTL() / time.Second),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     guard.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Field() + " is " + fieldErrs[0].Tag()
	}
	return "invalid request"
}

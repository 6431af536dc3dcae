package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/romay-erp/romay/internal/capability"
	"github.com/romay-erp/romay/internal/platform/httpx"
	"github.com/romay-erp/romay/internal/session"
)

// Handler serves navigation trees and action sets for the current session.
type Handler struct {
	logger   *slog.Logger
	resolver *capability.Resolver
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, resolver *capability.Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

// MountRoutes registers capability routes. Callers must wrap them in the
// route guard; handlers fail closed when no session is present.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/navigation", h.navigation)
	r.Get("/capabilities", h.capabilities)
}

func (h *Handler) navigation(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	groups := h.resolver.Navigation(sess.Role)
	if path := r.URL.Query().Get("path"); path != "" {
		groups = capability.MarkActive(groups, path)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": groups})
}

func (h *Handler) capabilities(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"role":         sess.Role.String(),
		"display_role": sess.Role.DisplayName(),
		"actions":      capability.ActionsFor(sess.Role),
	}})
}

// Bootstrap serves the view payload for a guarded "/{segment}/..." route:
// the role, the requested path, and the navigation tree with active marks.
func (h *Handler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	groups := capability.MarkActive(h.resolver.Navigation(sess.Role), r.URL.Path)
	httpx.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"role":       sess.Role.String(),
		"path":       r.URL.Path,
		"navigation": groups,
	}})
}

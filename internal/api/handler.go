// internal/api/handler.go
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-dashboard/internal/dashboard"
	"github-dashboard/internal/model"

	apperrors "github-dashboard/internal/errors"
)

// userIDHeader carries the authenticated user id, set by the session layer in
// front of this service. Session handling itself is out of scope here.
const userIDHeader = "X-User-ID"

// Handler is the container for API dependencies.
type Handler struct {
	core   *dashboard.Service
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(core *dashboard.Service, logger *slog.Logger) http.Handler {
	h := &Handler{
		core:   core,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/dashboard/activity", h.getMonthlyActivity)
		r.Get("/dashboard/stats", h.getDashboardStats)
		r.Get("/repositories", h.getRepositoryPage)
		r.Get("/settings/profile", h.getUserProfile)
		r.Patch("/settings/profile", h.updateUserProfile)
		r.Get("/settings/repositories", h.getConnectedRepositories)
		r.Delete("/settings/repositories", h.disconnectAllRepositories)
		r.Delete("/settings/repositories/{id}", h.disconnectRepository)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getMonthlyActivity returns the trailing 6-month activity buckets plus the
// derived summary statistics.
// GET /v1/dashboard/activity
func (h *Handler) getMonthlyActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	buckets, err := h.core.BuildMonthlyActivity(r.Context(), userID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"months":  buckets,
		"summary": dashboard.SummarizeActivity(buckets),
	})
}

// getDashboardStats returns the landing-page totals.
// GET /v1/dashboard/stats
func (h *Handler) getDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.core.DashboardStats(r.Context(), userID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// getRepositoryPage returns one reconciled page of upstream repositories.
// GET /v1/repositories?page=N&per_page=M
func (h *Handler) getRepositoryPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	views, err := h.core.FetchRepositoryPage(r.Context(), userID, page, perPage)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, views)
}

// getConnectedRepositories lists the user's connection records.
// GET /v1/settings/repositories
func (h *Handler) getConnectedRepositories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	repos, err := h.core.ListConnectedRepositories(r.Context(), userID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	if repos == nil {
		repos = []model.ConnectedRepository{}
	}
	respondWithJSON(w, http.StatusOK, repos)
}

// disconnectRepository disconnects one repository.
// DELETE /v1/settings/repositories/{id}
func (h *Handler) disconnectRepository(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.core.DisconnectRepository(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// disconnectAllRepositories disconnects every repository for the user.
// DELETE /v1/settings/repositories
func (h *Handler) disconnectAllRepositories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.core.DisconnectAllRepositories(r.Context(), userID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// getUserProfile returns the local profile record.
// GET /v1/settings/profile
func (h *Handler) getUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.core.GetUserProfile(r.Context(), userID)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// updateUserProfile updates name and/or email on the profile.
// PATCH /v1/settings/profile
func (h *Handler) updateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	profile, err := h.core.UpdateUserProfile(r.Context(), userID, body.Name, body.Email)
	if err != nil {
		h.respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// requireUser extracts the authenticated user id. No id means no session,
// which is a caller problem, not a core error.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "No active session")
		return "", false
	}
	return userID, true
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. NotConnected
// gets a distinct payload so the UI renders a connect affordance instead of a
// generic error screen; upstream detail is never leaked.
func (h *Handler) respondWithAppError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotConnected:
		respondWithJSON(w, http.StatusConflict, map[string]string{
			"status": "GITHUB_NOT_CONNECTED",
			"error":  "GitHub account not connected",
		})
	case apperrors.KindInvalidArgument:
		respondWithError(w, http.StatusBadRequest, "Invalid request")
	case apperrors.KindNotFoundOrForbidden:
		respondWithError(w, http.StatusNotFound, "Not found")
	case apperrors.KindUpstreamRateLimit:
		respondWithError(w, http.StatusTooManyRequests, "GitHub rate limit hit, try again later")
	case apperrors.KindUpstreamAuth:
		respondWithJSON(w, http.StatusBadGateway, map[string]string{
			"status": "GITHUB_RECONNECT_REQUIRED",
			"error":  "GitHub rejected the stored credential",
		})
	case apperrors.KindUpstreamFetch, apperrors.KindActivityAggregationFailed:
		h.logger.Error("Upstream failure", "error", err)
		respondWithError(w, http.StatusBadGateway, "Upstream request failed")
	default:
		h.logger.Error("Internal error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

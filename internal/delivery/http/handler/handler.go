package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/catalog-imager/internal/delivery/http/request"
	"github.com/user/catalog-imager/internal/delivery/http/response"
	"github.com/user/catalog-imager/internal/entity"
	"github.com/user/catalog-imager/internal/repository"
	"github.com/user/catalog-imager/internal/usecase"
	"github.com/user/catalog-imager/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 50
)

// Pinger is a dependency whose health can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	resolver usecase.ImageResolver
	selector usecase.RecordSelector
	journal  repository.RunJournal
	checks   map[string]Pinger
	logger   *zap.Logger
}

// NewHandler wires the API handlers. journal may be nil; checks names the
// dependencies reported by the health endpoint.
func NewHandler(
	resolver usecase.ImageResolver,
	selector usecase.RecordSelector,
	journal repository.RunJournal,
	checks map[string]Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		resolver: resolver,
		selector: selector,
		journal:  journal,
		checks:   checks,
		logger:   logger,
	}
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req request.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeJSONError(w, "url is required", http.StatusBadRequest)
		return
	}

	if req.Force {
		if err := h.resolver.Invalidate(r.Context(), req.URL); err != nil && !errors.Is(err, usecase.ErrInvalidPageURL) {
			h.logger.Warn("Failed to invalidate cached resolution", zap.String("url", req.URL), zap.Error(err))
		}
	}

	res, err := h.resolver.ResolvePage(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidPageURL) {
			h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
			return
		}
		if code := repository.StatusCodeOf(err); code != 0 {
			h.writeJSONError(w, fmt.Sprintf("Source page returned HTTP %d", code), http.StatusBadGateway)
			return
		}
		h.logger.Error("Failed to resolve page", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, "Failed to fetch source page", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ResolveResponse{
		PageURL:    res.PageURL,
		Host:       res.Host,
		ImageURL:   res.ImageURL,
		Strategy:   res.Strategy,
		Found:      res.Found,
		Cached:     res.Cached,
		ResolvedAt: res.ResolvedAt,
	})
}

func (h *Handler) HandleNormalize(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if strings.TrimSpace(raw) == "" {
		h.writeJSONError(w, "raw query parameter is required", http.StatusBadRequest)
		return
	}

	abs, host, ok := utils.NormalizeURL(raw)
	if !ok {
		h.writeJSONError(w, "No host could be identified", http.StatusUnprocessableEntity)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NormalizeResponse{URL: abs, Host: host})
}

func (h *Handler) HandleSelection(w http.ResponseWriter, r *http.Request) {
	items, err := h.selector.Select(r.Context())
	if err != nil {
		h.logger.Error("Failed to select records", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []entity.Selection{}
	}
	h.writeJSON(w, http.StatusOK, response.SelectionResponse{Count: len(items), Items: items})
}

func (h *Handler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeJSONError(w, "Run journal is not enabled", http.StatusNotFound)
		return
	}

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to read run journal", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []entity.RunSummary{}
	}
	h.writeJSON(w, http.StatusOK, response.RunsResponse{Runs: runs})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "ok"}
	healthy := true
	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		healthStatus["status"] = "degraded"
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/reviewhub/internal/service"
	"github.com/utafrali/reviewhub/pkg/httputil"
)

// AnalyticsHandler handles the dashboard analytics endpoint.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics HTTP handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// Overview handles GET /api/v1/analytics/overview
// The days parameter is clamped to [7, 365] with a default of 90; a
// non-numeric value is rejected rather than silently defaulted.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "days must be an integer"},
			})
			return
		}
		days = parsed
	}

	overview, err := h.analytics.Overview(r.Context(), days)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: overview})
}

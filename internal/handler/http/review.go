package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/reviewhub/internal/service"
	"github.com/utafrali/reviewhub/pkg/httputil"
	"github.com/utafrali/reviewhub/pkg/pagination"
)

// ReviewHandler handles the product-facing review endpoints: the ingestion
// trigger, the review listing, and the per-product stats rollup.
type ReviewHandler struct {
	ingest  *service.IngestService
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(ingest *service.IngestService, reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		ingest:  ingest,
		reviews: reviews,
		logger:  logger,
	}
}

// Ingest handles POST /api/v1/products/{productId}/ingest
// Sources come from the comma-separated "sources" query parameter; when
// omitted, all configured sources are fetched. Partial failures still
// answer 200 with the per-source breakdown; a run that produced nothing
// (every source failed, or nothing could be written) answers 502 with
// the same body so callers can distinguish a dead upstream from a
// degraded one.
func (h *ReviewHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var sources []string
	if raw := r.URL.Query().Get("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, strings.ToLower(s))
			}
		}
	}

	result, err := h.ingest.Ingest(r.Context(), productID, sources)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	httputil.WriteJSON(w, status, httputil.Response{Data: result})
}

// ListReviews handles GET /api/v1/products/{productId}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.reviews.ListReviews(r.Context(), productID, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Stats handles GET /api/v1/products/{productId}/reviews/stats
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	stats, err := h.reviews.AggregateStats(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stats})
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/reviewhub/internal/service"
	"github.com/utafrali/reviewhub/pkg/httputil"
	"github.com/utafrali/reviewhub/pkg/pagination"
	"github.com/utafrali/reviewhub/pkg/validator"
)

// AdminHandler handles the moderation endpoints.
type AdminHandler struct {
	moderation *service.ModerationService
	reviews    *service.ReviewService
	logger     *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(moderation *service.ModerationService, reviews *service.ReviewService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		reviews:    reviews,
		logger:     logger,
	}
}

// ModerationRequest is the JSON request body for a moderation action.
// Flagged and status are independent; both may be combined in one call.
type ModerationRequest struct {
	Flagged *bool   `json:"flagged"`
	Status  *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}

// Queue handles GET /api/v1/admin/reviews
// Filters: status, flagged, product_id. Paginated, newest fetched first.
func (h *AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	var filter service.QueueFilter

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("flagged"); v != "" {
		flagged, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "flagged must be a boolean"},
			})
			return
		}
		filter.Flagged = &flagged
	}
	if v := q.Get("product_id"); v != "" {
		productID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || productID <= 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product_id must be a positive integer"},
			})
			return
		}
		filter.ProductID = &productID
	}

	params := pagination.FromRequest(r)

	result, err := h.moderation.Queue(r.Context(), filter, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Update handles PATCH /api/v1/admin/reviews/{id}
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid JSON body"},
		})
		return
	}

	if err := validator.Validate(&req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.ModerationInput{Flagged: req.Flagged, Status: req.Status}
	if err := h.moderation.Update(r.Context(), reviewID, input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"review_id": reviewID,
		"updated":   1,
	}})
}

// Delete handles DELETE /api/v1/admin/reviews/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.moderation.Delete(r.Context(), reviewID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"review_id": reviewID,
		"deleted":   1,
	}})
}

// DeleteByProduct handles DELETE /api/v1/admin/products/{productId}/reviews
func (h *AdminHandler) DeleteByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	deleted, err := h.reviews.DeleteByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"product_id": productID,
		"deleted":    deleted,
	}})
}

package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/repository"
	"github.com/utafrali/reviewhub/pkg/httputil"
)

func TestModerationQueueEndpoint(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	pending := domain.ModerationPending
	flagged := true

	reviewRepo.On("ModerationQueue", mock.Anything, repository.ModerationFilter{
		Status:  &pending,
		Flagged: &flagged,
	}, 20, 0).Return([]domain.Review{
		{ID: 11, ProductID: 5, Flagged: true, ModerationStatus: domain.ModerationPending},
	}, 1, nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews?status=pending&flagged=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Review `json:"data"`
		TotalCount int             `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Data, 1)
	assert.True(t, resp.Data[0].Flagged)
}

func TestModerationQueueEndpointEmpty(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("ModerationQueue", mock.Anything, repository.ModerationFilter{}, 20, 0).
		Return(nil, 0, nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Empty queue is a valid page, not an error.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	assert.Contains(t, rec.Body.String(), `"total_count":0`)
}

func TestModerationQueueEndpointBadFlagged(t *testing.T) {
	router := newTestRouter(testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews?flagged=maybe", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestModerationQueueEndpointUnknownStatus(t *testing.T) {
	router := newTestRouter(testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/reviews?status=archived", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModerationUpdateEndpoint(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	flagged := true
	reviewRepo.On("UpdateModeration", mock.Anything, int64(9), repository.ModerationUpdate{
		Flagged: &flagged,
	}).Return(int64(1), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/9", strings.NewReader(`{"flagged":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"review_id":9`)

	reviewRepo.AssertExpectations(t)
}

func TestModerationUpdateEndpointStatusChange(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	rejected := domain.ModerationRejected
	reviewRepo.On("UpdateModeration", mock.Anything, int64(9), repository.ModerationUpdate{
		Status: &rejected,
	}).Return(int64(1), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/9", strings.NewReader(`{"status":"rejected"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	reviewRepo.AssertExpectations(t)
}

func TestModerationUpdateEndpointInvalidStatus(t *testing.T) {
	router := newTestRouter(testDeps{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/9", strings.NewReader(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestModerationUpdateEndpointEmptyBody(t *testing.T) {
	router := newTestRouter(testDeps{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/9", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModerationUpdateEndpointMissingReview(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("UpdateModeration", mock.Anything, int64(404), mock.Anything).Return(int64(0), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/reviews/404", strings.NewReader(`{"flagged":false}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestModerationDeleteEndpoint(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("DeleteByID", mock.Anything, int64(3)).Return(int64(1), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/reviews/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":1`)
}

func TestModerationDeleteEndpointMissingReview(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("DeleteByID", mock.Anything, int64(3)).Return(int64(0), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/reviews/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteByProductEndpoint(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("DeleteByProduct", mock.Anything, int64(42)).Return(int64(17), nil)

	router := newTestRouter(testDeps{reviewRepo: reviewRepo})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/42/reviews", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted":17`)
	assert.Contains(t, rec.Body.String(), `"product_id":42`)
}

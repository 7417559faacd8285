package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/repository"
	apperrors "github.com/utafrali/reviewhub/pkg/errors"
	"github.com/utafrali/reviewhub/pkg/pagination"
)

func newModerationService(reviews *mockReviewRepo) *ModerationService {
	return NewModerationService(reviews, newTestProducer(), newTestLogger())
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestModerationQueueFilters(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	pending := domain.ModerationPending

	reviewRepo.On("ModerationQueue", mock.Anything, repository.ModerationFilter{
		Status:    &pending,
		Flagged:   boolPtr(true),
		ProductID: int64Ptr(5),
	}, 20, 0).Return([]domain.Review{
		{ID: 11, ProductID: 5, Flagged: true, ModerationStatus: domain.ModerationPending},
	}, 1, nil)

	svc := newModerationService(reviewRepo)

	result, err := svc.Queue(context.Background(), QueueFilter{
		Status:    strPtr("pending"),
		Flagged:   boolPtr(true),
		ProductID: int64Ptr(5),
	}, pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Data, 1)
	assert.Equal(t, int64(11), result.Data[0].ID)

	reviewRepo.AssertExpectations(t)
}

func TestModerationQueueEmptyIsNotAnError(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("ModerationQueue", mock.Anything, mock.Anything, 20, 0).Return(nil, 0, nil)

	svc := newModerationService(reviewRepo)

	result, err := svc.Queue(context.Background(), QueueFilter{}, pagination.Params{Page: 1, PerPage: 20})
	require.NoError(t, err)

	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
	assert.Equal(t, 0, result.TotalCount)
}

func TestModerationQueueRejectsUnknownStatus(t *testing.T) {
	svc := newModerationService(new(mockReviewRepo))

	_, err := svc.Queue(context.Background(), QueueFilter{Status: strPtr("deleted")}, pagination.Params{Page: 1, PerPage: 20})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestModerationUpdateFlagOnly(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	// Flagging must not touch the status column.
	reviewRepo.On("UpdateModeration", mock.Anything, int64(9), repository.ModerationUpdate{
		Flagged: boolPtr(true),
	}).Return(int64(1), nil)

	svc := newModerationService(reviewRepo)

	err := svc.Update(context.Background(), 9, ModerationInput{Flagged: boolPtr(true)})
	require.NoError(t, err)

	reviewRepo.AssertExpectations(t)
}

func TestModerationUpdateStatusOnly(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	rejected := domain.ModerationRejected
	reviewRepo.On("UpdateModeration", mock.Anything, int64(9), repository.ModerationUpdate{
		Status: &rejected,
	}).Return(int64(1), nil)

	svc := newModerationService(reviewRepo)

	err := svc.Update(context.Background(), 9, ModerationInput{Status: strPtr("rejected")})
	require.NoError(t, err)

	reviewRepo.AssertExpectations(t)
}

func TestModerationUpdateRequiresAField(t *testing.T) {
	svc := newModerationService(new(mockReviewRepo))

	err := svc.Update(context.Background(), 9, ModerationInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestModerationUpdateRejectsUnknownStatus(t *testing.T) {
	svc := newModerationService(new(mockReviewRepo))

	err := svc.Update(context.Background(), 9, ModerationInput{Status: strPtr("archived")})
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestModerationUpdateMissingReview(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("UpdateModeration", mock.Anything, int64(404), mock.Anything).Return(int64(0), nil)

	svc := newModerationService(reviewRepo)

	err := svc.Update(context.Background(), 404, ModerationInput{Flagged: boolPtr(false)})
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestModerationDelete(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("DeleteByID", mock.Anything, int64(3)).Return(int64(1), nil)

	svc := newModerationService(reviewRepo)

	require.NoError(t, svc.Delete(context.Background(), 3))
	reviewRepo.AssertExpectations(t)
}

func TestModerationDeleteMissingReview(t *testing.T) {
	reviewRepo := new(mockReviewRepo)
	reviewRepo.On("DeleteByID", mock.Anything, int64(3)).Return(int64(0), nil)

	svc := newModerationService(reviewRepo)

	err := svc.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

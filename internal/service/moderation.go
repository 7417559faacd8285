package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/event"
	"github.com/utafrali/reviewhub/internal/repository"
	apperrors "github.com/utafrali/reviewhub/pkg/errors"
	"github.com/utafrali/reviewhub/pkg/pagination"
)

// ModerationInput carries one moderation action. Flagged and Status are
// independent: a nil field leaves the stored value untouched, so flagging a
// review never changes its status and vice versa.
type ModerationInput struct {
	Flagged *bool
	Status  *string
}

// ModerationService governs review visibility: queue retrieval, status and
// flag updates, and permanent deletion.
type ModerationService struct {
	reviews  repository.ReviewRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewModerationService creates a new moderation service.
func NewModerationService(reviews repository.ReviewRepository, producer *event.Producer, logger *slog.Logger) *ModerationService {
	return &ModerationService{
		reviews:  reviews,
		producer: producer,
		logger:   logger,
	}
}

// QueueFilter mirrors the moderation queue's filter surface.
type QueueFilter struct {
	Status    *string
	Flagged   *bool
	ProductID *int64
}

// Queue returns a filtered page of reviews awaiting attention, newest
// fetched first, with the total match count for pagination.
func (s *ModerationService) Queue(ctx context.Context, filter QueueFilter, params pagination.Params) (*pagination.Result[domain.Review], error) {
	repoFilter := repository.ModerationFilter{
		Flagged:   filter.Flagged,
		ProductID: filter.ProductID,
	}

	if filter.Status != nil {
		status := domain.ModerationStatus(*filter.Status)
		if !status.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown moderation status %q", *filter.Status))
		}
		repoFilter.Status = &status
	}

	reviews, total, err := s.reviews.ModerationQueue(ctx, repoFilter, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("moderation queue: %w", err)
	}

	result := pagination.NewResult(reviews, total, params)
	return &result, nil
}

// Update applies a moderation action to one review. At least one of flagged
// or status must be provided; an unknown status or a missing review is
// rejected. Transitions are free-form: any status may move to any other.
func (s *ModerationService) Update(ctx context.Context, reviewID int64, input ModerationInput) error {
	if input.Flagged == nil && input.Status == nil {
		return apperrors.InvalidInput("at least one of flagged or status is required")
	}

	update := repository.ModerationUpdate{Flagged: input.Flagged}

	var status *domain.ModerationStatus
	if input.Status != nil {
		st := domain.ModerationStatus(*input.Status)
		if !st.Valid() {
			return apperrors.InvalidInput(fmt.Sprintf("unknown moderation status %q", *input.Status))
		}
		status = &st
		update.Status = &st
	}

	affected, err := s.reviews.UpdateModeration(ctx, reviewID, update)
	if err != nil {
		return fmt.Errorf("update moderation: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("review", fmt.Sprintf("%d", reviewID))
	}

	s.logger.InfoContext(ctx, "review moderated",
		slog.Int64("review_id", reviewID),
		slog.Any("flagged", input.Flagged),
		slog.Any("status", input.Status),
	)

	if err := s.producer.PublishReviewModerated(ctx, reviewID, input.Flagged, status); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.moderated event",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// Delete permanently removes one review. Deleting a missing review reports
// not found rather than silently succeeding.
func (s *ModerationService) Delete(ctx context.Context, reviewID int64) error {
	deleted, err := s.reviews.DeleteByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if deleted == 0 {
		return apperrors.NotFound("review", fmt.Sprintf("%d", reviewID))
	}

	s.logger.InfoContext(ctx, "review deleted", slog.Int64("review_id", reviewID))

	if err := s.producer.PublishReviewDeleted(ctx, reviewID, 0, deleted); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review.deleted event",
			slog.String("error", err.Error()),
		)
	}

	return nil
}

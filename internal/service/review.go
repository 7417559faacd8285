package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/event"
	"github.com/utafrali/reviewhub/internal/repository"
	apperrors "github.com/utafrali/reviewhub/pkg/errors"
	"github.com/utafrali/reviewhub/pkg/pagination"
)

// ReviewService implements the read and administrative operations on
// stored reviews.
type ReviewService struct {
	reviews   repository.ReviewRepository
	analytics repository.AnalyticsRepository
	products  repository.ProductRepository
	producer  *event.Producer
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	analytics repository.AnalyticsRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		analytics: analytics,
		products:  products,
		producer:  producer,
		logger:    logger,
	}
}

// ListReviews returns a page of stored reviews for a product, most recently
// authored first.
func (s *ReviewService) ListReviews(ctx context.Context, productID int64, params pagination.Params) (*pagination.Result[domain.Review], error) {
	reviews, total, err := s.reviews.ListByProduct(ctx, productID, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	result := pagination.NewResult(reviews, total, params)
	return &result, nil
}

// AggregateStats computes the single-product rollup: total count, overall
// average, per-source breakdown, and a dense 1-5 rating histogram. The
// grouped queries are combined here rather than in one rollup statement so
// the SQL stays portable.
func (s *ReviewService) AggregateStats(ctx context.Context, productID int64) (*domain.AggregateStats, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return nil, apperrors.NotFound("product", fmt.Sprintf("%d", productID))
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	total, avg, err := s.analytics.ProductTotals(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product totals: %w", err)
	}

	breakdown, err := s.analytics.ProductSourceStats(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product source stats: %w", err)
	}
	for i := range breakdown {
		breakdown[i].AverageRating = round2(breakdown[i].AverageRating)
	}

	counts, err := s.analytics.ProductRatingCounts(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product rating counts: %w", err)
	}

	return &domain.AggregateStats{
		ProductID:       productID,
		TotalReviews:    total,
		OverallAverage:  round2(avg),
		SourceBreakdown: breakdown,
		RatingHistogram: denseHistogram(counts),
	}, nil
}

// DeleteByProduct permanently removes every stored review of a product.
func (s *ReviewService) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	deleted, err := s.reviews.DeleteByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("delete reviews by product: %w", err)
	}

	s.logger.InfoContext(ctx, "deleted product reviews",
		slog.Int64("product_id", productID),
		slog.Int64("deleted", deleted),
	)

	if deleted > 0 {
		if err := s.producer.PublishReviewDeleted(ctx, 0, productID, deleted); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.deleted event",
				slog.String("error", err.Error()),
			)
		}
	}

	return deleted, nil
}

// denseHistogram spreads sparse rating counts over the fixed 1-5 buckets.
// Buckets absent from the data are present with value zero.
func denseHistogram(counts map[int]int) map[int]int {
	hist := make(map[int]int, 5)
	for rating := 1; rating <= 5; rating++ {
		hist[rating] = counts[rating]
	}
	return hist
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

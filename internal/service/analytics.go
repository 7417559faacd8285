package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/repository"
)

const (
	minWindowDays     = 7
	maxWindowDays     = 365
	defaultWindowDays = 90
	topProductsLimit  = 6
)

// AnalyticsService computes the dashboard overview from the review corpus.
// Everything is derived fresh on each call; there is no persisted cache.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	logger    *slog.Logger
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(analytics repository.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		logger:    logger,
	}
}

// ClampWindow normalizes a requested window to [7, 365] days, defaulting
// to 90 when unset.
func ClampWindow(days int) int {
	if days == 0 {
		return defaultWindowDays
	}
	if days < minWindowDays {
		return minWindowDays
	}
	if days > maxWindowDays {
		return maxWindowDays
	}
	return days
}

// Overview assembles the full analytics view. Totals, source mix, and the
// histogram cover the whole corpus; timeline and activity are restricted to
// the trailing window.
func (s *AnalyticsService) Overview(ctx context.Context, windowDays int) (*domain.AnalyticsOverview, error) {
	days := ClampWindow(windowDays)
	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	totals, err := s.analytics.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	totals.AverageRating = round2(totals.AverageRating)

	sourceMix, err := s.analytics.SourceMix(ctx)
	if err != nil {
		return nil, fmt.Errorf("source mix: %w", err)
	}
	for i := range sourceMix {
		sourceMix[i].AverageRating = round2(sourceMix[i].AverageRating)
	}

	counts, err := s.analytics.RatingCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("rating counts: %w", err)
	}

	timeline, err := s.analytics.Timeline(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	for i := range timeline {
		timeline[i].AverageRating = round2(timeline[i].AverageRating)
	}

	activity, err := s.analytics.ActivityBySource(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("activity by source: %w", err)
	}

	topProducts, err := s.analytics.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	for i := range topProducts {
		topProducts[i].AverageRating = round2(topProducts[i].AverageRating)
	}

	s.logger.DebugContext(ctx, "analytics overview computed",
		slog.Int("window_days", days),
		slog.Int("total_reviews", totals.TotalReviews),
	)

	return &domain.AnalyticsOverview{
		WindowDays:       days,
		Totals:           totals,
		SourceMix:        sourceMix,
		RatingHistogram:  denseHistogram(counts),
		Timeline:         timeline,
		ActivityBySource: activity,
		TopProducts:      topProducts,
	}, nil
}

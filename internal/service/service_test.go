package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/event"
	"github.com/utafrali/reviewhub/internal/repository"
	pkgkafka "github.com/utafrali/reviewhub/pkg/kafka"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// newTestProducer builds an event producer against an unreachable broker;
// services treat publish failures as non-fatal, so tests run without Kafka.
func newTestProducer() *event.Producer {
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      []string{"localhost:9092"},
		BatchTimeout: 10 * time.Millisecond,
	}, newTestLogger())
	return event.NewProducer(kafkaProducer, newTestLogger())
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Upsert(ctx context.Context, review *domain.Review) (bool, error) {
	args := m.Called(ctx, review)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) UpsertBatch(ctx context.Context, reviews []domain.Review) (repository.UpsertResult, error) {
	args := m.Called(ctx, reviews)
	return args.Get(0).(repository.UpsertResult), args.Error(1)
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, limit, offset)
	var reviews []domain.Review
	if args.Get(0) != nil {
		reviews = args.Get(0).([]domain.Review)
	}
	return reviews, args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) CountByProduct(ctx context.Context, productID int64) (int, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Error(1)
}

func (m *mockReviewRepo) ModerationQueue(ctx context.Context, filter repository.ModerationFilter, limit, offset int) ([]domain.Review, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	var reviews []domain.Review
	if args.Get(0) != nil {
		reviews = args.Get(0).([]domain.Review)
	}
	return reviews, args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) UpdateModeration(ctx context.Context, id int64, update repository.ModerationUpdate) (int64, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepo) DeleteByID(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReviewRepo) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) Totals(ctx context.Context) (domain.AnalyticsTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.AnalyticsTotals), args.Error(1)
}

func (m *mockAnalyticsRepo) SourceMix(ctx context.Context) ([]domain.SourceStats, error) {
	args := m.Called(ctx)
	var stats []domain.SourceStats
	if args.Get(0) != nil {
		stats = args.Get(0).([]domain.SourceStats)
	}
	return stats, args.Error(1)
}

func (m *mockAnalyticsRepo) RatingCounts(ctx context.Context) (map[int]int, error) {
	args := m.Called(ctx)
	var counts map[int]int
	if args.Get(0) != nil {
		counts = args.Get(0).(map[int]int)
	}
	return counts, args.Error(1)
}

func (m *mockAnalyticsRepo) Timeline(ctx context.Context, since time.Time) ([]domain.TimelineBucket, error) {
	args := m.Called(ctx, since)
	var buckets []domain.TimelineBucket
	if args.Get(0) != nil {
		buckets = args.Get(0).([]domain.TimelineBucket)
	}
	return buckets, args.Error(1)
}

func (m *mockAnalyticsRepo) ActivityBySource(ctx context.Context, since time.Time) ([]domain.SourceActivityBucket, error) {
	args := m.Called(ctx, since)
	var buckets []domain.SourceActivityBucket
	if args.Get(0) != nil {
		buckets = args.Get(0).([]domain.SourceActivityBucket)
	}
	return buckets, args.Error(1)
}

func (m *mockAnalyticsRepo) TopProducts(ctx context.Context, limit int) ([]domain.ProductRanking, error) {
	args := m.Called(ctx, limit)
	var rankings []domain.ProductRanking
	if args.Get(0) != nil {
		rankings = args.Get(0).([]domain.ProductRanking)
	}
	return rankings, args.Error(1)
}

func (m *mockAnalyticsRepo) ProductTotals(ctx context.Context, productID int64) (int, float64, error) {
	args := m.Called(ctx, productID)
	return args.Int(0), args.Get(1).(float64), args.Error(2)
}

func (m *mockAnalyticsRepo) ProductSourceStats(ctx context.Context, productID int64) ([]domain.SourceStats, error) {
	args := m.Called(ctx, productID)
	var stats []domain.SourceStats
	if args.Get(0) != nil {
		stats = args.Get(0).([]domain.SourceStats)
	}
	return stats, args.Error(1)
}

func (m *mockAnalyticsRepo) ProductRatingCounts(ctx context.Context, productID int64) (map[int]int, error) {
	args := m.Called(ctx, productID)
	var counts map[int]int
	if args.Get(0) != nil {
		counts = args.Get(0).(map[int]int)
	}
	return counts, args.Error(1)
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/pkg/database"
)

// AnalyticsRepository implements the read-only aggregation primitives over
// the review corpus. Every method is a pure read.
type AnalyticsRepository struct {
	pool database.DBTX
}

// NewAnalyticsRepository creates a new PostgreSQL-backed analytics repository.
func NewAnalyticsRepository(pool database.DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// Totals returns corpus-wide counters.
func (r *AnalyticsRepository) Totals(ctx context.Context) (domain.AnalyticsTotals, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(DISTINCT product_id),
		       COALESCE(AVG(rating), 0),
		       MAX(fetched_at)
		FROM reviews`

	var totals domain.AnalyticsTotals
	err := r.pool.QueryRow(ctx, query).Scan(
		&totals.TotalReviews,
		&totals.ProductsCovered,
		&totals.AverageRating,
		&totals.LastIngestedAt,
	)
	if err != nil {
		return domain.AnalyticsTotals{}, fmt.Errorf("analytics totals: %w", err)
	}

	return totals, nil
}

// SourceMix returns per-source count and mean rating over the whole corpus,
// ordered by count descending.
func (r *AnalyticsRepository) SourceMix(ctx context.Context) ([]domain.SourceStats, error) {
	query := `
		SELECT source, COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		GROUP BY source
		ORDER BY COUNT(*) DESC, source ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source mix: %w", err)
	}
	defer rows.Close()

	var stats []domain.SourceStats
	for rows.Next() {
		var s domain.SourceStats
		if err := rows.Scan(&s.Source, &s.Count, &s.AverageRating); err != nil {
			return nil, fmt.Errorf("scan source mix row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source mix rows: %w", err)
	}

	if stats == nil {
		stats = []domain.SourceStats{}
	}
	return stats, nil
}

// RatingCounts returns the sparse per-rating counts of the whole corpus.
func (r *AnalyticsRepository) RatingCounts(ctx context.Context) (map[int]int, error) {
	return r.ratingCounts(ctx, `SELECT rating, COUNT(*) FROM reviews GROUP BY rating`)
}

// ProductRatingCounts returns the sparse per-rating counts for one product.
func (r *AnalyticsRepository) ProductRatingCounts(ctx context.Context, productID int64) (map[int]int, error) {
	return r.ratingCounts(ctx, `SELECT rating, COUNT(*) FROM reviews WHERE product_id = $1 GROUP BY rating`, productID)
}

func (r *AnalyticsRepository) ratingCounts(ctx context.Context, query string, args ...any) (map[int]int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rating counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan rating count row: %w", err)
		}
		counts[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating count rows: %w", err)
	}

	return counts, nil
}

// Timeline returns day-bucketed counts and mean ratings since the given
// time, ascending by day. The bucketing key is the authored date, falling
// back to the fetched date for rows without one.
func (r *AnalyticsRepository) Timeline(ctx context.Context, since time.Time) ([]domain.TimelineBucket, error) {
	query := `
		SELECT date_trunc('day', COALESCE(created_at, fetched_at)) AS day,
		       COUNT(*),
		       COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE COALESCE(created_at, fetched_at) >= $1
		GROUP BY day
		ORDER BY day ASC`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	defer rows.Close()

	var buckets []domain.TimelineBucket
	for rows.Next() {
		var b domain.TimelineBucket
		if err := rows.Scan(&b.Day, &b.Count, &b.AverageRating); err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline rows: %w", err)
	}

	if buckets == nil {
		buckets = []domain.TimelineBucket{}
	}
	return buckets, nil
}

// ActivityBySource returns the day-by-source activity matrix since the
// given time.
func (r *AnalyticsRepository) ActivityBySource(ctx context.Context, since time.Time) ([]domain.SourceActivityBucket, error) {
	query := `
		SELECT date_trunc('day', COALESCE(created_at, fetched_at)) AS day,
		       source,
		       COUNT(*)
		FROM reviews
		WHERE COALESCE(created_at, fetched_at) >= $1
		GROUP BY day, source
		ORDER BY day ASC, source ASC`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("activity by source: %w", err)
	}
	defer rows.Close()

	var buckets []domain.SourceActivityBucket
	for rows.Next() {
		var b domain.SourceActivityBucket
		if err := rows.Scan(&b.Day, &b.Source, &b.Count); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}

	if buckets == nil {
		buckets = []domain.SourceActivityBucket{}
	}
	return buckets, nil
}

// TopProducts ranks products by review count descending, tie-broken by mean
// rating descending, including the first and last observed review times.
func (r *AnalyticsRepository) TopProducts(ctx context.Context, limit int) ([]domain.ProductRanking, error) {
	if limit <= 0 {
		limit = 6
	}

	query := `
		SELECT p.id, p.name, p.price,
		       COUNT(r.id) AS review_count,
		       COALESCE(AVG(r.rating), 0) AS avg_rating,
		       MIN(COALESCE(r.created_at, r.fetched_at)) AS first_review_at,
		       MAX(COALESCE(r.created_at, r.fetched_at)) AS last_review_at
		FROM products p
		JOIN reviews r ON r.product_id = p.id
		GROUP BY p.id, p.name, p.price
		ORDER BY review_count DESC, avg_rating DESC, p.id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var rankings []domain.ProductRanking
	for rows.Next() {
		var p domain.ProductRanking
		if err := rows.Scan(
			&p.ProductID,
			&p.Name,
			&p.Price,
			&p.ReviewCount,
			&p.AverageRating,
			&p.FirstReviewAt,
			&p.LastReviewAt,
		); err != nil {
			return nil, fmt.Errorf("scan top product row: %w", err)
		}
		rankings = append(rankings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top product rows: %w", err)
	}

	if rankings == nil {
		rankings = []domain.ProductRanking{}
	}
	return rankings, nil
}

// ProductTotals returns review count and mean rating for one product.
func (r *AnalyticsRepository) ProductTotals(ctx context.Context, productID int64) (int, float64, error) {
	var (
		count int
		avg   float64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1`,
		productID,
	).Scan(&count, &avg)
	if err != nil {
		return 0, 0, fmt.Errorf("product totals: %w", err)
	}
	return count, avg, nil
}

// ProductSourceStats returns the per-source breakdown for one product,
// ordered by count descending.
func (r *AnalyticsRepository) ProductSourceStats(ctx context.Context, productID int64) ([]domain.SourceStats, error) {
	query := `
		SELECT source, COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE product_id = $1
		GROUP BY source
		ORDER BY COUNT(*) DESC, source ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("product source stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.SourceStats
	for rows.Next() {
		var s domain.SourceStats
		if err := rows.Scan(&s.Source, &s.Count, &s.AverageRating); err != nil {
			return nil, fmt.Errorf("scan product source row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product source rows: %w", err)
	}

	if stats == nil {
		stats = []domain.SourceStats{}
	}
	return stats, nil
}

package repository

import (
	"context"
	"time"

	"github.com/utafrali/reviewhub/internal/domain"
)

// UpsertResult reports the outcome of a batch upsert.
type UpsertResult struct {
	Affected   int
	Inserted   int
	Duplicates int
	// Skipped counts records whose individual write failed. They are
	// neither inserted nor duplicates.
	Skipped int
}

// Add merges another result into this one.
func (r *UpsertResult) Add(other UpsertResult) {
	r.Affected += other.Affected
	r.Inserted += other.Inserted
	r.Duplicates += other.Duplicates
	r.Skipped += other.Skipped
}

// ModerationFilter defines filter criteria for the moderation queue.
type ModerationFilter struct {
	Status    *domain.ModerationStatus
	Flagged   *bool
	ProductID *int64
}

// ModerationUpdate carries the fields of a moderation action. Nil fields
// are left untouched; flagged and status are independent signals.
type ModerationUpdate struct {
	Flagged *bool
	Status  *domain.ModerationStatus
}

// ReviewRepository defines the persistence interface for reviews. The
// (product_id, source, external_review_id) triple is enforced as a
// uniqueness constraint by the underlying store.
type ReviewRepository interface {
	// Upsert writes one review. It reports wasNew=true when a new row was
	// created, false when an existing identity key was refreshed.
	Upsert(ctx context.Context, review *domain.Review) (bool, error)

	// UpsertBatch writes a batch, skipping records whose individual write
	// fails. The batch never fails as a whole on a per-record error.
	UpsertBatch(ctx context.Context, reviews []domain.Review) (UpsertResult, error)

	// ListByProduct returns a page of reviews for a product ordered by
	// authored date descending, along with the total count.
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, int, error)

	// CountByProduct returns the number of stored reviews for a product.
	CountByProduct(ctx context.Context, productID int64) (int, error)

	// ModerationQueue returns a filtered page plus the total match count.
	ModerationQueue(ctx context.Context, filter ModerationFilter, limit, offset int) ([]domain.Review, int, error)

	// UpdateModeration applies a moderation action and returns the number
	// of affected rows (0 when the review does not exist).
	UpdateModeration(ctx context.Context, id int64, update ModerationUpdate) (int64, error)

	// DeleteByID removes one review and returns the affected row count.
	DeleteByID(ctx context.Context, id int64) (int64, error)

	// DeleteByProduct removes all reviews of a product.
	DeleteByProduct(ctx context.Context, productID int64) (int64, error)
}

// AnalyticsRepository exposes the read-only aggregation primitives. All
// operations are pure reads; repeated calls with unchanged data return
// identical results.
type AnalyticsRepository interface {
	// Totals returns corpus-wide counters.
	Totals(ctx context.Context) (domain.AnalyticsTotals, error)

	// SourceMix returns per-source count and mean rating over the whole
	// corpus, ordered by count descending.
	SourceMix(ctx context.Context) ([]domain.SourceStats, error)

	// RatingCounts returns the per-rating counts present in the corpus.
	// Missing buckets are absent; callers densify over 1..5.
	RatingCounts(ctx context.Context) (map[int]int, error)

	// Timeline returns day-bucketed counts and mean ratings since the
	// given time, ascending by day. Bucketing uses the authored date,
	// falling back to the fetched date.
	Timeline(ctx context.Context, since time.Time) ([]domain.TimelineBucket, error)

	// ActivityBySource returns the day-by-source activity matrix since the
	// given time.
	ActivityBySource(ctx context.Context, since time.Time) ([]domain.SourceActivityBucket, error)

	// TopProducts ranks products by review count descending, tie-broken
	// by mean rating descending.
	TopProducts(ctx context.Context, limit int) ([]domain.ProductRanking, error)

	// ProductTotals returns review count and mean rating for one product.
	ProductTotals(ctx context.Context, productID int64) (int, float64, error)

	// ProductSourceStats returns the per-source breakdown for one product.
	ProductSourceStats(ctx context.Context, productID int64) ([]domain.SourceStats, error)

	// ProductRatingCounts returns the sparse rating counts for one product.
	ProductRatingCounts(ctx context.Context, productID int64) (map[int]int, error)
}

// ProductRepository defines the read-only interface to catalog products.
type ProductRepository interface {
	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

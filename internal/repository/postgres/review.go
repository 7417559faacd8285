package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/repository"
	"github.com/utafrali/reviewhub/pkg/database"
)

// upsertReviewSQL performs the atomic insert-or-refresh on the identity key.
// (xmax = 0) is true only for freshly inserted rows, which lets one round
// trip distinguish an insert from a duplicate refresh without a racy
// check-then-write.
const upsertReviewSQL = `
	INSERT INTO reviews (
		product_id, source, external_review_id, author, rating, title, body,
		verified_purchase, created_at, fetched_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (product_id, source, external_review_id) DO UPDATE SET
		author = EXCLUDED.author,
		rating = EXCLUDED.rating,
		title = EXCLUDED.title,
		body = EXCLUDED.body,
		verified_purchase = EXCLUDED.verified_purchase,
		fetched_at = EXCLUDED.fetched_at
	RETURNING id, (xmax = 0) AS was_new`

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	pool   database.DBTX
	logger *slog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX, logger *slog.Logger) *ReviewRepository {
	return &ReviewRepository{pool: pool, logger: logger}
}

// Upsert writes one review, reporting whether a new row was created. The
// review's ID is populated from the database.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) (bool, error) {
	ctx, end := database.TraceQuery(ctx, "UpsertReview", upsertReviewSQL)

	var wasNew bool
	err := r.pool.QueryRow(ctx, upsertReviewSQL,
		review.ProductID,
		review.Source,
		review.ExternalID,
		review.Author,
		review.Rating,
		review.Title,
		review.Body,
		review.VerifiedPurchase,
		review.CreatedAt,
		review.FetchedAt,
	).Scan(&review.ID, &wasNew)
	end(err)
	if err != nil {
		return false, fmt.Errorf("upsert review: %w", err)
	}

	return wasNew, nil
}

// UpsertBatch writes a batch of reviews one record at a time. A failing
// record is logged and counted as skipped; it never aborts the rest of the
// batch.
func (r *ReviewRepository) UpsertBatch(ctx context.Context, reviews []domain.Review) (repository.UpsertResult, error) {
	var result repository.UpsertResult

	for i := range reviews {
		wasNew, err := r.Upsert(ctx, &reviews[i])
		if err != nil {
			result.Skipped++
			r.logger.WarnContext(ctx, "skipping review record, write failed",
				slog.Int64("product_id", reviews[i].ProductID),
				slog.String("source", reviews[i].Source),
				slog.String("external_review_id", reviews[i].ExternalID),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.Affected++
		if wasNew {
			result.Inserted++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}

// ListByProduct returns a page of reviews for a product ordered by authored
// date descending (nulls last), along with the total count.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, product_id, source, external_review_id, author, rating, title, body,
		       verified_purchase, flagged, moderation_status, created_at, fetched_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC NULLS LAST, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.Source,
			&rv.ExternalID,
			&rv.Author,
			&rv.Rating,
			&rv.Title,
			&rv.Body,
			&rv.VerifiedPurchase,
			&rv.Flagged,
			&rv.ModerationStatus,
			&rv.CreatedAt,
			&rv.FetchedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// CountByProduct returns the number of stored reviews for a product.
func (r *ReviewRepository) CountByProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// ModerationQueue returns a filtered page of reviews ordered by fetched_at
// descending, plus the total match count.
func (r *ReviewRepository) ModerationQueue(ctx context.Context, filter repository.ModerationFilter, limit, offset int) ([]domain.Review, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var (
		conditions []string
		args       []any
	)

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, "moderation_status = $"+strconv.Itoa(len(args)))
	}
	if filter.Flagged != nil {
		args = append(args, *filter.Flagged)
		conditions = append(conditions, "flagged = $"+strconv.Itoa(len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, "product_id = $"+strconv.Itoa(len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, product_id, source, external_review_id, author, rating, title, body,
		       verified_purchase, flagged, moderation_status, created_at, fetched_at,
		       count(*) OVER() AS total_count
		FROM reviews
		%s
		ORDER BY fetched_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("moderation queue: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.Source,
			&rv.ExternalID,
			&rv.Author,
			&rv.Rating,
			&rv.Title,
			&rv.Body,
			&rv.VerifiedPurchase,
			&rv.Flagged,
			&rv.ModerationStatus,
			&rv.CreatedAt,
			&rv.FetchedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan moderation row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate moderation rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// UpdateModeration applies a moderation action. Only the fields present in
// the update are touched; flagged and status never change implicitly.
func (r *ReviewRepository) UpdateModeration(ctx context.Context, id int64, update repository.ModerationUpdate) (int64, error) {
	var (
		sets []string
		args []any
	)

	if update.Flagged != nil {
		args = append(args, *update.Flagged)
		sets = append(sets, "flagged = $"+strconv.Itoa(len(args)))
	}
	if update.Status != nil {
		args = append(args, string(*update.Status))
		sets = append(sets, "moderation_status = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return 0, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE reviews SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update moderation: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByID permanently removes one review.
func (r *ReviewRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete review: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByProduct removes all reviews of a product.
func (r *ReviewRepository) DeleteByProduct(ctx context.Context, productID int64) (int64, error) {
	ctx, end := database.TraceQuery(ctx, "DeleteReviewsByProduct", "DELETE FROM reviews WHERE product_id = $1")
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1`, productID)
	end(err)
	if err != nil {
		return 0, fmt.Errorf("delete reviews by product: %w", err)
	}
	return tag.RowsAffected(), nil
}

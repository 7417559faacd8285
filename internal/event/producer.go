package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/reviewhub/internal/domain"
	pkgkafka "github.com/utafrali/reviewhub/pkg/kafka"
)

// Kafka topic constants for review domain events.
const (
	TopicReviewsIngested = "reviewhub.reviews.ingested"
	TopicReviewModerated = "reviewhub.review.moderated"
	TopicReviewDeleted   = "reviewhub.review.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
)

// Source identifier for events originating from this service.
const SourceReviewHub = "reviewhub"

// ReviewsIngestedData is the payload for a reviews.ingested event.
type ReviewsIngestedData struct {
	ProductID        int64    `json:"product_id"`
	SourcesRequested []string `json:"sources_requested"`
	TotalFetched     int      `json:"total_fetched"`
	Inserted         int      `json:"inserted"`
	Duplicates       int      `json:"duplicates"`
	Skipped          int      `json:"skipped"`
	FailedSources    []string `json:"failed_sources,omitempty"`
}

// ReviewModeratedData is the payload for a review.moderated event.
type ReviewModeratedData struct {
	ReviewID int64   `json:"review_id"`
	Flagged  *bool   `json:"flagged,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ReviewID  int64 `json:"review_id,omitempty"`
	ProductID int64 `json:"product_id,omitempty"`
	Deleted   int64 `json:"deleted"`
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewsIngested publishes a reviews.ingested event describing one
// completed ingestion run.
func (p *Producer) PublishReviewsIngested(ctx context.Context, result *domain.IngestionResult) error {
	failed := make([]string, 0, len(result.PerSourceErrors))
	for _, e := range result.PerSourceErrors {
		failed = append(failed, e.Source)
	}

	data := ReviewsIngestedData{
		ProductID:        result.ProductID,
		SourcesRequested: result.SourcesRequested,
		TotalFetched:     result.TotalFetched,
		Inserted:         result.Inserted,
		Duplicates:       result.Duplicates,
		Skipped:          result.Skipped,
		FailedSources:    failed,
	}

	aggregateID := strconv.FormatInt(result.ProductID, 10)
	event, err := pkgkafka.NewEvent(TopicReviewsIngested, aggregateID, AggregateTypeProduct, SourceReviewHub, data)
	if err != nil {
		return fmt.Errorf("create reviews.ingested event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewsIngested, event); err != nil {
		return fmt.Errorf("publish reviews.ingested event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reviews.ingested event",
		slog.Int64("product_id", result.ProductID),
		slog.Int("inserted", result.Inserted),
		slog.Int("duplicates", result.Duplicates),
	)

	return nil
}

// PublishReviewModerated publishes a review.moderated event.
func (p *Producer) PublishReviewModerated(ctx context.Context, reviewID int64, flagged *bool, status *domain.ModerationStatus) error {
	data := ReviewModeratedData{ReviewID: reviewID, Flagged: flagged}
	if status != nil {
		s := string(*status)
		data.Status = &s
	}

	aggregateID := strconv.FormatInt(reviewID, 10)
	event, err := pkgkafka.NewEvent(TopicReviewModerated, aggregateID, AggregateTypeReview, SourceReviewHub, data)
	if err != nil {
		return fmt.Errorf("create review.moderated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewModerated, event); err != nil {
		return fmt.Errorf("publish review.moderated event: %w", err)
	}

	return nil
}

// PublishReviewDeleted publishes a review.deleted event covering either a
// single review or a whole product's reviews.
func (p *Producer) PublishReviewDeleted(ctx context.Context, reviewID, productID, deleted int64) error {
	data := ReviewDeletedData{ReviewID: reviewID, ProductID: productID, Deleted: deleted}

	aggregateID := strconv.FormatInt(reviewID, 10)
	if reviewID == 0 {
		aggregateID = strconv.FormatInt(productID, 10)
	}

	event, err := pkgkafka.NewEvent(TopicReviewDeleted, aggregateID, AggregateTypeReview, SourceReviewHub, data)
	if err != nil {
		return fmt.Errorf("create review.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewDeleted, event); err != nil {
		return fmt.Errorf("publish review.deleted event: %w", err)
	}

	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/reviewhub/internal/domain"
	"github.com/utafrali/reviewhub/internal/event"
	"github.com/utafrali/reviewhub/internal/provider"
	"github.com/utafrali/reviewhub/internal/repository"
	apperrors "github.com/utafrali/reviewhub/pkg/errors"
)

// upsertChunkSize bounds the size of a single write unit handed to the store.
const upsertChunkSize = 100

var (
	reviewsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviews_fetched_total",
			Help: "Total number of raw reviews fetched from upstream providers",
		},
		[]string{"source"},
	)

	providerFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_failures_total",
			Help: "Total number of failed provider fetches",
		},
		[]string{"source"},
	)

	ingestionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_runs_total",
			Help: "Total number of ingestion runs by outcome",
		},
		[]string{"status"},
	)

	reviewsInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_inserted_total",
			Help: "Total number of new review rows created by ingestion",
		},
	)
)

// IngestService orchestrates multi-source review ingestion: fan-out to
// provider clients, normalization, and chunked upsert into the store. One
// source failing never affects another source's results.
type IngestService struct {
	providers  *provider.Registry
	normalizer *provider.Normalizer
	reviews    repository.ReviewRepository
	products   repository.ProductRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewIngestService creates a new ingestion orchestrator.
func NewIngestService(
	providers *provider.Registry,
	normalizer *provider.Normalizer,
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		providers:  providers,
		normalizer: normalizer,
		reviews:    reviews,
		products:   products,
		producer:   producer,
		logger:     logger,
	}
}

// sourceFetch is the settled outcome of one provider task. Failures are
// carried as values so one source's error cannot abort its siblings.
type sourceFetch struct {
	source string
	raw    []provider.RawReview
	err    error
}

// Ingest fetches reviews for a product from the requested sources in
// parallel and upserts the merged batch. When sources is empty, all
// configured sources are used. Partial source failures are reported in the
// result, never as an error; a hard error is returned only for an unknown
// product.
func (s *IngestService) Ingest(ctx context.Context, productID int64, sources []string) (*domain.IngestionResult, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return nil, apperrors.NotFound("product", fmt.Sprintf("%d", productID))
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	if len(sources) == 0 {
		sources = s.providers.Sources()
	}

	result := &domain.IngestionResult{
		ProductID:        productID,
		SourcesRequested: sources,
		PerSourceErrors:  []domain.SourceError{},
	}

	fetches := s.fetchAll(ctx, productID, sources)

	// One shared timestamp for the whole run so retried normalizations
	// stamp identical fallback dates.
	now := time.Now().UTC()

	var batch []domain.Review
	for _, f := range fetches {
		if f.err != nil {
			providerFailuresTotal.WithLabelValues(f.source).Inc()
			result.PerSourceErrors = append(result.PerSourceErrors, domain.SourceError{
				Source: f.source,
				Error:  f.err.Error(),
			})
			s.logger.WarnContext(ctx, "provider fetch failed",
				slog.String("source", f.source),
				slog.Int64("product_id", productID),
				slog.String("error", f.err.Error()),
			)
			continue
		}

		reviewsFetchedTotal.WithLabelValues(f.source).Add(float64(len(f.raw)))
		result.TotalFetched += len(f.raw)
		batch = append(batch, s.normalizer.NormalizeBatch(f.raw, productID, f.source, now)...)
	}

	for start := 0; start < len(batch); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]

		chunkResult, err := s.reviews.UpsertBatch(ctx, chunk)
		if err != nil {
			// A whole-chunk failure counts every record as skipped and
			// moves on; persistence failure isolation mirrors fetch
			// failure isolation.
			result.Skipped += len(chunk)
			s.logger.ErrorContext(ctx, "chunk upsert failed",
				slog.Int64("product_id", productID),
				slog.Int("chunk_size", len(chunk)),
				slog.String("error", err.Error()),
			)
			continue
		}

		result.Inserted += chunkResult.Inserted
		result.Duplicates += chunkResult.Duplicates
		result.Skipped += chunkResult.Skipped
	}

	result.Success = result.TotalFetched > 0 && result.Inserted+result.Duplicates > 0

	status := "failure"
	if result.Success {
		status = "success"
		reviewsInsertedTotal.Add(float64(result.Inserted))
	}
	ingestionRunsTotal.WithLabelValues(status).Inc()

	s.logger.InfoContext(ctx, "ingestion run completed",
		slog.Int64("product_id", productID),
		slog.Bool("success", result.Success),
		slog.Int("total_fetched", result.TotalFetched),
		slog.Int("inserted", result.Inserted),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed_sources", len(result.PerSourceErrors)),
	)

	if err := s.producer.PublishReviewsIngested(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "failed to publish ingestion event",
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}

// fetchAll runs one task per source and waits for all of them to settle.
func (s *IngestService) fetchAll(ctx context.Context, productID int64, sources []string) []sourceFetch {
	fetches := make([]sourceFetch, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		client, ok := s.providers.Get(source)
		if !ok {
			fetches[i] = sourceFetch{source: source, err: fmt.Errorf("unknown source %q", source)}
			continue
		}

		wg.Add(1)
		go func(i int, source string, client provider.Client) {
			defer wg.Done()
			raw, err := client.Fetch(ctx, productID)
			fetches[i] = sourceFetch{source: source, raw: raw, err: err}
		}(i, source, client)
	}
	wg.Wait()

	return fetches
}

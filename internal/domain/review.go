package domain

import (
	"time"
)

// ModerationStatus is the lifecycle state controlling whether a review is
// treated as publishable.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Valid reports whether the status is one of the known states.
func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

// Review is a normalized product review pulled from an upstream source.
// The (ProductID, Source, ExternalID) triple uniquely identifies a review;
// repeated ingestion of the same triple refreshes the existing row instead
// of creating a new one.
type Review struct {
	ID               int64            `json:"id"`
	ProductID        int64            `json:"product_id"`
	Source           string           `json:"source"`
	ExternalID       string           `json:"external_review_id"`
	Author           *string          `json:"author,omitempty"`
	Rating           int              `json:"rating"`
	Title            string           `json:"title"`
	Body             string           `json:"body"`
	VerifiedPurchase bool             `json:"verified_purchase"`
	Flagged          bool             `json:"flagged"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	CreatedAt        *time.Time       `json:"created_at,omitempty"`
	FetchedAt        time.Time        `json:"fetched_at"`
}

// SourceError describes one upstream source that failed during an ingestion
// run. It is reported in the result, never raised as a hard failure.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// IngestionResult summarizes one ingestion run. Success is false only when
// nothing was fetched and nothing was written; partial source failures still
// count as success.
type IngestionResult struct {
	ProductID        int64         `json:"product_id"`
	Success          bool          `json:"success"`
	SourcesRequested []string      `json:"sources_requested"`
	TotalFetched     int           `json:"total_fetched"`
	Inserted         int           `json:"inserted"`
	Duplicates       int           `json:"duplicates"`
	Skipped          int           `json:"skipped"`
	PerSourceErrors  []SourceError `json:"per_source_errors"`
}

// SourceStats holds per-source count and mean rating.
type SourceStats struct {
	Source        string  `json:"source"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// AggregateStats is the single-product rollup returned alongside a
// product's review listing.
type AggregateStats struct {
	ProductID       int64         `json:"product_id"`
	TotalReviews    int           `json:"total_reviews"`
	OverallAverage  float64       `json:"overall_average"`
	SourceBreakdown []SourceStats `json:"source_breakdown"`
	RatingHistogram map[int]int   `json:"rating_histogram"`
}

// TimelineBucket is one calendar day of review activity. Reviews are
// bucketed by authored date, falling back to fetched date when the
// upstream never supplied one.
type TimelineBucket struct {
	Day           time.Time `json:"day"`
	Count         int       `json:"count"`
	AverageRating float64   `json:"average_rating"`
}

// SourceActivityBucket is one calendar day of review activity for one source.
type SourceActivityBucket struct {
	Day    time.Time `json:"day"`
	Source string    `json:"source"`
	Count  int       `json:"count"`
}

// ProductRanking is one row of the top-products leaderboard.
type ProductRanking struct {
	ProductID     int64      `json:"product_id"`
	Name          string     `json:"name"`
	Price         float64    `json:"price"`
	ReviewCount   int        `json:"review_count"`
	AverageRating float64    `json:"average_rating"`
	FirstReviewAt *time.Time `json:"first_review_at,omitempty"`
	LastReviewAt  *time.Time `json:"last_review_at,omitempty"`
}

// AnalyticsTotals holds corpus-wide counters.
type AnalyticsTotals struct {
	TotalReviews    int        `json:"total_reviews"`
	ProductsCovered int        `json:"products_covered"`
	AverageRating   float64    `json:"average_rating"`
	LastIngestedAt  *time.Time `json:"last_ingested_at,omitempty"`
}

// AnalyticsOverview is the dashboard view recomputed from the review corpus
// on every request. Nothing here is cached.
type AnalyticsOverview struct {
	WindowDays       int                    `json:"window_days"`
	Totals           AnalyticsTotals        `json:"totals"`
	SourceMix        []SourceStats          `json:"source_mix"`
	RatingHistogram  map[int]int            `json:"rating_histogram"`
	Timeline         []TimelineBucket       `json:"timeline"`
	ActivityBySource []SourceActivityBucket `json:"activity_by_source"`
	TopProducts      []ProductRanking       `json:"top_products"`
}

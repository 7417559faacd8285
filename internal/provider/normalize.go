package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/utafrali/reviewhub/internal/domain"
)

// syntheticIDLen is the hex length of synthesized external review IDs. The
// digest is a collision-avoidance heuristic, not a cryptographic identity.
const syntheticIDLen = 16

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// Normalizer maps raw provider payloads into canonical Review records.
type Normalizer struct {
	defaultRating int
}

// NewNormalizer creates a normalizer. defaultRating fills in missing or
// unparseable provider ratings; out-of-range values fall back to 1.
func NewNormalizer(defaultRating int) *Normalizer {
	if defaultRating < 1 || defaultRating > 5 {
		defaultRating = 1
	}
	return &Normalizer{defaultRating: defaultRating}
}

// Normalize converts one raw payload into a Review. The now argument must
// be shared across a whole batch so retries within one run stamp the same
// fallback date on every record.
func (n *Normalizer) Normalize(raw RawReview, productID int64, source string, now time.Time) domain.Review {
	rating := int(raw.Rating)
	if rating == 0 {
		rating = n.defaultRating
	}
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}

	externalID := strings.TrimSpace(raw.ExternalID)
	if externalID == "" {
		externalID = syntheticID(raw)
	}

	createdAt := parseDate(raw.Date)
	if createdAt == nil {
		t := now
		createdAt = &t
	}

	var author *string
	if a := strings.TrimSpace(raw.Author); a != "" {
		author = &a
	}

	return domain.Review{
		ProductID:        productID,
		Source:           source,
		ExternalID:       externalID,
		Author:           author,
		Rating:           rating,
		Title:            strings.TrimSpace(raw.Title),
		Body:             strings.TrimSpace(raw.Body),
		VerifiedPurchase: bool(raw.Verified),
		ModerationStatus: domain.ModerationApproved,
		CreatedAt:        createdAt,
		FetchedAt:        now,
	}
}

// NormalizeBatch normalizes a whole payload with one shared timestamp.
func (n *Normalizer) NormalizeBatch(raw []RawReview, productID int64, source string, now time.Time) []domain.Review {
	reviews := make([]domain.Review, 0, len(raw))
	for _, item := range raw {
		reviews = append(reviews, n.Normalize(item, productID, source, now))
	}
	return reviews
}

// syntheticID derives a stable identifier from the review content so that
// repeated fetches of the same underlying review collapse to one identity
// key even when the provider omits its own ID.
func syntheticID(raw RawReview) string {
	body := raw.Body
	if body == "" {
		body = raw.Title
	}
	seed := fmt.Sprintf("%s|%s|%s|%d", raw.Author, raw.Date, body, int(raw.Rating))
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:syntheticIDLen]
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

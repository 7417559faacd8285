package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/utafrali/reviewhub/internal/domain"
)

// Client fetches raw review payloads from one named upstream source. A
// client knows nothing about other sources or about storage; an empty
// result is a valid success.
type Client interface {
	Source() string
	Fetch(ctx context.Context, productID int64) ([]RawReview, error)
}

// Error wraps a failure from one upstream source. It is collected into the
// ingestion result rather than propagated as a hard failure.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SourceError converts the provider error into its result representation.
func (e *Error) SourceError() domain.SourceError {
	return domain.SourceError{Source: e.Source, Error: e.Err.Error()}
}

// Registry holds the configured provider clients keyed by source name.
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds a registry from the given clients.
func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Source()] = c
	}
	return r
}

// Get returns the client for a source name.
func (r *Registry) Get(source string) (Client, bool) {
	c, ok := r.clients[strings.ToLower(strings.TrimSpace(source))]
	return c, ok
}

// Sources returns all configured source names in stable order.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rating accepts both JSON numbers and numeric strings, since scraper-style
// upstreams are inconsistent about the type. Zero means the provider did
// not supply a usable rating.
type Rating int

// UnmarshalJSON parses `4`, `4.0`, `"4"`, and `"4.5 out of 5"` style values.
// Anything unparseable decodes to zero rather than failing the payload.
func (r *Rating) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	if i := strings.IndexAny(s, " /"); i > 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*r = 0
		return nil
	}
	*r = Rating(f)
	return nil
}

// Verified accepts boolean flags as well as badge strings such as
// "Verified Purchase".
type Verified bool

// UnmarshalJSON treats true, non-empty badge strings, and "true" as verified.
func (v *Verified) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	switch strings.ToLower(s) {
	case "", "null", "false", "0":
		*v = false
	default:
		*v = true
	}
	return nil
}

// RawReview is the wire shape returned by upstream review providers. Every
// field except the text content is optional in practice.
type RawReview struct {
	ExternalID string   `json:"review_id"`
	Author     string   `json:"author"`
	Rating     Rating   `json:"rating"`
	Title      string   `json:"title"`
	Body       string   `json:"text"`
	Date       string   `json:"date"`
	Verified   Verified `json:"verified"`
}

// Package source defines the domain models and interfaces for video catalog discovery and retrieval.
package source

import "context"

// Source defines the required capabilities for a catalog site adapter.
//
// Fetch and parse failures are recovered inside the adapter: a page that
// cannot be fetched or parsed contributes zero records, never an error.
// The error returns exist for conditions outside a single page, such as a
// cancelled context.
type Source interface {
	// ID returns the stable identifier for the adapter (e.g. "missav").
	ID() string

	// Name returns the human-readable name of the catalog site.
	Name() string

	// BaseURL returns the absolute root URL the adapter resolves links against.
	BaseURL() string

	// ListNew fetches the given number of sequential listing pages and parses
	// them into records. Records without a derivable code are dropped.
	// A site with no listing endpoint returns an empty slice.
	ListNew(ctx context.Context, pages int) ([]*Video, error)

	// Search fetches one search-results page for the keyword and returns up
	// to limit parsed records. Sites whose search is a single-ID lookup
	// return what the lookup yields, never an error.
	Search(ctx context.Context, keyword string, limit int) ([]*Video, error)

	// FetchDetail resolves a detail URL (constructing one from a bare code if
	// given), fetches it, and parses the richer detail-page fields.
	// Returns (nil, nil) when the page cannot be fetched or carries no
	// extractable record.
	FetchDetail(ctx context.Context, urlOrCode string) (*Video, error)

	// Close releases the adapter's session resources.
	Close() error
}

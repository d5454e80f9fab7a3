// Package aggregator merges the per-site adapters into a single catalog
// facade. Records from different sites describing the same release are
// collapsed by catalog code, with the adapter order deciding which record
// survives.
package aggregator

import (
	"context"
	"strings"
	"sync"

	"github.com/javsan-cli/javsan/internal/cache"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/source"
	"github.com/spf13/viper"
)

// Aggregator fans catalog operations out over an ordered set of sources.
// The first source is the primary one and serves the new-video listing;
// the order as a whole is the deduplication precedence for search.
type Aggregator struct {
	sources []source.Source
}

// New constructs an aggregator over the given sources. The slice order is
// load-bearing: sources[0] is the primary source, and earlier sources win
// code collisions during merge.
func New(sources ...source.Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Sources returns the aggregated sources in precedence order.
func (a *Aggregator) Sources() []source.Source {
	return a.sources
}

// Primary returns the source serving the new-video listing, or nil when
// the aggregator is empty.
func (a *Aggregator) Primary() source.Source {
	if len(a.sources) == 0 {
		return nil
	}
	return a.sources[0]
}

// Close releases every source's session resources, keeping the first error.
func (a *Aggregator) Close() error {
	var first error
	for _, src := range a.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ListNew fetches the newest releases from the primary source only. The
// secondary sites either lack a listing endpoint or lag the primary one,
// so fanning out here would only produce duplicates.
func (a *Aggregator) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	primary := a.Primary()
	if primary == nil {
		return nil, nil
	}
	return primary.ListNew(ctx, pages)
}

// Search fans the keyword out to every source concurrently, waits for all
// of them, and merges the results by catalog code. A failing source
// contributes an empty slice rather than failing the whole search. The
// merged sequence is deterministic for a fixed set of per-source responses
// and is truncated to limit only after merging.
func (a *Aggregator) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	perSource := make([][]*source.Video, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()
			perSource[i] = a.searchOne(ctx, src, keyword, limit)
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := mergeByCode(perSource)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// searchOne queries a single source, consulting the result cache when it
// is enabled. Failures are logged and degrade to an empty slice.
func (a *Aggregator) searchOne(ctx context.Context, src source.Source, keyword string, limit int) []*source.Video {
	cacheKey := cache.GenerateKey(keyword, src.ID())
	caching := viper.GetBool(key.SearchCacheResults)

	if caching {
		var cached []*source.Video
		if cache.Read(cacheKey, &cached) {
			return cached
		}
	}

	found, err := src.Search(ctx, keyword, limit)
	if err != nil {
		log.Warnf("search: source %s failed: %s", src.ID(), err)
		return nil
	}

	if caching && len(found) > 0 {
		if err := cache.Write(cacheKey, found); err != nil {
			log.Warnf("search: caching %s results failed: %s", src.ID(), err)
		}
	}
	return found
}

// FetchDetail enriches a record. An absolute URL is routed to the source
// owning its base URL; a bare code is located through search on each source
// in precedence order, and the first hit is enriched and merged so the
// detail fields win over the listing ones.
func (a *Aggregator) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	if strings.HasPrefix(urlOrCode, "http") {
		for _, src := range a.sources {
			if strings.HasPrefix(urlOrCode, src.BaseURL()) {
				return src.FetchDetail(ctx, urlOrCode)
			}
		}
		return nil, nil
	}

	code := source.NormalizeCode(urlOrCode)
	for _, src := range a.sources {
		found, err := src.Search(ctx, code, 1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if len(found) == 0 {
			continue
		}

		detail, err := src.FetchDetail(ctx, found[0].DetailURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if detail == nil {
			return found[0], nil
		}
		return found[0].Merge(detail), nil
	}
	return nil, nil
}

// mergeByCode flattens per-source result slices in precedence order,
// keeping the first record seen for each code. Codeless records cannot be
// deduplicated and are discarded.
func mergeByCode(perSource [][]*source.Video) []*source.Video {
	seen := make(map[string]struct{})
	var merged []*source.Video
	for _, videos := range perSource {
		for _, video := range videos {
			if video == nil || video.Code == "" {
				continue
			}
			if _, ok := seen[video.Code]; ok {
				continue
			}
			seen[video.Code] = struct{}{}
			merged = append(merged, video)
		}
	}
	return merged
}

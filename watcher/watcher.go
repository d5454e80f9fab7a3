// Package watcher polls the primary source for new releases on a fixed
// cadence and announces each genuinely new record exactly once.
package watcher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/source"
	"github.com/javsan-cli/javsan/util"
	"github.com/spf13/viper"
)

// Feed lists new releases and enriches individual records. Satisfied by
// the aggregator.
type Feed interface {
	ListNew(ctx context.Context, pages int) ([]*source.Video, error)
	FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error)
}

// Catalog is the known-record set the watcher filters against. Insertion
// is idempotent by code, and its return value is the single authority on
// whether a record counts as new.
type Catalog interface {
	Exists(code string) (bool, error)
	InsertIfAbsent(video *source.Video) (bool, error)
}

// Handler receives each newly inserted record.
type Handler func(video *source.Video)

// Watcher drives the poll loop. Cycles never overlap: a cycle that is
// still running when the next one is due makes the next one a no-op.
type Watcher struct {
	feed     Feed
	catalog  Catalog
	handlers []Handler

	busy atomic.Bool
}

// New constructs a watcher over the given feed and catalog.
func New(feed Feed, catalog Catalog) *Watcher {
	return &Watcher{feed: feed, catalog: catalog}
}

// OnNewVideo registers a handler fired once per newly inserted record.
// Not safe to call after Watch has started.
func (w *Watcher) OnNewVideo(handler Handler) {
	w.handlers = append(w.handlers, handler)
}

// Watch runs poll cycles until the context is cancelled. The delay between
// cycles is fixed and re-armed after each cycle completes, so a slow cycle
// stretches the effective period rather than stacking up backlog.
func (w *Watcher) Watch(ctx context.Context) error {
	for {
		if err := w.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A failed cycle is retried at the next tick.
			log.Errorf("watch: cycle failed: %s", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval()):
		}
	}
}

// RunCycle performs one poll: list the newest releases, drop the already
// known ones, enrich the remainder and store them, announcing each record
// the insert actually accepted. A concurrent cycle in flight makes this
// call a no-op.
func (w *Watcher) RunCycle(ctx context.Context) error {
	if !w.busy.CompareAndSwap(false, true) {
		log.Warnf("watch: previous cycle still running, skipping")
		return nil
	}
	defer w.busy.Store(false)

	listed, err := w.feed.ListNew(ctx, viper.GetInt(key.WatchPages))
	if err != nil {
		return err
	}

	var fresh int
	for _, video := range listed {
		if video == nil || video.Code == "" {
			continue
		}

		known, err := w.catalog.Exists(video.Code)
		if err != nil {
			// Better to miss the record this cycle than to announce a
			// possibly known one.
			log.Warnf("watch: existence check for %s failed: %s", video.Code, err)
			continue
		}
		if known {
			continue
		}

		enriched := w.enrich(ctx, video)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		inserted, err := w.catalog.InsertIfAbsent(enriched)
		if err != nil {
			log.Warnf("watch: storing %s failed: %s", enriched.Code, err)
			continue
		}
		if !inserted {
			continue
		}

		fresh++
		for _, handle := range w.handlers {
			handle(enriched)
		}
	}

	if fresh > 0 {
		log.Infof("watch: announced %s", util.Quantify(fresh, "new video", "new videos"))
	}
	return nil
}

// enrich fetches the detail page for a listing record. Enrichment is best
// effort: on failure the listing record proceeds as is.
func (w *Watcher) enrich(ctx context.Context, video *source.Video) *source.Video {
	detail, err := w.feed.FetchDetail(ctx, video.DetailURL)
	if err != nil || detail == nil {
		if err != nil && ctx.Err() == nil {
			log.Warnf("watch: enriching %s failed: %s", video.Code, err)
		}
		return video
	}
	return video.Merge(detail)
}

// interval reads the configured poll period, falling back to a sane
// default when the configuration is out of range.
func interval() time.Duration {
	minutes := viper.GetInt(key.WatchInterval)
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

// Package hohoj implements the adapter for the HohoJ catalog site.
//
// HohoJ exposes no "what's new" listing, so ListNew is a permanent
// empty-sequence stub. Its search endpoint behaves like a code lookup:
// results are bare /video?id=N links without titles.
package hohoj

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/javsan-cli/javsan/internal/scrape"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/network"
	"github.com/javsan-cli/javsan/source"
)

const (
	// SourceID is the stable adapter identifier.
	SourceID = "hohoj"

	defaultBaseURL = "https://hohoj.tv"
)

var (
	videoIDPattern = regexp.MustCompile(`/video\?id=(\d+)`)
	idParamPattern = regexp.MustCompile(`id=(\d+)`)
	videoSrcPattern = regexp.MustCompile(`var videoSrc\s*=\s*"([^"]+)"`)

	// Duration extraction strategies, tried in priority order.
	durationScriptPattern = regexp.MustCompile(`(?i)duration\s*:\s*(\d+)`)
	durationLabelPattern  = regexp.MustCompile(`(\d+)\s*(分|min)`)
	clockPattern          = regexp.MustCompile(`(\d{1,2}:\d{2}(:\d{2})?)`)
	digitsPattern         = regexp.MustCompile(`(\d+)`)
)

// Hohoj is the HohoJ site adapter.
type Hohoj struct {
	base    string
	session *network.Session
}

// New constructs the adapter with its own fingerprinted session.
func New() *Hohoj {
	return NewWithBase(defaultBaseURL)
}

// NewWithBase constructs the adapter against an alternative base URL.
func NewWithBase(base string) *Hohoj {
	return &Hohoj{
		base:    base,
		session: network.NewSession(base),
	}
}

func (h *Hohoj) ID() string      { return SourceID }
func (h *Hohoj) Name() string    { return "HohoJ" }
func (h *Hohoj) BaseURL() string { return h.base }

// Close releases the adapter's session resources.
func (h *Hohoj) Close() error { return h.session.Close() }

// ListNew returns an empty slice: the site has no listing endpoint.
// This is a capability gap, not a fetch failure.
func (h *Hohoj) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	return nil, nil
}

// Search queries the site's text search and materializes the resulting
// /video?id=N links. The endpoint only resolves catalog codes, so records
// adopt the code derived from the keyword itself; keywords that are not
// codes yield nothing.
func (h *Hohoj) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	code := source.ExtractCode(keyword)
	if code == "" {
		return nil, nil
	}

	searchURL := h.base + "/search?text=" + url.QueryEscape(keyword)
	html, err := h.session.FetchHTML(ctx, searchURL, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("hohoj: search %q unavailable: %s", keyword, err)
		return nil, nil
	}

	var videos []*source.Video
	for _, match := range videoIDPattern.FindAllStringSubmatch(html, -1) {
		if limit > 0 && len(videos) >= limit {
			break
		}
		videos = append(videos, &source.Video{
			Code:      code,
			SourceID:  SourceID,
			DetailURL: h.base + "/video?id=" + match[1],
		})
	}
	return videos, nil
}

// FetchDetail resolves the numeric video id, fetches the embed page with the
// detail page as referer, and extracts the stream URL and duration.
func (h *Hohoj) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	match := idParamPattern.FindStringSubmatch(urlOrCode)
	if match == nil {
		return nil, nil
	}
	id := match[1]

	detailURL := h.base + "/video?id=" + id
	embedURL := h.base + "/embed?id=" + id

	html, err := h.session.FetchHTML(ctx, embedURL, detailURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("hohoj: embed %s unavailable: %s", embedURL, err)
		return nil, nil
	}

	// The embed page carries no title; the code, when derivable at all,
	// only appears in free text. The record is returned regardless so the
	// stream URL is not lost; codeless results never reach deduplication.
	video := &source.Video{
		SourceID:  SourceID,
		DetailURL: detailURL,
		Code:      source.ExtractCode(html),
	}

	if m := videoSrcPattern.FindStringSubmatch(html); m != nil {
		video.PreviewURL = m[1]
	}

	video.DurationMinutes = extractDuration(html)

	return video, nil
}

// extractDuration tries the duration extraction strategies in priority
// order: structured metadata, player script fields, labeled text, and
// finally any clock-formatted string.
func extractDuration(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		meta := doc.Find(`meta[property="og:video:duration"]`).First()
		if meta.Length() == 0 {
			meta = doc.Find(`meta[itemprop="duration"]`).First()
		}
		if content, ok := meta.Attr("content"); ok {
			if m := digitsPattern.FindStringSubmatch(content); m != nil {
				return source.NormalizeDuration(scrape.Atoi(m[1]))
			}
		}
	}

	if m := durationScriptPattern.FindStringSubmatch(html); m != nil {
		return source.NormalizeDuration(scrape.Atoi(m[1]))
	}

	if m := durationLabelPattern.FindStringSubmatch(html); m != nil {
		return source.NormalizeDuration(scrape.Atoi(m[1]))
	}

	if m := clockPattern.FindStringSubmatch(html); m != nil {
		return source.ParseClock(m[1])
	}

	return 0
}

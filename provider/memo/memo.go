// Package memo implements the adapter for the MemoJAV catalog site.
//
// MemoJAV has no listing endpoint, and its search is effectively a code
// lookup that answers with /video/CODE links. Detail pages publish the
// runtime as ISO-8601 metadata and the stream URL percent-encoded inside a
// player JSON blob, with a secondary PHP endpoint as fallback.
package memo

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/javsan-cli/javsan/internal/scrape"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/network"
	"github.com/javsan-cli/javsan/source"
	"github.com/samber/lo"
)

const (
	// SourceID is the stable adapter identifier.
	SourceID = "memo"

	defaultBaseURL = "https://memojav.com"

	// infoSignature carries the static query parameters the PHP stream-info
	// endpoint expects. Observed from the site's own player requests.
	infoSignature = "sig=NTg1NTczNg&sts=7264825"
)

var (
	videoLinkPattern   = regexp.MustCompile(`/video/([A-Z0-9-]+)`)
	isoDurationPattern = regexp.MustCompile(`<meta itemprop="duration" content="PT(\d+)M`)
	labelPattern       = regexp.MustCompile(`(\d+)\s*(分|min)`)
	encodedURLPattern  = regexp.MustCompile(`"url":"(https?%3A%2F%2F[^"]+)"`)
)

// Memo is the MemoJAV site adapter.
type Memo struct {
	base    string
	session *network.Session
}

// New constructs the adapter with its own fingerprinted session.
func New() *Memo {
	return NewWithBase(defaultBaseURL)
}

// NewWithBase constructs the adapter against an alternative base URL.
func NewWithBase(base string) *Memo {
	return &Memo{
		base:    base,
		session: network.NewSession(base),
	}
}

func (m *Memo) ID() string      { return SourceID }
func (m *Memo) Name() string    { return "Memo" }
func (m *Memo) BaseURL() string { return m.base }

// Close releases the adapter's session resources.
func (m *Memo) Close() error { return m.session.Close() }

// ListNew returns an empty slice: the site has no listing endpoint.
func (m *Memo) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	return nil, nil
}

// Search queries the browse endpoint and materializes the /video/CODE links
// found in the response. Duplicate links are collapsed preserving first
// occurrence; links whose slug is not a catalog code are skipped.
func (m *Memo) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	searchURL := m.base + "/browse/search?q=" + url.QueryEscape(keyword)
	html, err := m.session.FetchHTML(ctx, searchURL, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("memo: search %q unavailable: %s", keyword, err)
		return nil, nil
	}

	var slugs []string
	for _, match := range videoLinkPattern.FindAllStringSubmatch(html, -1) {
		slugs = append(slugs, match[1])
	}

	var videos []*source.Video
	for _, slug := range lo.Uniq(slugs) {
		if limit > 0 && len(videos) >= limit {
			break
		}

		code := source.ExtractCode(slug)
		if code == "" {
			continue
		}

		videos = append(videos, &source.Video{
			Code:      code,
			SourceID:  SourceID,
			DetailURL: m.base + "/video/" + slug,
		})
	}
	return videos, nil
}

// FetchDetail fetches a detail page, reading the runtime from ISO-8601
// metadata and the stream URL from the inline player blob, falling back to
// the stream-info PHP endpoint when the blob is absent.
func (m *Memo) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	slug := urlOrCode
	if idx := strings.LastIndex(urlOrCode, "/"); idx >= 0 {
		slug = urlOrCode[idx+1:]
	}

	detailURL := urlOrCode
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = m.base + "/video/" + slug
	}

	html, err := m.session.FetchHTML(ctx, detailURL, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("memo: detail %s unavailable: %s", detailURL, err)
		return nil, nil
	}

	video := &source.Video{
		Code:      source.ExtractCode(slug),
		SourceID:  SourceID,
		DetailURL: detailURL,
	}

	if match := isoDurationPattern.FindStringSubmatch(html); match != nil {
		video.DurationMinutes = scrape.Atoi(match[1])
	} else if match := labelPattern.FindStringSubmatch(html); match != nil {
		video.DurationMinutes = source.NormalizeDuration(scrape.Atoi(match[1]))
	}

	video.PreviewURL = decodeStreamURL(html)
	if video.PreviewURL == "" {
		video.PreviewURL = m.fetchStreamInfo(ctx, slug, detailURL)
	}

	if video.Code == "" && video.PreviewURL == "" {
		return nil, nil
	}
	return video, nil
}

// fetchStreamInfo queries the secondary PHP endpoint for the stream URL,
// passing the detail page as referer. Best-effort: an empty string on any
// failure.
func (m *Memo) fetchStreamInfo(ctx context.Context, slug, referer string) string {
	infoURL := m.base + "/hls/get_video_info.php?id=" + slug + "&" + infoSignature
	html, err := m.session.FetchHTML(ctx, infoURL, referer)
	if err != nil {
		log.Debugf("memo: stream info for %s unavailable: %s", slug, err)
		return ""
	}
	return decodeStreamURL(html)
}

// decodeStreamURL extracts and percent-decodes the player's stream URL.
func decodeStreamURL(html string) string {
	match := encodedURLPattern.FindStringSubmatch(html)
	if match == nil {
		return ""
	}
	decoded, err := url.QueryUnescape(match[1])
	if err != nil {
		return ""
	}
	return decoded
}

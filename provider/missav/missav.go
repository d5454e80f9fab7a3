// Package missav implements the adapter for the MissAV catalog site.
//
// MissAV is the richest of the supported sources and serves as the default
// primary source for the new-video listing.
package missav

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/javsan-cli/javsan/internal/scrape"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/network"
	"github.com/javsan-cli/javsan/source"
	"github.com/javsan-cli/javsan/util"
	"github.com/samber/lo"
)

const (
	// SourceID is the stable adapter identifier.
	SourceID = "missav"

	defaultBaseURL = "https://missav.ai"
)

// durationPattern matches the "N 分" runtime annotation on detail pages.
var durationPattern = regexp.MustCompile(`(\d+)\s*分`)

// Missav is the MissAV site adapter.
type Missav struct {
	base    string
	session *network.Session
}

// New constructs the adapter with its own fingerprinted session. The site's
// anti-bot layer is the strictest in the set, so the session warms up with
// two paced visits to a deep listing page.
func New() *Missav {
	return NewWithBase(defaultBaseURL)
}

// NewWithBase constructs the adapter against an alternative base URL.
// Mirror domains rotate often; the markup stays the same.
func NewWithBase(base string) *Missav {
	warm := base + "/new?page=2"
	return &Missav{
		base:    base,
		session: network.NewSession(base, warm, warm),
	}
}

func (m *Missav) ID() string      { return SourceID }
func (m *Missav) Name() string    { return "MissAV" }
func (m *Missav) BaseURL() string { return m.base }

// Close releases the adapter's session resources.
func (m *Missav) Close() error { return m.session.Close() }

// ListNew fetches sequential listing pages of the newest releases.
// Page 1 carries no page parameter by site convention.
func (m *Missav) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	var all []*source.Video
	for page := 1; page <= pages; page++ {
		pageURL := m.base + "/new"
		if page > 1 {
			pageURL = fmt.Sprintf("%s?page=%d", pageURL, page)
		}

		found, err := m.parseListing(ctx, pageURL, 0)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Warnf("missav: listing page %d unavailable: %s", page, err)
			continue
		}

		all = append(all, found...)
		log.Infof("missav: page %d yielded %s", page, util.Quantify(len(found), "video", "videos"))
	}
	return all, nil
}

// Search fetches one search-results page and returns up to limit records.
func (m *Missav) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	searchURL := m.base + "/cn/search/" + url.PathEscape(keyword)
	found, err := m.parseListing(ctx, searchURL, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("missav: search %q unavailable: %s", keyword, err)
		return nil, nil
	}
	return found, nil
}

// FetchDetail fetches a detail page and parses the richer fields not present
// on listing cards. A bare code is resolved to its canonical detail URL.
func (m *Missav) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	detailURL := urlOrCode
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = m.base + "/" + urlOrCode
	}

	html, err := m.session.FetchHTML(ctx, detailURL, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("missav: detail %s unavailable: %s", detailURL, err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}

	video := &source.Video{
		SourceID:  SourceID,
		DetailURL: detailURL,
	}

	video.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	video.Code = source.ExtractCode(video.Title, detailURL)

	video.Actresses = lo.Uniq(scrape.Texts(doc, `a[href*="/actresses/"]`))
	video.Tags = lo.Uniq(scrape.Texts(doc, `a[href*="/genres/"]`))

	if match := durationPattern.FindStringSubmatch(html); match != nil {
		video.DurationMinutes = source.NormalizeDuration(scrape.Atoi(match[1]))
	}

	if tag := doc.Find("video").First(); tag.Length() > 0 {
		video.PreviewURL = scrape.AttrFirst(tag, "src", "data-src")
	}

	if video.Title == "" && video.Code == "" {
		return nil, nil
	}
	return video, nil
}

// parseListing fetches a listing or search page and parses its video cards.
// limit of zero means unbounded.
func (m *Missav) parseListing(ctx context.Context, pageURL string, limit int) ([]*source.Video, error) {
	html, err := m.session.FetchHTML(ctx, pageURL, "")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	cards := doc.Find("div.group")
	if cards.Length() == 0 {
		cards = doc.Find("div.video-card")
	}

	var videos []*source.Video
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(videos) >= limit {
			return false
		}

		// Cards without a derivable code are ads or layout filler;
		// dropping them is expected noise, not an error.
		if video := m.parseCard(card); video != nil {
			videos = append(videos, video)
		}
		return true
	})
	return videos, nil
}

// parseCard parses one video card. Returns nil when no code is derivable.
func (m *Missav) parseCard(card *goquery.Selection) *source.Video {
	video := &source.Video{SourceID: SourceID}

	if href, ok := card.Find("a[href]").First().Attr("href"); ok {
		video.DetailURL = source.ResolveURL(m.base, href)
	}

	video.Title = strings.TrimSpace(card.Find("h3, h4, p").First().Text())
	video.Code = source.ExtractCode(video.Title, video.DetailURL)
	if video.Code == "" {
		return nil
	}

	if img := card.Find("img").First(); img.Length() > 0 {
		video.CoverURL = scrape.AttrFirst(img, "data-src", "src")
	}

	return video
}

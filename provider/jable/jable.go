// Package jable implements the adapter for the Jable catalog site.
package jable

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
)

const (
	// SourceID is the stable adapter identifier.
	SourceID = "jable"

	defaultBaseURL = "https://jable.tv"
)

// hlsPattern matches the inline player script carrying the stream URL.
var hlsPattern = regexp.MustCompile(`var hlsUrl = '(https?://[^']+)'`)

// Jable is the Jable site adapter.
type Jable struct {
	base    string
	session *network.Session
}

// New constructs the adapter with its own fingerprinted session.
func New() *Jable {
	return NewWithBase(defaultBaseURL)
}

// NewWithBase constructs the adapter against an alternative base URL.
func NewWithBase(base string) *Jable {
	return &Jable{
		base:    base,
		session: network.NewSession(base),
	}
}

func (j *Jable) ID() string      { return SourceID }
func (j *Jable) Name() string    { return "Jable" }
func (j *Jable) BaseURL() string { return j.base }

// Close releases the adapter's session resources.
func (j *Jable) Close() error { return j.session.Close() }

// ListNew fetches sequential pages of the latest-updates listing.
func (j *Jable) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	var all []*source.Video
	for page := 1; page <= pages; page++ {
		pageURL := j.base + "/latest-updates/"
		if page > 1 {
			pageURL = fmt.Sprintf("%s%d/", pageURL, page)
		}

		found, err := j.parseListing(ctx, pageURL, 0)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Warnf("jable: listing page %d unavailable: %s", page, err)
			continue
		}
		all = append(all, found...)
	}
	return all, nil
}

// Search fetches one search-results page and returns up to limit records.
func (j *Jable) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	searchURL := j.base + "/search/" + url.PathEscape(keyword) + "/"
	found, err := j.parseListing(ctx, searchURL, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("jable: search %q unavailable: %s", keyword, err)
		return nil, nil
	}
	return found, nil
}

// FetchDetail fetches a detail page. Jable detail pages carry the title and
// the HLS stream URL; duration is not published.
func (j *Jable) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	detailURL := urlOrCode
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = j.base + "/videos/" + strings.ToLower(urlOrCode) + "/"
	}

	html, err := j.session.FetchHTML(ctx, detailURL, "")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warnf("jable: detail %s unavailable: %s", detailURL, err)
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

	video.Title = strings.TrimSpace(doc.Find("h4").First().Text())
	video.Code = source.ExtractCode(video.Title, detailURL)

	if match := hlsPattern.FindStringSubmatch(html); match != nil {
		video.PreviewURL = match[1]
	}

	if video.Title == "" && video.Code == "" {
		return nil, nil
	}
	return video, nil
}

// parseListing fetches a listing or search page and parses its video cards.
// limit of zero means unbounded.
func (j *Jable) parseListing(ctx context.Context, pageURL string, limit int) ([]*source.Video, error) {
	html, err := j.session.FetchHTML(ctx, pageURL, "")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var videos []*source.Video
	doc.Find("div.video-img-box").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if limit > 0 && len(videos) >= limit {
			return false
		}
		if video := j.parseCard(card); video != nil {
			videos = append(videos, video)
		}
		return true
	})
	return videos, nil
}

// parseCard parses one video card. Jable overlays the catalog code on the
// thumbnail in a dedicated span; the title regexp is only a fallback.
func (j *Jable) parseCard(card *goquery.Selection) *source.Video {
	video := &source.Video{SourceID: SourceID}

	link := card.Find("a[href]").First()
	if href, ok := link.Attr("href"); ok {
		video.DetailURL = source.ResolveURL(j.base, href)
	}

	if img := link.Find("img").First(); img.Length() > 0 {
		video.Title = scrape.AttrFirst(img, "title", "alt")
		video.CoverURL = scrape.AttrFirst(img, "data-src", "src")
	}

	if overlay := card.Find("span.absolute-center").First(); overlay.Length() > 0 {
		video.Code = source.NormalizeCode(overlay.Text())
	}
	if video.Code == "" {
		video.Code = source.ExtractCode(video.Title, video.DetailURL)
	}
	if video.Code == "" {
		return nil
	}

	return video
}

// Package source defines the domain models and interfaces for video catalog discovery and retrieval.
package source

import (
	"fmt"

	"github.com/samber/lo"
)

// Video is the canonical record flowing through the whole pipeline.
//
// A Video is constructed fresh on every fetch and never mutated in place
// across fetches; enrichment produces a new record that the caller merges
// into the previous one.
type Video struct {
	// Normalized catalog code (e.g. "ABC-123"); the dedup key within a
	// source and the matching key across sources. Always uppercase.
	Code string `json:"code"`
	// Identifier of the adapter that produced this record.
	SourceID string `json:"source_id"`

	Title string `json:"title,omitempty"`
	// Absolute URL of the detail page.
	DetailURL string `json:"detail_url,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	// Playable preview/stream URL (usually HLS).
	PreviewURL string `json:"preview_url,omitempty"`
	// Whole minutes; zero means unknown.
	DurationMinutes int `json:"duration_minutes,omitempty"`
	// Display order matters; duplicates removed.
	Actresses []string `json:"actresses,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	// Release date in YYYY-MM-DD form; empty when unknown.
	ReleaseDate string `json:"release_date,omitempty"`
}

// String returns the canonical display representation of the record.
func (v *Video) String() string {
	if v.Title == "" {
		return v.Code
	}
	return fmt.Sprintf("%s %s", v.Code, v.Title)
}

// Merge combines the receiver (listing-stage record) with a detail-stage
// record into a new Video. Detail fields win over listing-summary fields,
// never the reverse: detail pages carry strictly more information.
// A nil detail record yields a copy of the receiver.
func (v *Video) Merge(detail *Video) *Video {
	merged := *v
	if detail == nil {
		return &merged
	}

	pick := func(detailVal, listVal string) string {
		if detailVal != "" {
			return detailVal
		}
		return listVal
	}

	merged.Code = pick(detail.Code, v.Code)
	merged.SourceID = pick(detail.SourceID, v.SourceID)
	merged.Title = pick(detail.Title, v.Title)
	merged.DetailURL = pick(detail.DetailURL, v.DetailURL)
	merged.CoverURL = pick(detail.CoverURL, v.CoverURL)
	merged.PreviewURL = pick(detail.PreviewURL, v.PreviewURL)
	merged.ReleaseDate = pick(detail.ReleaseDate, v.ReleaseDate)

	if detail.DurationMinutes > 0 {
		merged.DurationMinutes = detail.DurationMinutes
	}
	if len(detail.Actresses) > 0 {
		merged.Actresses = lo.Uniq(detail.Actresses)
	}
	if len(detail.Tags) > 0 {
		merged.Tags = lo.Uniq(detail.Tags)
	}

	return &merged
}

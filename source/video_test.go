package source

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVideo(t *testing.T) {
	Convey("Video", t, func() {
		v := &Video{Code: "ABC-123", Title: "Some Title"}

		Convey("String", func() {
			So(v.String(), ShouldEqual, "ABC-123 Some Title")

			Convey("Falls back to code without a title", func() {
				So((&Video{Code: "ABC-123"}).String(), ShouldEqual, "ABC-123")
			})
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given a listing-stage record and a detail-stage record", t, func() {
		listing := &Video{
			Code:      "ABC-100",
			SourceID:  "missav",
			Title:     "X",
			DetailURL: "https://example.com/ABC-100",
			CoverURL:  "https://example.com/cover.jpg",
		}
		detail := &Video{
			Code:            "ABC-100",
			Title:           "Y",
			DurationMinutes: 141,
			PreviewURL:      "https://example.com/preview.m3u8",
			Actresses:       []string{"A", "B", "A"},
			Tags:            []string{"t1", "t2"},
		}

		Convey("Detail fields win over listing fields", func() {
			merged := listing.Merge(detail)
			So(merged.Title, ShouldEqual, "Y")
			So(merged.DurationMinutes, ShouldEqual, 141)
			So(merged.PreviewURL, ShouldEqual, "https://example.com/preview.m3u8")
		})

		Convey("Listing fields survive when detail leaves them empty", func() {
			merged := listing.Merge(detail)
			So(merged.CoverURL, ShouldEqual, "https://example.com/cover.jpg")
			So(merged.DetailURL, ShouldEqual, "https://example.com/ABC-100")
			So(merged.SourceID, ShouldEqual, "missav")
		})

		Convey("Actress duplicates are removed, order preserved", func() {
			merged := listing.Merge(detail)
			So(merged.Actresses, ShouldResemble, []string{"A", "B"})
		})

		Convey("Codeless detail record keeps the listing code", func() {
			merged := listing.Merge(&Video{PreviewURL: "p"})
			So(merged.Code, ShouldEqual, "ABC-100")
			So(merged.PreviewURL, ShouldEqual, "p")
		})

		Convey("Nil detail yields a copy of the listing record", func() {
			merged := listing.Merge(nil)
			So(merged, ShouldNotEqual, listing)
			So(merged.Title, ShouldEqual, "X")
		})

		Convey("The receiver is never mutated", func() {
			_ = listing.Merge(detail)
			So(listing.Title, ShouldEqual, "X")
			So(listing.DurationMinutes, ShouldEqual, 0)
		})
	})
}

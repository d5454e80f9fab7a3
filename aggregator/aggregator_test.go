package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.SearchCacheResults, false)
}

// fakeSource is a canned-response source for exercising merge behavior.
type fakeSource struct {
	id      string
	base    string
	listed  []*source.Video
	results []*source.Video
	details map[string]*source.Video

	searchErr error

	listCalls   int
	searchCalls int
	closed      bool
}

func (f *fakeSource) ID() string      { return f.id }
func (f *fakeSource) Name() string    { return f.id }
func (f *fakeSource) BaseURL() string { return f.base }
func (f *fakeSource) Close() error    { f.closed = true; return nil }

func (f *fakeSource) ListNew(ctx context.Context, pages int) ([]*source.Video, error) {
	f.listCalls++
	return f.listed, nil
}

func (f *fakeSource) Search(ctx context.Context, keyword string, limit int) ([]*source.Video, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	found := f.results
	if code := source.ExtractCode(keyword); code != "" {
		found = nil
		for _, v := range f.results {
			if v.Code == code {
				found = append(found, v)
			}
		}
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (f *fakeSource) FetchDetail(ctx context.Context, urlOrCode string) (*source.Video, error) {
	return f.details[urlOrCode], nil
}

func video(sourceID, code, title string) *source.Video {
	return &source.Video{
		Code:      code,
		SourceID:  sourceID,
		Title:     title,
		DetailURL: "https://" + sourceID + ".example.com/" + code,
	}
}

func TestListNew(t *testing.T) {
	Convey("ListNew", t, func() {
		primary := &fakeSource{id: "alpha", listed: []*source.Video{video("alpha", "ABC-100", "")}}
		secondary := &fakeSource{id: "beta", listed: []*source.Video{video("beta", "XYZ-200", "")}}
		agg := New(primary, secondary)

		Convey("Only the primary source is consulted", func() {
			videos, err := agg.ListNew(context.Background(), 1)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Code, ShouldEqual, "ABC-100")
			So(primary.listCalls, ShouldEqual, 1)
			So(secondary.listCalls, ShouldEqual, 0)
		})

		Convey("An empty aggregator lists nothing", func() {
			empty := New()
			videos, err := empty.ListNew(context.Background(), 1)
			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})
	})
}

func TestSearch(t *testing.T) {
	Convey("Search", t, func() {
		first := &fakeSource{id: "alpha", results: []*source.Video{
			video("alpha", "ABC-100", "alpha title"),
			video("alpha", "DEF-200", ""),
		}}
		second := &fakeSource{id: "beta", results: []*source.Video{
			video("beta", "ABC-100", "beta title"),
			video("beta", "GHI-300", ""),
		}}
		agg := New(first, second)

		Convey("Every source is queried once", func() {
			_, err := agg.Search(context.Background(), "abc", 0)
			So(err, ShouldBeNil)
			So(first.searchCalls, ShouldEqual, 1)
			So(second.searchCalls, ShouldEqual, 1)
		})

		Convey("Code collisions resolve to the earlier source", func() {
			videos, err := agg.Search(context.Background(), "abc", 0)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 3)
			So(videos[0].Code, ShouldEqual, "ABC-100")
			So(videos[0].SourceID, ShouldEqual, "alpha")
			So(videos[1].Code, ShouldEqual, "DEF-200")
			So(videos[2].Code, ShouldEqual, "GHI-300")
		})

		Convey("The limit applies after merging", func() {
			videos, err := agg.Search(context.Background(), "abc", 2)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].SourceID, ShouldEqual, "alpha")
			So(videos[1].Code, ShouldEqual, "DEF-200")
		})

		Convey("A failing source degrades to no contribution", func() {
			broken := &fakeSource{id: "gamma", searchErr: errors.New("blocked")}
			degraded := New(broken, second)
			videos, err := degraded.Search(context.Background(), "abc", 0)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].SourceID, ShouldEqual, "beta")
		})

		Convey("Codeless records are discarded before merging", func() {
			noisy := &fakeSource{id: "delta", results: []*source.Video{
				{SourceID: "delta", Title: "no code"},
				video("delta", "JKL-400", ""),
			}}
			videos, err := New(noisy).Search(context.Background(), "abc", 0)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Code, ShouldEqual, "JKL-400")
		})

		Convey("A cancelled context is reported", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := agg.Search(ctx, "abc", 0)
			So(err, ShouldEqual, context.Canceled)
		})
	})
}

func TestFetchDetail(t *testing.T) {
	Convey("FetchDetail", t, func() {
		listing := video("alpha", "ABC-100", "listing title")
		detail := &source.Video{
			Code:            "ABC-100",
			SourceID:        "alpha",
			Title:           "detail title",
			DurationMinutes: 141,
		}
		owner := &fakeSource{
			id:      "alpha",
			base:    "https://alpha.example.com",
			results: []*source.Video{listing},
			details: map[string]*source.Video{listing.DetailURL: detail},
		}
		other := &fakeSource{id: "beta", base: "https://beta.example.com"}
		agg := New(owner, other)

		Convey("Absolute URLs route to the owning source", func() {
			got, err := agg.FetchDetail(context.Background(), listing.DetailURL)
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got.Title, ShouldEqual, "detail title")
			So(other.searchCalls, ShouldEqual, 0)
		})

		Convey("URLs no source owns yield nil", func() {
			got, err := agg.FetchDetail(context.Background(), "https://unknown.example.com/x")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})

		Convey("Bare codes are located via search and enriched", func() {
			got, err := agg.FetchDetail(context.Background(), "abc-100")
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got.Title, ShouldEqual, "detail title")
			So(got.DurationMinutes, ShouldEqual, 141)
			So(got.DetailURL, ShouldEqual, listing.DetailURL)
		})

		Convey("Unknown codes yield nil once every source missed", func() {
			got, err := agg.FetchDetail(context.Background(), "ZZZ-999")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})
	})
}

func TestClose(t *testing.T) {
	Convey("Close releases every source", t, func() {
		first := &fakeSource{id: "alpha"}
		second := &fakeSource{id: "beta"}
		So(New(first, second).Close(), ShouldBeNil)
		So(first.closed, ShouldBeTrue)
		So(second.closed, ShouldBeTrue)
	})
}

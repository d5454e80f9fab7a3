package missav

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/javsan-cli/javsan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.FetchDelayMinMS, 0)
	viper.Set(key.FetchDelayMaxMS, 0)
}

const listingHTML = `<html><body>
<div class="group">
  <a href="/ABC-100"><img data-src="https://img.example.com/abc100.jpg" src="placeholder.gif"></a>
  <h3>ABC-100 First Title</h3>
</div>
<div class="group">
  <a href="/campaign/banner"><img src="ad.jpg"></a>
  <p>Sponsored content</p>
</div>
<div class="group">
  <a href="/xyz-200"></a>
  <h4>second movie xyz-200</h4>
</div>
</body></html>`

const detailHTML = `<html><body>
<h1>SSIS-001 Fancy Title</h1>
<a href="/actresses/alice">Alice</a>
<a href="/actresses/alice">Alice</a>
<a href="/actresses/bea">Bea</a>
<a href="/genres/drama">Drama</a>
<span>141 分</span>
<video src="https://cdn.example.com/preview.mp4"></video>
</body></html>`

func newTestAdapter(t *testing.T, handler http.Handler) *Missav {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	adapter := NewWithBase(server.URL)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestListNew(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("ListNew", t, func() {
		videos, err := adapter.ListNew(context.Background(), 1)
		So(err, ShouldBeNil)

		Convey("Codeless cards are silently dropped", func() {
			So(videos, ShouldHaveLength, 2)
		})

		Convey("Codes are extracted and uppercased", func() {
			So(videos[0].Code, ShouldEqual, "ABC-100")
			So(videos[1].Code, ShouldEqual, "XYZ-200")
		})

		Convey("Detail URLs are absolute", func() {
			So(videos[0].DetailURL, ShouldEqual, adapter.BaseURL()+"/ABC-100")
		})

		Convey("Lazy-loaded covers prefer data-src", func() {
			So(videos[0].CoverURL, ShouldEqual, "https://img.example.com/abc100.jpg")
		})

		Convey("Records carry the source identifier", func() {
			So(videos[0].SourceID, ShouldEqual, SourceID)
		})
	})
}

func TestSearch(t *testing.T) {
	var lastPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/cn/search/", func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		_, _ = w.Write([]byte(listingHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("Search", t, func() {
		Convey("Returns parsed cards up to the limit", func() {
			videos, err := adapter.Search(context.Background(), "abc", 1)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Code, ShouldEqual, "ABC-100")
		})

		Convey("Multi-word keywords stay intact in the search path", func() {
			_, err := adapter.Search(context.Background(), "yua mikami", 1)
			So(err, ShouldBeNil)
			So(lastPath, ShouldEqual, "/cn/search/yua mikami")
		})

		Convey("An unavailable page yields empty results, not an error", func() {
			broken := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			videos, err := broken.Search(context.Background(), "abc", 5)
			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})
	})
}

func TestFetchDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/SSIS-001", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("FetchDetail", t, func() {
		video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/SSIS-001")
		So(err, ShouldBeNil)
		So(video, ShouldNotBeNil)

		Convey("The richer detail fields are parsed", func() {
			So(video.Title, ShouldEqual, "SSIS-001 Fancy Title")
			So(video.Code, ShouldEqual, "SSIS-001")
			So(video.PreviewURL, ShouldEqual, "https://cdn.example.com/preview.mp4")
		})

		Convey("Actresses are deduplicated in display order", func() {
			So(video.Actresses, ShouldResemble, []string{"Alice", "Bea"})
			So(video.Tags, ShouldResemble, []string{"Drama"})
		})

		Convey("The labeled duration is already minutes-scale", func() {
			So(video.DurationMinutes, ShouldEqual, 141)
		})

		Convey("A bare code resolves to the canonical detail URL", func() {
			byCode, err := adapter.FetchDetail(context.Background(), "SSIS-001")
			So(err, ShouldBeNil)
			So(byCode, ShouldNotBeNil)
			So(byCode.DetailURL, ShouldEqual, adapter.BaseURL()+"/SSIS-001")
		})

		Convey("An unavailable page yields nil, not an error", func() {
			missing, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/GONE-404")
			So(err, ShouldBeNil)
			So(missing, ShouldBeNil)
		})
	})
}

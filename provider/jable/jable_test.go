package jable

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
<div class="video-img-box">
  <a href="/videos/abc-100/">
    <img title="ABC-100 First Title" data-src="https://img.example.com/abc100.jpg">
  </a>
  <span class="absolute-center">abc-100</span>
</div>
<div class="video-img-box">
  <a href="/videos/xyz-200/">
    <img alt="second movie">
  </a>
</div>
<div class="video-img-box">
  <a href="/videos/intro/">
    <img alt="channel intro">
  </a>
</div>
</body></html>`

const detailHTML = `<html><body>
<h4>ABC-100 First Title</h4>
<script>var hlsUrl = 'https://cdn.example.com/abc-100/playlist.m3u8';</script>
</body></html>`

func newTestAdapter(t *testing.T, handler http.Handler) *Jable {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	adapter := NewWithBase(server.URL)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestListNew(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest-updates/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("ListNew", t, func() {
		videos, err := adapter.ListNew(context.Background(), 1)
		So(err, ShouldBeNil)

		Convey("Codeless cards are dropped", func() {
			So(videos, ShouldHaveLength, 2)
		})

		Convey("The thumbnail overlay code is preferred and normalized", func() {
			So(videos[0].Code, ShouldEqual, "ABC-100")
			So(videos[0].Title, ShouldEqual, "ABC-100 First Title")
			So(videos[0].CoverURL, ShouldEqual, "https://img.example.com/abc100.jpg")
			So(videos[0].DetailURL, ShouldEqual, adapter.BaseURL()+"/videos/abc-100/")
		})

		Convey("Without an overlay the code comes from the detail URL", func() {
			So(videos[1].Code, ShouldEqual, "XYZ-200")
		})
	})
}

func TestSearch(t *testing.T) {
	var lastPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		_, _ = w.Write([]byte(listingHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("Search", t, func() {
		Convey("Returns parsed cards up to the limit", func() {
			videos, err := adapter.Search(context.Background(), "abc-100", 1)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
			So(videos[0].Code, ShouldEqual, "ABC-100")
		})

		Convey("Multi-word keywords stay intact in the search path", func() {
			_, err := adapter.Search(context.Background(), "yua mikami", 1)
			So(err, ShouldBeNil)
			So(lastPath, ShouldEqual, "/search/yua mikami/")
		})
	})
}

func TestFetchDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/videos/abc-100/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailHTML))
	})
	adapter := newTestAdapter(t, mux)

	Convey("FetchDetail", t, func() {
		Convey("The player script yields the stream URL", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/videos/abc-100/")
			So(err, ShouldBeNil)
			So(video, ShouldNotBeNil)
			So(video.Code, ShouldEqual, "ABC-100")
			So(video.PreviewURL, ShouldEqual, "https://cdn.example.com/abc-100/playlist.m3u8")
		})

		Convey("A bare code is lowercased into the canonical detail URL", func() {
			video, err := adapter.FetchDetail(context.Background(), "ABC-100")
			So(err, ShouldBeNil)
			So(video, ShouldNotBeNil)
			So(video.DetailURL, ShouldEqual, adapter.BaseURL()+"/videos/abc-100/")
		})

		Convey("An unavailable page yields nil, not an error", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/videos/gone-404/")
			So(err, ShouldBeNil)
			So(video, ShouldBeNil)
		})
	})
}

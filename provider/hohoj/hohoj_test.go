package hohoj

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

const searchHTML = `<html><body>
<a href="/video?id=123">watch</a>
<a href="/video?id=456">watch</a>
</body></html>`

var embedPages = map[string]string{
	"123": `<html><head><meta property="og:video:duration" content="8460"></head>
<body>ABC-100 full movie
<script>var videoSrc = "https://cdn.example.com/123/stream.m3u8";</script>
</body></html>`,
	"456": `<html><body>
<script>playerSetup({duration: 8460});</script>
</body></html>`,
	"789": `<html><body>ABC-100 141 分</body></html>`,
	"321": `<html><body>ABC-100 runtime 02:21:00</body></html>`,
}

func newTestAdapter(t *testing.T) (*Hohoj, *string) {
	t.Helper()

	var lastReferer string
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchHTML))
	})
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		lastReferer = r.Header.Get("Referer")
		page, ok := embedPages[r.URL.Query().Get("id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(page))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	adapter := NewWithBase(server.URL)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter, &lastReferer
}

func TestSearch(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	Convey("Search", t, func() {
		Convey("Code keywords materialize the result links", func() {
			videos, err := adapter.Search(context.Background(), "ABC-100", 0)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].Code, ShouldEqual, "ABC-100")
			So(videos[0].DetailURL, ShouldEqual, adapter.BaseURL()+"/video?id=123")
			So(videos[1].DetailURL, ShouldEqual, adapter.BaseURL()+"/video?id=456")
		})

		Convey("The limit caps the result count", func() {
			videos, err := adapter.Search(context.Background(), "ABC-100", 1)
			So(err, ShouldBeNil)
			So(videos, ShouldHaveLength, 1)
		})

		Convey("Multi-word keywords stay intact in the query string", func() {
			var gotText string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotText = r.URL.Query().Get("text")
				_, _ = w.Write([]byte(searchHTML))
			}))
			defer server.Close()
			capture := NewWithBase(server.URL)
			defer func() { _ = capture.Close() }()

			_, err := capture.Search(context.Background(), "ABC-100 chinese subtitle", 0)
			So(err, ShouldBeNil)
			So(gotText, ShouldEqual, "ABC-100 chinese subtitle")
		})

		Convey("Keywords without a code yield nothing", func() {
			videos, err := adapter.Search(context.Background(), "actress name", 5)
			So(err, ShouldBeNil)
			So(videos, ShouldBeEmpty)
		})
	})
}

func TestFetchDetail(t *testing.T) {
	adapter, lastReferer := newTestAdapter(t)

	Convey("FetchDetail", t, func() {
		Convey("The embed page is fetched with the detail page as referer", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/video?id=123")
			So(err, ShouldBeNil)
			So(video, ShouldNotBeNil)
			So(*lastReferer, ShouldEqual, adapter.BaseURL()+"/video?id=123")
			So(video.Code, ShouldEqual, "ABC-100")
			So(video.PreviewURL, ShouldEqual, "https://cdn.example.com/123/stream.m3u8")
		})

		Convey("Metadata durations are seconds-scale and get converted", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/video?id=123")
			So(err, ShouldBeNil)
			So(video.DurationMinutes, ShouldEqual, 141)
		})

		Convey("Player script durations are found when metadata is absent", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/video?id=456")
			So(err, ShouldBeNil)
			So(video.DurationMinutes, ShouldEqual, 141)
		})

		Convey("Labeled durations are found when scripts are absent", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/video?id=789")
			So(err, ShouldBeNil)
			So(video.DurationMinutes, ShouldEqual, 141)
		})

		Convey("Clock strings are the last resort", func() {
			video, err := adapter.FetchDetail(context.Background(), adapter.BaseURL()+"/video?id=321")
			So(err, ShouldBeNil)
			So(video.DurationMinutes, ShouldEqual, 141)
		})

		Convey("Inputs without a numeric id yield nil, not an error", func() {
			video, err := adapter.FetchDetail(context.Background(), "ABC-100")
			So(err, ShouldBeNil)
			So(video, ShouldBeNil)
		})
	})
}

package query

import (
	"testing"

	"github.com/javsan-cli/javsan/filesystem"
	"github.com/javsan-cli/javsan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.SearchShowQuerySuggestions, true)
}

func TestQuery(t *testing.T) {
	Convey("Given query history", t, func() {
		Convey("When remembering queries", func() {
			So(Remember("ssis-001", 1), ShouldBeNil)
			So(Remember("ssni-700", 10), ShouldBeNil)

			Convey("Then suggestions are sorted by rank", func() {
				// Drop the in-memory layer so the persisted history is read.
				suggestionCache = make(map[string][]*queryRecord)

				suggestions := SuggestMany("ssni")
				So(len(suggestions), ShouldBeGreaterThanOrEqualTo, 1)
				So(suggestions[0], ShouldEqual, "ssni-700")
			})

			Convey("It sanitizes input", func() {
				So(sanitize("  SSIS-001  "), ShouldEqual, "ssis-001")
			})
		})

		Convey("Suggestions can be disabled", func() {
			viper.Set(key.SearchShowQuerySuggestions, false)
			defer viper.Set(key.SearchShowQuerySuggestions, true)

			So(SuggestMany("ssni"), ShouldBeEmpty)
		})
	})
}

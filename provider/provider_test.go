package provider

import (
	"testing"

	"github.com/javsan-cli/javsan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestBuiltins(t *testing.T) {
	Convey("Builtins", t, func() {
		builtins := Builtins()

		Convey("All four sites are registered", func() {
			So(builtins, ShouldHaveLength, 4)
		})

		Convey("MissAV comes first in the tie-break order", func() {
			So(builtins[0].ID, ShouldEqual, "missav")
		})

		Convey("Every provider can construct its source", func() {
			for _, p := range builtins {
				src, err := p.CreateSource()
				So(err, ShouldBeNil)
				So(src.ID(), ShouldEqual, p.ID)
				So(src.BaseURL(), ShouldNotBeEmpty)
				So(src.Close(), ShouldBeNil)
			}
		})
	})
}

func TestGet(t *testing.T) {
	Convey("Get", t, func() {
		Convey("Finds by ID", func() {
			p, ok := Get("jable")
			So(ok, ShouldBeTrue)
			So(p.Name, ShouldEqual, "Jable")
		})

		Convey("Finds by display name", func() {
			_, ok := Get("HohoJ")
			So(ok, ShouldBeTrue)
		})

		Convey("Reports unknown names", func() {
			_, ok := Get("nope")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestEnabled(t *testing.T) {
	Convey("Enabled", t, func() {
		Convey("Preserves the configured order", func() {
			viper.Set(key.SourcesEnabled, []string{"memo", "missav"})
			providers, err := Enabled()
			So(err, ShouldBeNil)
			So(providers, ShouldHaveLength, 2)
			So(providers[0].ID, ShouldEqual, "memo")
			So(providers[1].ID, ShouldEqual, "missav")
		})

		Convey("Rejects unknown identifiers", func() {
			viper.Set(key.SourcesEnabled, []string{"missav", "bogus"})
			_, err := Enabled()
			So(err, ShouldNotBeNil)
		})
	})
}

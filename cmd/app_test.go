package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/source"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.Set(key.SearchLimit, 5)
}

// tempCatalog points the storage path at a throwaway database and seeds it.
func tempCatalog(t *testing.T, videos ...*source.Video) {
	t.Helper()
	viper.Set(key.StoragePath, filepath.Join(t.TempDir(), "javsan.db"))
	t.Cleanup(func() { viper.Set(key.StoragePath, "") })

	store, err := openStorage()
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	for _, video := range videos {
		if _, err := store.InsertIfAbsent(video); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLatest(t *testing.T) {
	Convey("latest reads the stored catalog, newest first", t, func() {
		tempCatalog(t,
			&source.Video{Code: "ABC-100", SourceID: "missav"},
			&source.Video{Code: "ABC-101", SourceID: "missav"},
		)

		var out bytes.Buffer
		latestCmd.SetOut(&out)
		defer latestCmd.SetOut(os.Stdout)
		So(latestCmd.Flags().Set("json", "true"), ShouldBeNil)
		defer func() { _ = latestCmd.Flags().Set("json", "false") }()

		latestCmd.Run(latestCmd, nil)

		rendered := out.String()
		So(rendered, ShouldContainSubstring, "ABC-101")
		So(rendered, ShouldContainSubstring, "ABC-100")
		So(strings.Index(rendered, "ABC-101"), ShouldBeLessThan, strings.Index(rendered, "ABC-100"))
	})
}

func TestPersistRecord(t *testing.T) {
	Convey("persistRecord", t, func() {
		tempCatalog(t)

		var out bytes.Buffer
		printerCmd := &cobra.Command{}
		printerCmd.SetOut(&out)

		video := &source.Video{Code: "ABC-100", SourceID: "missav", Title: "crawled by hand"}

		Convey("A crawled record joins the catalog", func() {
			So(persistRecord(printerCmd, video), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "ABC-100")

			store, err := openStorage()
			So(err, ShouldBeNil)
			defer store.Close()

			known, err := store.Exists("ABC-100")
			So(err, ShouldBeNil)
			So(known, ShouldBeTrue)
		})

		Convey("Storing twice is silent the second time", func() {
			So(persistRecord(printerCmd, video), ShouldBeNil)
			out.Reset()
			So(persistRecord(printerCmd, video), ShouldBeNil)
			So(out.String(), ShouldBeEmpty)
		})

		Convey("Codeless records are skipped without error", func() {
			So(persistRecord(printerCmd, &source.Video{Title: "no code"}), ShouldBeNil)
		})
	})
}

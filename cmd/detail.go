// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/javsan-cli/javsan/color"
	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/source"
	"github.com/javsan-cli/javsan/style"
	"github.com/javsan-cli/javsan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailCmd)

	detailCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	detailCmd.SetOut(os.Stdout)
}

// detailCmd fetches the full record for a catalog code or detail URL and
// stores it in the catalog before displaying it.
var detailCmd = &cobra.Command{
	Use:     "detail [code|url]",
	Short:   "Fetch, store and display the full record for a catalog code or URL",
	Args:    cobra.ExactArgs(1),
	Example: "  javsan detail SSIS-001\n  javsan detail https://missav.ai/SSIS-001",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			target = args[0]
			asJson = lo.Must(cmd.Flags().GetBool("json"))
		)

		agg, err := newAggregator()
		handleErr(err)
		defer util.Ignore(agg.Close)

		erase := util.PrintErasable(fmt.Sprintf("%s Fetching %s...", icon.Get(icon.Progress), style.Fg(color.Yellow)(target)))
		video, err := agg.FetchDetail(context.Background(), target)
		erase()
		handleErr(err)

		if video == nil {
			cmd.Printf("%s no record found for %s\n", icon.Get(icon.Search), style.Fg(color.Yellow)(target))
			return
		}

		handleErr(persistRecord(cmd, video))
		handleErr(printVideos(cmd, []*source.Video{video}, asJson))
	},
}

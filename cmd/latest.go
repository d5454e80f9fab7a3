// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(latestCmd)

	latestCmd.Flags().IntP("limit", "l", 0, "Maximum number of records (0 uses the configured default)")
	latestCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	latestCmd.Flags().Bool("live", false, "Fetch the listing from the primary source instead of the stored catalog")
	latestCmd.Flags().IntP("pages", "p", 0, "Number of listing pages for a live fetch (0 uses the configured default)")
	latestCmd.SetOut(os.Stdout)
}

// latestCmd lists the most recently stored records. The watch loop is what
// feeds the catalog; --live bypasses it and asks the primary source
// directly.
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the newest releases from the stored catalog",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			limit  = lo.Must(cmd.Flags().GetInt("limit"))
			asJson = lo.Must(cmd.Flags().GetBool("json"))
			live   = lo.Must(cmd.Flags().GetBool("live"))
			pages  = lo.Must(cmd.Flags().GetInt("pages"))
		)

		if limit <= 0 {
			limit = viper.GetInt(key.SearchLimit)
		}

		if live {
			if pages <= 0 {
				pages = viper.GetInt(key.WatchPages)
			}

			agg, err := newAggregator()
			handleErr(err)
			defer util.Ignore(agg.Close)

			erase := util.PrintErasable(fmt.Sprintf("%s Fetching the newest releases...", icon.Get(icon.Progress)))
			found, err := agg.ListNew(context.Background(), pages)
			erase()
			handleErr(err)

			handleErr(printVideos(cmd, found, asJson))
			return
		}

		store, err := openStorage()
		handleErr(err)
		defer util.Ignore(store.Close)

		found, err := store.ListRecent(limit)
		handleErr(err)
		handleErr(printVideos(cmd, found, asJson))
	},
}

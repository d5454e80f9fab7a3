// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/javsan-cli/javsan/color"
	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/query"
	"github.com/javsan-cli/javsan/style"
	"github.com/javsan-cli/javsan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "l", 0, "Maximum number of merged results (0 uses the configured default)")
	searchCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
	searchCmd.Flags().Bool("local", false, "Search the stored catalog instead of the live sources")
	searchCmd.SetOut(os.Stdout)
}

// searchCmd queries every enabled source concurrently and prints the merged
// result list.
var searchCmd = &cobra.Command{
	Use:     "search [keyword]",
	Short:   "Search all enabled sources and merge the results by catalog code",
	Args:    cobra.ExactArgs(1),
	Example: "  javsan search ssis-001\n  javsan search \"actress name\" --limit 10",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			keyword = args[0]
			limit   = lo.Must(cmd.Flags().GetInt("limit"))
			asJson  = lo.Must(cmd.Flags().GetBool("json"))
			local   = lo.Must(cmd.Flags().GetBool("local"))
		)

		if limit <= 0 {
			limit = viper.GetInt(key.SearchLimit)
		}

		if local {
			store, err := openStorage()
			handleErr(err)
			defer util.Ignore(store.Close)

			found, err := store.SearchLocal(keyword, limit)
			handleErr(err)
			handleErr(printVideos(cmd, found, asJson))
			return
		}

		agg, err := newAggregator()
		handleErr(err)
		defer util.Ignore(agg.Close)

		erase := util.PrintErasable(fmt.Sprintf("%s Searching for %s...", icon.Get(icon.Progress), style.Fg(color.Yellow)(keyword)))
		found, err := agg.Search(context.Background(), keyword, limit)
		erase()
		handleErr(err)

		_ = query.Remember(keyword, 1)

		if len(found) == 0 {
			if suggestion := query.Suggest(keyword); suggestion.IsPresent() {
				cmd.Printf("%s nothing found, did you mean %s?\n",
					icon.Get(icon.Search),
					style.Fg(color.Yellow)(suggestion.MustGet()))
				return
			}
		}

		handleErr(printVideos(cmd, found, asJson))
	},
}

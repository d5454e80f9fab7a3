// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/javsan-cli/javsan/color"
	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/log"
	"github.com/javsan-cli/javsan/source"
	"github.com/javsan-cli/javsan/storage"
	"github.com/javsan-cli/javsan/style"
	"github.com/javsan-cli/javsan/util"
	"github.com/javsan-cli/javsan/watcher"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntP("interval", "i", 0, "Minutes between poll cycles")
	lo.Must0(viper.BindPFlag(key.WatchInterval, watchCmd.Flags().Lookup("interval")))

	watchCmd.Flags().IntP("pages", "p", 0, "Number of listing pages per poll cycle")
	lo.Must0(viper.BindPFlag(key.WatchPages, watchCmd.Flags().Lookup("pages")))

	watchCmd.Flags().Bool("once", false, "Run a single poll cycle and exit")
	watchCmd.SetOut(os.Stdout)
}

// watchCmd runs the incremental poll loop, storing and announcing every
// genuinely new record.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the primary source for new releases and announce them",
	Long: `Poll the primary source on a fixed cadence, skip the records already
stored in the local catalog, enrich the new ones with their detail pages,
and announce each newly stored record exactly once.`,
	Run: func(cmd *cobra.Command, args []string) {
		once := lo.Must(cmd.Flags().GetBool("once"))

		agg, err := newAggregator()
		handleErr(err)
		defer util.Ignore(agg.Close)

		store, err := openStorage()
		handleErr(err)
		defer util.Ignore(store.Close)

		w := watcher.New(agg, store)
		w.OnNewVideo(announce(cmd, store))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if once {
			handleErr(w.RunCycle(ctx))
			return
		}

		cmd.Printf("%s watching every %s minutes, press ctrl-c to stop\n",
			icon.Get(icon.Progress),
			style.Bold(viper.GetString(key.WatchInterval)))

		if err := w.Watch(ctx); !errors.Is(err, context.Canceled) {
			handleErr(err)
		}
	},
}

// announce builds the new-video handler: print the record and, when
// notifications are enabled, resolve and audit the matching subscriptions.
func announce(cmd *cobra.Command, store *storage.Storage) watcher.Handler {
	return func(video *source.Video) {
		cmd.Printf("%s %s %s\n", icon.Get(icon.New), style.Bold(video.Code), util.Truncate(video.Title, 80))

		if !viper.GetBool(key.NotifyEnabled) {
			return
		}

		matched, err := store.MatchSubscriptions(video)
		if err != nil {
			log.Warnf("watch: resolving subscriptions for %s: %s", video.Code, err)
			return
		}

		for _, sub := range matched {
			if err := store.RecordPush(sub.ID, video.Code); err != nil {
				log.Warnf("watch: recording push for %s: %s", video.Code, err)
				continue
			}

			label := string(sub.Type)
			if sub.Keyword != "" {
				label += " " + sub.Keyword
			}
			cmd.Printf("  %s\n", style.Faint("matched subscription "+style.Fg(color.Yellow)(label)))
		}
	}
}

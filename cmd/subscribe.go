// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"errors"
	"os"
	"strconv"

	"github.com/javsan-cli/javsan/color"
	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/storage"
	"github.com/javsan-cli/javsan/style"
	"github.com/javsan-cli/javsan/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(subscribeCmd)

	subscribeCmd.Flags().BoolP("all", "a", false, "Subscribe to every new release")
	subscribeCmd.Flags().String("actress", "", "Subscribe to releases featuring an actress")
	subscribeCmd.Flags().String("tag", "", "Subscribe to releases carrying a tag")
	subscribeCmd.MarkFlagsMutuallyExclusive("all", "actress", "tag")
	subscribeCmd.SetOut(os.Stdout)
}

// subscribeCmd stores a notification rule matched against new releases.
var subscribeCmd = &cobra.Command{
	Use:     "subscribe",
	Short:   "Subscribe to new releases by actress, tag, or unconditionally",
	Example: "  javsan subscribe --all\n  javsan subscribe --actress \"name\"\n  javsan subscribe --tag drama",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			subType storage.SubscriptionType
			keyword string
		)

		switch {
		case lo.Must(cmd.Flags().GetBool("all")):
			subType = storage.SubscribeAll
		case cmd.Flags().Changed("actress"):
			subType = storage.SubscribeActress
			keyword = lo.Must(cmd.Flags().GetString("actress"))
		case cmd.Flags().Changed("tag"):
			subType = storage.SubscribeTag
			keyword = lo.Must(cmd.Flags().GetString("tag"))
		default:
			handleErr(errors.New("one of --all, --actress or --tag is required"))
		}

		store, err := openStorage()
		handleErr(err)
		defer util.Ignore(store.Close)

		id, err := store.Subscribe(subType, keyword)
		handleErr(err)

		cmd.Printf("%s subscribed %s\n",
			icon.Get(icon.Success),
			style.Faint("(rule "+strconv.FormatInt(id, 10)+")"))
	},
}

func init() {
	rootCmd.AddCommand(unsubscribeCmd)
	unsubscribeCmd.SetOut(os.Stdout)
}

// unsubscribeCmd removes a stored notification rule by its id.
var unsubscribeCmd = &cobra.Command{
	Use:     "unsubscribe [id]",
	Short:   "Remove a subscription rule by its identifier",
	Args:    cobra.ExactArgs(1),
	Example: "  javsan unsubscribe 3",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		handleErr(err)

		store, err := openStorage()
		handleErr(err)
		defer util.Ignore(store.Close)

		handleErr(store.Unsubscribe(id))
		cmd.Printf("%s unsubscribed rule %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
	subscriptionsCmd.SetOut(os.Stdout)
}

// subscriptionsCmd lists the stored notification rules.
var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List the stored subscription rules",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStorage()
		handleErr(err)
		defer util.Ignore(store.Close)

		subs, err := store.Subscriptions()
		handleErr(err)

		if len(subs) == 0 {
			cmd.Printf("%s no subscriptions\n", icon.Get(icon.Search))
			return
		}

		for _, sub := range subs {
			label := string(sub.Type)
			if sub.Keyword != "" {
				label += " " + style.Fg(color.Yellow)(sub.Keyword)
			}
			cmd.Printf("%s %s\n", style.Bold(strconv.FormatInt(sub.ID, 10)), label)
		}
	},
}

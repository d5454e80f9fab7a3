// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"os"

	"github.com/javsan-cli/javsan/color"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/provider"
	"github.com/javsan-cli/javsan/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd provides a parent command for inspecting the site adapters.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the built-in catalog site adapters",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Suppress header and status annotations in the output")
	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd displays the registered adapters with their enablement
// status and the primary-source marker.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Display the registered site adapters",
	Run: func(cmd *cobra.Command, args []string) {
		raw := lo.Must(cmd.Flags().GetBool("raw"))

		if !raw {
			cmd.Println(style.New().Foreground(color.HiBlue).Bold(true).Render("Sources:"))
		}

		enabled := viper.GetStringSlice(key.SourcesEnabled)
		primary := provider.PrimaryID()

		for _, p := range provider.Builtins() {
			if raw {
				cmd.Println(p.ID)
				continue
			}

			line := style.Bold(p.ID)
			if p.ID == primary {
				line += " " + style.Fg(color.Purple)("(primary)")
			}
			if !lo.Contains(enabled, p.ID) {
				line += " " + style.Faint("(disabled)")
			}
			cmd.Println(line)
		}
	},
}

// Package cmd implements the command-line interface for javsan.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/javsan-cli/javsan/aggregator"
	"github.com/javsan-cli/javsan/icon"
	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/provider"
	"github.com/javsan-cli/javsan/source"
	"github.com/javsan-cli/javsan/storage"
	"github.com/javsan-cli/javsan/style"
	"github.com/javsan-cli/javsan/util"
	"github.com/javsan-cli/javsan/where"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newAggregator assembles the aggregator over the enabled providers, with
// the configured primary source moved to the front of the precedence order.
func newAggregator() (*aggregator.Aggregator, error) {
	providers, err := provider.Enabled()
	if err != nil {
		return nil, err
	}
	if len(providers) == 0 {
		return nil, errors.New("no sources enabled")
	}

	primary := provider.PrimaryID()
	var ordered []*provider.Provider
	for _, p := range providers {
		if p.ID == primary {
			ordered = append(ordered, p)
		}
	}
	for _, p := range providers {
		if p.ID != primary {
			ordered = append(ordered, p)
		}
	}

	sources := make([]source.Source, 0, len(ordered))
	for _, p := range ordered {
		src, err := p.CreateSource()
		if err != nil {
			for _, open := range sources {
				_ = open.Close()
			}
			return nil, fmt.Errorf("initializing source %s: %w", p.ID, err)
		}
		sources = append(sources, src)
	}

	return aggregator.New(sources...), nil
}

// openStorage opens the catalog database at the configured path.
func openStorage() (*storage.Storage, error) {
	path := viper.GetString(key.StoragePath)
	if path == "" {
		path = where.Database()
	}
	return storage.Open(path)
}

// persistRecord stores a manually crawled record in the catalog so the
// watch loop never re-announces it. Codeless records cannot be stored and
// are skipped.
func persistRecord(cmd *cobra.Command, video *source.Video) error {
	if video == nil || video.Code == "" {
		return nil
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer util.Ignore(store.Close)

	inserted, err := store.InsertIfAbsent(video)
	if err != nil {
		return err
	}
	if inserted {
		cmd.Printf("%s added %s to the catalog\n", icon.Get(icon.Success), style.Bold(video.Code))
	}
	return nil
}

// printVideos renders a record list either as indented JSON or as a styled
// human-readable listing.
func printVideos(cmd *cobra.Command, videos []*source.Video, asJson bool) error {
	if asJson {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(videos)
	}

	if len(videos) == 0 {
		cmd.Printf("%s nothing found\n", icon.Get(icon.Search))
		return nil
	}

	for _, video := range videos {
		cmd.Printf("%s %s %s\n", icon.Get(icon.Video), style.Bold(video.Code), util.Truncate(video.Title, 80))

		var details []string
		if video.SourceID != "" {
			details = append(details, video.SourceID)
		}
		if video.DurationMinutes > 0 {
			details = append(details, fmt.Sprintf("%d min", video.DurationMinutes))
		}
		if len(video.Actresses) > 0 {
			details = append(details, strings.Join(video.Actresses, ", "))
		}
		if len(details) > 0 {
			cmd.Printf("  %s\n", style.Faint(strings.Join(details, " | ")))
		}
		if video.DetailURL != "" {
			cmd.Printf("  %s\n", style.Faint(video.DetailURL))
		}
	}
	return nil
}

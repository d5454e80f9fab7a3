// Package provider manages the registry of built-in catalog site adapters.
package provider

import (
	"fmt"

	"github.com/javsan-cli/javsan/key"
	"github.com/javsan-cli/javsan/provider/hohoj"
	"github.com/javsan-cli/javsan/provider/jable"
	"github.com/javsan-cli/javsan/provider/memo"
	"github.com/javsan-cli/javsan/provider/missav"
	"github.com/javsan-cli/javsan/source"
	"github.com/spf13/viper"
)

// Provider represents a registered site adapter. New sites are added by
// implementing source.Source and appending an entry here; shared code never
// changes per site.
type Provider struct {
	ID   string
	Name string

	CreateSource func() (source.Source, error)
}

func (p *Provider) String() string {
	return p.Name
}

// Builtins returns all built-in providers in their canonical declaration
// order. This order is the deterministic tie-break for cross-source
// deduplication.
func Builtins() []*Provider {
	return []*Provider{
		{
			ID:   missav.SourceID,
			Name: "MissAV",
			CreateSource: func() (source.Source, error) {
				return missav.New(), nil
			},
		},
		{
			ID:   jable.SourceID,
			Name: "Jable",
			CreateSource: func() (source.Source, error) {
				return jable.New(), nil
			},
		},
		{
			ID:   memo.SourceID,
			Name: "Memo",
			CreateSource: func() (source.Source, error) {
				return memo.New(), nil
			},
		},
		{
			ID:   hohoj.SourceID,
			Name: "HohoJ",
			CreateSource: func() (source.Source, error) {
				return hohoj.New(), nil
			},
		},
	}
}

// Get finds a provider by its ID or display name.
func Get(name string) (*Provider, bool) {
	for _, p := range Builtins() {
		if p.ID == name || p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Enabled returns the providers selected by configuration, preserving the
// configured order. Unknown identifiers are reported, not skipped silently.
func Enabled() ([]*Provider, error) {
	var providers []*Provider
	for _, name := range viper.GetStringSlice(key.SourcesEnabled) {
		p, ok := Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// PrimaryID returns the configured primary source identifier.
func PrimaryID() string {
	return viper.GetString(key.SourcesPrimary)
}

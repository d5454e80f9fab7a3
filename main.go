// Package main is the entry point for the javsan application.
package main

import (
	"github.com/javsan-cli/javsan/cmd"
	"github.com/javsan-cli/javsan/config"
	"github.com/javsan-cli/javsan/internal/cache"
	"github.com/javsan-cli/javsan/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Expired search-result cache entries are pruned in the background.
	cache.CollectGarbage()

	cmd.Execute()
}

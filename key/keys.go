// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Provider Source Identifiers - these keys manage the registration and selection of catalog site adapters.
const (
	SourcesEnabled = "sources.enabled"
	SourcesPrimary = "sources.primary"
)

// Watcher Scheduling - these keys configure the incremental polling cycle.
const (
	WatchInterval = "watch.interval_minutes"
	WatchPages    = "watch.pages"
)

// Search Interaction - these keys define the behavior of keyword search across sources.
const (
	SearchLimit                = "search.limit"
	SearchCacheResults         = "search.cache_results"
	SearchShowQuerySuggestions = "search.show_query_suggestions"
)

// Fetch Discipline - these keys govern the per-request throttle window in milliseconds.
// The delay is an anti-bot measure, not a local resource limit.
const (
	FetchDelayMinMS = "fetch.delay_min_ms"
	FetchDelayMaxMS = "fetch.delay_max_ms"
)

// Catalog Storage - these keys manage the persistent video catalog database.
const (
	StoragePath = "storage.path"
)

// Notification Gating - these keys control delivery of new-video events to subscribers.
const (
	NotifyEnabled = "notify.enabled"
)

// Iconography - these keys manage the visual rendering of CLI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern general application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Javsan is the canonical application identifier used for filesystem paths and CLI branding.
	Javsan = "javsan"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for network requests to catalog sites.
	// It matches the Chrome generation advertised by the TLS fingerprint in the network package.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Build metadata, injected via -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

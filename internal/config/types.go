package config

import "time"

// Config holds the runtime configuration for the Legend Cut service.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// AssetsDir is the root directory of haircut assets, one subdirectory
	// per category ("male", "female", "custom", ...).
	AssetsDir string

	// DetectorURL is the base URL of the facial-landmark sidecar service.
	DetectorURL string

	// DetectorTimeout bounds a single detection round-trip.
	DetectorTimeout time.Duration

	// JPEGQuality is the re-encode quality of outbound frames.
	JPEGQuality int

	// SessionTTL is how long an idle session's adjustments are kept.
	// Zero disables eviction.
	SessionTTL time.Duration

	// SessionMerge selects field-by-field merging of adjustment updates
	// instead of full replacement.
	SessionMerge bool

	// Env is the deployment environment name ("test" disables file logging).
	Env string
}

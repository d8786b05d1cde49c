package db

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Connection identity reported in pg_stat_activity
const (
	runtimeParamAppName = "application_name"
	applicationName     = "sentiment-scope"
)

// History query limits
const (
	// DefaultHistoryLimit is used when a listing does not set a limit.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single listing.
	MaxHistoryLimit = 200
	// DefaultSimilarLimit is the number of neighbours returned by a similarity search.
	DefaultSimilarLimit = 5
)

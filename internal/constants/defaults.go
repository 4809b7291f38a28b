package constants

// Bulk-add pipeline tunables
const (
	// ProgressUpdateEvery controls how often the standing status message is
	// edited during a bulk add: after every Nth processed candidate, and
	// always after the last one.
	ProgressUpdateEvery = 5

	// FailedListDisplayLimit caps how many failed identities the final
	// report lists before switching to an "and N more" suffix.
	FailedListDisplayLimit = 10
)

// Default polling configuration values
const (
	DefaultPollTimeoutSec      = 30
	DefaultBackoffInitialMs    = 500
	DefaultBackoffMaxMs        = 30000
	DefaultBackoffMaxAttempts  = 5
	DefaultGracefulShutdownSec = 30
)

// Default webhook server values
const (
	DefaultServerPort            = 8082
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
)

package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Polling constants
const (
	// DefaultPollInterval is how often the client polls session status.
	DefaultPollInterval = 3 * time.Second
	// DefaultPollCeiling bounds total polling time even when the service
	// never reports a terminal status.
	DefaultPollCeiling = 10 * time.Minute
	// DefaultPollRetryInitial is the first backoff delay after a failed tick.
	DefaultPollRetryInitial = 500 * time.Millisecond
	// DefaultPollRetryElapsed caps retry time within a single tick.
	DefaultPollRetryElapsed = 15 * time.Second
)

// HTTP constants
const (
	// DefaultEndpoint is the orchestration service base URL.
	DefaultEndpoint = "http://localhost:8000"
	// DefaultRequestTimeout applies to each client request.
	DefaultRequestTimeout = 30 * time.Second
)

// Service constants
const (
	// DefaultListenAddr is where e2eagentd serves.
	DefaultListenAddr = ":8000"
	// DefaultSessionTTL is the sliding session expiry.
	DefaultSessionTTL = time.Hour
	// DefaultMaxConcurrentExecutions bounds parallel test plan executions.
	DefaultMaxConcurrentExecutions = 5
	// DefaultWorkflowDuration is assumed when a template declares none.
	DefaultWorkflowDuration = 60
)

// History constants
const (
	// DefaultHistoryLimit is the default number of run records to display.
	DefaultHistoryLimit = 20
)

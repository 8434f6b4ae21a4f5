package db

import "time"

const (
	defaultMaxConns          = 10
	defaultMinConns          = 2
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultMaxConnLifetime   = 30 * time.Minute
	defaultHealthCheckPeriod = time.Minute

	maxConnectionRetries = 5
	// ConnectionRetrySleep is the pause between connection attempts.
	ConnectionRetrySleep = 2 * time.Second
)

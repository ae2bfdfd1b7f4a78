package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// startupTimeout bounds connecting to external services at startup.
	startupTimeout = 15 * time.Second
)

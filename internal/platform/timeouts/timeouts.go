// Package timeouts defines shared timeout constants used by the service.
// Centralizing these values keeps the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionIdle is how long a browser session keeps its mounted view tree
// without requests before it is discarded.
const SessionIdle = 30 * time.Minute

// SessionSweep is the interval between idle session sweeps.
const SessionSweep = time.Minute

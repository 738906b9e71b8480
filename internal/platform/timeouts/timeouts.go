// Package timeouts defines shared timeout constants used across commands and
// clients so durations stay discoverable in one place.
package timeouts

import "time"

// APIRequest caps a single request from the API client to the backend.
const APIRequest = 10 * time.Second

// SessionStore caps one session store read or write.
const SessionStore = 2 * time.Second

// Shutdown limits how long a command waits for telemetry flushes and pending
// scheduled work before exiting.
const Shutdown = 5 * time.Second

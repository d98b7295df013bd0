package flowz

import "log"

// Hook receives errors that can no longer be delivered downstream: terminal
// signals arriving after the stream already terminated, and failures thrown
// by state disposers. A Hook is observability, not control flow - it must not
// panic and should return quickly.
//
// Hooks are injected per stream via WithHook rather than installed globally,
// so streams under test can capture their own diverted errors in isolation.
type Hook func(error)

// LogHook is the default Hook. It writes diverted errors to the standard
// logger, tagged with the stream name.
func LogHook(name string) Hook {
	return func(err error) {
		log.Printf("flowz[%s]: undeliverable error: %v", name, err)
	}
}

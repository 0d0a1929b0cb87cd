// Package logging is a thin boundary-only shim over the standard log
// package. It is used at process boundaries (index opening, proxy init,
// fatal startup errors) — never inside the per-request hot path, per
// spec.md §5 "Scheduling" (work stays single-threaded and allocation-light
// within a request).
package logging

import "log"

// Infof logs an informational boundary event.
func Infof(format string, args ...any) {
	log.Printf("[netspeak] "+format, args...)
}

// Errorf logs a fatal or unexpected boundary event, such as a CorruptIndex
// error surfaced to a caller.
func Errorf(format string, args ...any) {
	log.Printf("[netspeak] ERROR: "+format, args...)
}

package sync

import "strings"

// Reporter receives one message per group of changes applied at a
// directory level. Implementations must not block reconciliation on their
// own failures.
type Reporter interface {
	Report(message string)
}

// ReporterFunc adapts a function to the Reporter interface
type ReporterFunc func(message string)

// Report calls f(message)
func (f ReporterFunc) Report(message string) {
	f(message)
}

// PassScoper is implemented by reporters that tag events with the ID of the
// pass that produced them
type PassScoper interface {
	BeginPass(id string)
}

type nopReporter struct{}

func (nopReporter) Report(string) {}

// eventMessage renders one event for a batch: "a was created, b was created".
// Paths are relative to the replica root ("sub/new.txt"), not bare names, so
// events from different levels stay distinguishable.
func eventMessage(paths []string, verb string) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p + " was " + verb
	}
	return strings.Join(parts, ", ")
}

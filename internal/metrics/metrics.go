// ABOUTME: Instrumentation interface for the suggestion engine and API
// ABOUTME: No-op default with an optional Prometheus-backed implementation
package metrics

import "time"

// Recorder defines the metrics surface used across the codebase.
type Recorder interface {
	CacheLookup(hit bool)
	CacheEviction()
	ProviderCall(outcome string, seconds float64)
	Analysis(kind string, seconds float64, suggestions int)
	HTTPRequest(route, method string, status int, seconds float64)
}

type noopRecorder struct{}

func (noopRecorder) CacheLookup(bool)                         {}
func (noopRecorder) CacheEviction()                           {}
func (noopRecorder) ProviderCall(string, float64)             {}
func (noopRecorder) Analysis(string, float64, int)            {}
func (noopRecorder) HTTPRequest(string, string, int, float64) {}

// Noop returns a Recorder that discards everything
func Noop() Recorder {
	return noopRecorder{}
}

// OrNoop returns r, or the no-op recorder when r is nil
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}

// Since returns seconds elapsed since start
func Since(start time.Time) float64 {
	return time.Since(start).Seconds()
}

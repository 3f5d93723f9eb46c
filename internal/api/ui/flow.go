package ui

import "sync"

// FlowState is a point-in-time copy of a Flow.
type FlowState[T any] struct {
	Loading   bool
	Error     string
	Result    T
	HasResult bool
	Query     string
}

// Flow tracks one request/response cycle of the page. Every Begin issues a
// new token and only the holder of the latest token may settle the flow, so a
// slow older request can never overwrite a newer one.
type Flow[T any] struct {
	mu    sync.Mutex
	token uint64
	state FlowState[T]
}

// Begin clears the previous result and error and marks the flow loading.
func (f *Flow[T]) Begin(query string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token++
	f.state = FlowState[T]{Loading: true, Query: query}
	return f.token
}

// Complete stores result if token is still current. It reports whether the
// result was applied.
func (f *Flow[T]) Complete(token uint64, result T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.token {
		return false
	}
	f.state.Loading = false
	f.state.Result = result
	f.state.HasResult = true
	return true
}

// Fail stores msg if token is still current.
func (f *Flow[T]) Fail(token uint64, msg string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.token {
		return false
	}
	f.state.Loading = false
	f.state.Error = msg
	return true
}

// SetError shows msg without touching any request in flight or the last
// result.
func (f *Flow[T]) SetError(msg string) {
	f.mu.Lock()
	f.state.Error = msg
	f.mu.Unlock()
}

func (f *Flow[T]) Dismiss() {
	f.SetError("")
}

// Reset returns the flow to idle and orphans any request in flight.
func (f *Flow[T]) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token++
	f.state = FlowState[T]{}
}

func (f *Flow[T]) Snapshot() FlowState[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Package capability lets error values carry marker capabilities, such as
// "this is an assertion failure", independent of their concrete type.
//
// An error gains a capability either by being wrapped with Tag, or by matching
// a predicate registered in a Registry. Has only looks at the error it is given;
// it does not unwrap.
package capability

import (
	"context"
	"sort"
	"sync"
)

// Capability ...
type Capability string

const (
	// AssertionFailure marks errors raised by a failed assertion.
	AssertionFailure Capability = "assertion-failure"
	// TimeoutFailure marks errors raised because a test ran out of time.
	TimeoutFailure Capability = "timeout-failure"
)

// Matcher reports whether err has a capability.
type Matcher func(err error) bool

// Registry maps capabilities to matchers.
type Registry struct {
	matchers map[Capability][]Matcher
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		matchers: make(map[Capability][]Matcher),
	}
}

// Register adds a matcher for the given capability.
func (r *Registry) Register(c Capability, m Matcher) {
	if m == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.matchers[c] = append(r.matchers[c], m)
}

// Has reports whether err carries c, either as a tag or through a registered matcher.
func (r *Registry) Has(err error, c Capability) bool {
	if err == nil {
		return false
	}

	if tagged, ok := err.(*taggedError); ok && tagged.has(c) {
		return true
	}

	r.mu.RLock()
	matchers := r.matchers[c]
	r.mu.RUnlock()

	for _, m := range matchers {
		if m(err) {
			return true
		}
	}
	return false
}

// Capabilities lists every capability err carries, sorted.
func (r *Registry) Capabilities(err error) []Capability {
	if err == nil {
		return nil
	}

	candidates := map[Capability]bool{}
	if tagged, ok := err.(*taggedError); ok {
		for _, c := range tagged.capabilities {
			candidates[c] = true
		}
	}

	r.mu.RLock()
	for c, matchers := range r.matchers {
		for _, m := range matchers {
			if m(err) {
				candidates[c] = true
				break
			}
		}
	}
	r.mu.RUnlock()

	var capabilities []Capability
	for c := range candidates {
		capabilities = append(capabilities, c)
	}
	sort.Slice(capabilities, func(i, j int) bool { return capabilities[i] < capabilities[j] })

	return capabilities
}

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.Register(TimeoutFailure, func(err error) bool {
		return err == context.DeadlineExceeded
	})
}

// DefaultRegistry returns the process wide registry used by Has.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a matcher to the default registry.
func Register(c Capability, m Matcher) {
	defaultRegistry.Register(c, m)
}

// Has reports whether err carries c according to the default registry.
func Has(err error, c Capability) bool {
	return defaultRegistry.Has(err, c)
}
